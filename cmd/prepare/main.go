package main

import (
	"context"
	"net/http"

	"resourcemap/internal/config"
	"resourcemap/internal/logger"
	"resourcemap/internal/notify"
	"resourcemap/internal/prepare"
	"resourcemap/internal/storage"
	"resourcemap/pkg/geocode"
	"resourcemap/pkg/graceful"
)

func main() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get("main")

	cfg := config.Load()

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	cache, err := geocode.Load(cfg.Geocode.CachePath)
	if err != nil {
		log.Warnf("cache unreadable, starting empty: %v", err)
	}
	log.Infof("loaded %d cached addresses", cache.Len())

	client := geocode.NewClient(
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
		geocode.WithMinInterval(cfg.Geocode.MinDelay),
		geocode.WithHTTPClient(&http.Client{Timeout: cfg.Geocode.HTTPTimeout}),
	)
	resolver := geocode.NewResolver(client, cache, cfg.Geocode.MaxRetries)

	deps := prepare.Deps{Resolver: resolver, Cache: cache}

	if cfg.Storage.Enabled() {
		store, err := storage.New(cfg.Storage)
		if err != nil {
			log.Fatalf("storage init failed: %v", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatalf("bucket setup failed: %v", err)
		}
		deps.Uploader = store
	}
	if cfg.Notify.Enabled() {
		publisher := notify.NewPublisher(cfg.Notify)
		defer publisher.Close()
		deps.Notifier = publisher
	}

	if err := prepare.Run(ctx, cfg, deps); err != nil {
		log.Fatalf("prepare run failed: %v", err)
	}
	log.Info("done")
}
