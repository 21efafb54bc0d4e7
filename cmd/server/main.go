package main

import (
	"context"

	"resourcemap/internal/config"
	"resourcemap/internal/logger"
	"resourcemap/internal/server"
	"resourcemap/internal/storage"
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

	var store *storage.Service
	if cfg.Storage.Enabled() {
		var err error
		store, err = storage.New(cfg.Storage)
		if err != nil {
			log.Fatalf("storage init failed: %v", err)
		}
	}

	srv, err := server.New(cfg, store)
	if err != nil {
		log.Fatalf("server init failed: %v", err)
	}

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	if err := srv.Listen(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
	log.Info("server exited")
}
