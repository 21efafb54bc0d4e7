package graceful

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"resourcemap/internal/logger"
)

// Context creates a context that is canceled when an OS interrupt signal is received.
// This allows for a clean shutdown of the application.
func Context(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Get("graceful").Info("received termination signal, starting graceful shutdown")
		cancel()
	}()

	return ctx, cancel
}
