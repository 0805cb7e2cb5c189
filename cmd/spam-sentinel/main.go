package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ngocminh/spam-sentinel/internal/di"
	"github.com/ngocminh/spam-sentinel/internal/monitor"
	"github.com/ngocminh/spam-sentinel/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	loop *monitor.Loop,
	seen ports.SeenStore,
) error {
	defer logger.Sync()
	defer func() {
		if err := seen.Close(); err != nil {
			logger.Error("Failed to close seen store", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting mailbox monitor")
	if err := loop.Run(ctx); err != nil {
		logger.Error("Monitor exited with error", zap.Error(err))
		return err
	}

	logger.Info("Shutdown complete")
	return nil
}
