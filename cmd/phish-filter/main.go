package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mikey/phish-filter/internal/config"
	"github.com/mikey/phish-filter/internal/core"
	"github.com/mikey/phish-filter/internal/di"
	"github.com/mikey/phish-filter/internal/metrics"
	"github.com/mikey/phish-filter/internal/ports"
)

func main() {
	// PHISH_FILTER_* variables may come from a local .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Failed to load .env file: %v\n", err)
		os.Exit(1)
	}

	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	emailFilter ports.EmailFilter,
	repo core.AssessmentRepository,
	metricsServer *metrics.Server,
) error {
	defer logger.Sync()

	if err := emailFilter.Start(); err != nil {
		logger.Error("Failed to start filter", zap.Error(err))
		return err
	}

	metricsEnabled := cfg.GetBool("metrics.enabled")
	if metricsEnabled {
		if err := metricsServer.Start(); err != nil {
			logger.Error("Failed to start metrics server", zap.Error(err))
			return err
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := emailFilter.Stop(); err != nil {
		logger.Error("Failed to stop filter", zap.Error(err))
	}

	if metricsEnabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Stop(ctx); err != nil {
			logger.Error("Failed to stop metrics server", zap.Error(err))
		}
	}

	// Stops the cleanup task and closes database connections
	if stopper, ok := repo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
