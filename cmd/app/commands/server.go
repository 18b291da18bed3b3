// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/allisson/bookflow/internal/app"
	"github.com/allisson/bookflow/internal/config"
)

// RunServer starts the workflow API server with graceful shutdown support.
// Loads configuration, initializes the DI container, and starts the Gin HTTP
// server plus the metrics server when enabled. Blocks until receiving
// SIGINT/SIGTERM or encountering a fatal error.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	// Set Gin mode based on log level
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	server, err := container.HTTPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverErr := make(chan error, 2)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErr <- fmt.Errorf("api server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	// Wait for shutdown signal or server error
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", err))
		runErr = err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErrors []error
	if runErr != nil {
		shutdownErrors = append(shutdownErrors, runErr)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return errors.Join(shutdownErrors...)
	}

	return nil
}
