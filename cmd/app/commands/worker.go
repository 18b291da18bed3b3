package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allisson/bookflow/internal/app"
	"github.com/allisson/bookflow/internal/config"
)

// RunWorker starts the notification consumer. The consumer receives
// status-change events, delivers notifications, and dead-letters messages
// that exhaust their attempt ceiling. Blocks until SIGINT/SIGTERM.
func RunWorker(ctx context.Context, version string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting worker",
		slog.String("version", version),
		slog.Int("concurrency", cfg.ConsumerConcurrency),
		slog.Int("max_attempts", cfg.ConsumerMaxAttempts),
	)

	defer closeContainer(container, logger)

	notificationConsumer, err := container.NotificationConsumer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize consumer: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := notificationConsumer.Run(ctx); err != nil {
		return fmt.Errorf("consumer error: %w", err)
	}

	logger.Info("worker stopped")
	return nil
}
