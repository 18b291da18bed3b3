package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allisson/bookflow/internal/app"
	"github.com/allisson/bookflow/internal/config"
	"github.com/allisson/bookflow/internal/events/consumer"
)

// RunDLQReplay drains the dead-letter subscription and republishes the
// original event payloads to the main topic. Replayed events pass the normal
// dedupe on consumption, so an already-notified event is not delivered twice.
// The drain runs until drainTimeout elapses or SIGINT/SIGTERM is received.
func RunDLQReplay(ctx context.Context, drainTimeout time.Duration) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)

	logger := container.Logger()
	defer closeContainer(container, logger)

	subscription, err := container.DeadLetterSubscription(ctx)
	if err != nil {
		return fmt.Errorf("failed to open dead-letter subscription: %w", err)
	}

	topic, err := container.Topic(ctx)
	if err != nil {
		return fmt.Errorf("failed to open topic: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if drainTimeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, drainTimeout)
		defer timeoutCancel()
	}

	logger.Info("draining dead-letter queue",
		slog.String("subscription", cfg.BrokerDeadLetterSubscriptionURL),
		slog.String("topic", cfg.BrokerTopicURL),
	)

	replayed, err := consumer.ReplayDeadLetters(ctx, subscription, topic, logger)
	if err != nil {
		return fmt.Errorf("dead-letter replay failed after %d entries: %w", replayed, err)
	}

	logger.Info("dead-letter replay finished", slog.Int("replayed", replayed))
	return nil
}
