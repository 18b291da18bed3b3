package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gocloud.dev/pubsub"
	"golang.org/x/sync/errgroup"

	eventsDomain "github.com/allisson/bookflow/internal/events/domain"
	"github.com/allisson/bookflow/internal/metrics"
)

// DeadLetterEntry is the payload published to the dead-letter topic. It keeps
// the original message bytes so an operator can replay the event after fixing
// the underlying problem.
type DeadLetterEntry struct {
	EventID  string    `json:"eventId,omitempty"`
	Payload  []byte    `json:"payload"`
	Reasons  []string  `json:"reasons"`
	Attempts int       `json:"attempts"`
	FailedAt time.Time `json:"failedAt"`
}

// Consumer pulls deliveries from a subscription and routes them through the
// dispatcher, fanning work out over a bounded number of goroutines.
type Consumer struct {
	subscription    *pubsub.Subscription
	deadLetterTopic *pubsub.Topic
	dispatcher      *Dispatcher
	concurrency     int
	businessMetrics metrics.BusinessMetrics
	logger          *slog.Logger
}

// NewConsumer creates a new Consumer. concurrency bounds the number of
// in-flight deliveries.
func NewConsumer(
	subscription *pubsub.Subscription,
	deadLetterTopic *pubsub.Topic,
	dispatcher *Dispatcher,
	concurrency int,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *Consumer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Consumer{
		subscription:    subscription,
		deadLetterTopic: deadLetterTopic,
		dispatcher:      dispatcher,
		concurrency:     concurrency,
		businessMetrics: businessMetrics,
		logger:          logger,
	}
}

// Run receives deliveries until the context is canceled or the subscription
// is shut down. Each delivery is processed on its own goroutine; a failing
// message only affects itself.
func (c *Consumer) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.concurrency)

	var receiveErr error
	for {
		msg, err := c.subscription.Receive(groupCtx)
		if err != nil {
			if groupCtx.Err() == nil {
				receiveErr = err
			}
			break
		}
		group.Go(func() error {
			c.process(groupCtx, msg)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	if receiveErr != nil && !errors.Is(receiveErr, context.Canceled) {
		return receiveErr
	}
	return nil
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) {
	result := c.dispatcher.Handle(ctx, eventsDomain.RawEnvelope{Body: msg.Body})
	c.businessMetrics.RecordOperation(ctx, "consumer", "handle", result.Outcome.String())

	switch result.Outcome {
	case OutcomeAck:
		msg.Ack()
	case OutcomeRetry:
		c.nackIfPossible(msg)
	case OutcomeDeadLetter:
		c.deadLetter(ctx, msg, result)
	}
}

// deadLetter publishes the entry and only then acks the original delivery, so
// a dead-letter publish failure leaves the message in flight instead of
// dropping it.
func (c *Consumer) deadLetter(ctx context.Context, msg *pubsub.Message, result Result) {
	entry := DeadLetterEntry{
		EventID:  result.EventID,
		Payload:  msg.Body,
		Reasons:  result.Reasons,
		Attempts: result.Attempts,
		FailedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		c.logger.Error("failed to marshal dead-letter entry",
			slog.String("event_id", result.EventID),
			slog.Any("error", err),
		)
		c.nackIfPossible(msg)
		return
	}

	err = c.deadLetterTopic.Send(ctx, &pubsub.Message{
		Body: payload,
		Metadata: map[string]string{
			"eventId": result.EventID,
		},
	})
	if err != nil {
		c.logger.Error("failed to publish dead-letter entry",
			slog.String("event_id", result.EventID),
			slog.Any("error", err),
		)
		c.nackIfPossible(msg)
		return
	}

	c.logger.Warn("delivery dead-lettered",
		slog.String("event_id", result.EventID),
		slog.Int("attempts", result.Attempts),
		slog.Any("reasons", result.Reasons),
	)
	msg.Ack()
}

// nackIfPossible returns the message for redelivery. Drivers without nack support
// rely on visibility timeout expiry, so the message is left unacked there.
func (c *Consumer) nackIfPossible(msg *pubsub.Message) {
	if msg.Nackable() {
		msg.Nack()
	}
}

// ReplayDeadLetters drains dead-letter entries from a subscription and
// republishes their original payloads to the main topic. Replayed events pass
// through the normal dedupe on consumption. The drain stops when the context
// ends; the number of replayed entries is returned.
func ReplayDeadLetters(
	ctx context.Context,
	subscription *pubsub.Subscription,
	topic *pubsub.Topic,
	logger *slog.Logger,
) (int, error) {
	replayed := 0
	for {
		msg, err := subscription.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return replayed, nil
			}
			return replayed, err
		}

		var entry DeadLetterEntry
		if err := json.Unmarshal(msg.Body, &entry); err != nil {
			logger.Error("skipping malformed dead-letter entry",
				slog.Any("error", err),
			)
			msg.Ack()
			continue
		}

		err = topic.Send(ctx, &pubsub.Message{
			Body: entry.Payload,
			Metadata: map[string]string{
				"eventId":  entry.EventID,
				"replayed": "true",
			},
		})
		if err != nil {
			if msg.Nackable() {
				msg.Nack()
			}
			return replayed, err
		}

		msg.Ack()
		replayed++
		logger.Info("dead-letter entry replayed",
			slog.String("event_id", entry.EventID),
			slog.Int("attempts", entry.Attempts),
		)
	}
}
