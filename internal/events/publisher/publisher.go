// Package publisher turns persisted workflow transitions into status-change
// events on the broadcast topic. Publishing is best-effort relative to the
// workflow: the orchestrator never rolls back a committed status change
// because a publish failed, so every failure is surfaced as a PublishError
// for the caller to log.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gocloud.dev/pubsub"

	eventsDomain "github.com/allisson/bookflow/internal/events/domain"
)

// PublishError is the single failure taxonomy of the publisher. Retryable
// marks transport-level failures (network, broker unavailable, timeout);
// serialization failures are permanent.
type PublishError struct {
	Op        string
	Retryable bool
	Err       error
}

// Error implements the error interface.
func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v (retryable=%t)", e.Op, e.Err, e.Retryable)
}

// Unwrap returns the underlying cause.
func (e *PublishError) Unwrap() error {
	return e.Err
}

// EventPublisher publishes status-change events to the broadcast topic.
type EventPublisher interface {
	// PublishStatusChanged builds, serializes and sends one event for the
	// given status change. Returns the message id on success. Exactly one
	// outbound publish happens per call; there is no internal retry.
	PublishStatusChanged(ctx context.Context, change eventsDomain.StatusChange) (string, error)
}

// eventPublisher implements EventPublisher on top of a gocloud.dev topic.
type eventPublisher struct {
	topic   *pubsub.Topic
	timeout time.Duration
	logger  *slog.Logger
}

// NewEventPublisher creates a publisher bound to the given topic. The timeout
// bounds every send; a timed-out send is reported as retryable.
func NewEventPublisher(topic *pubsub.Topic, timeout time.Duration, logger *slog.Logger) EventPublisher {
	return &eventPublisher{
		topic:   topic,
		timeout: timeout,
		logger:  logger,
	}
}

// PublishStatusChanged publishes one status-change event.
func (p *eventPublisher) PublishStatusChanged(
	ctx context.Context,
	change eventsDomain.StatusChange,
) (string, error) {
	event := eventsDomain.NewStatusChangedEvent(change.EventData())

	payload, err := event.Marshal()
	if err != nil {
		return "", &PublishError{Op: "serialize", Retryable: false, Err: err}
	}

	sendCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	message := &pubsub.Message{
		Body: payload,
		Metadata: map[string]string{
			"eventId":   event.EventID,
			"eventType": event.EventType,
		},
	}

	if err := p.topic.Send(sendCtx, message); err != nil {
		// The payload already serialized, so any send failure is a transport
		// failure (network, broker unavailable, timeout) and can succeed later.
		return "", &PublishError{Op: "send", Retryable: true, Err: err}
	}

	p.logger.Info("status-change event published",
		slog.String("event_id", event.EventID),
		slog.String("book_id", event.Data.BookID),
		slog.String("previous_status", event.Data.PreviousStatus),
		slog.String("new_status", event.Data.NewStatus),
	)

	// The broker assigns its own ids per queue; the event id is the stable
	// identifier consumers deduplicate on, so it doubles as the message id.
	return event.EventID, nil
}
