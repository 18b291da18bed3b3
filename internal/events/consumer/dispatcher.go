// Package consumer receives status-change events from the broker and turns
// them into notifications. Every delivery ends in exactly one of three
// outcomes: acknowledged, returned for redelivery, or dead-lettered with the
// failure reasons attached. A message is never silently dropped.
package consumer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/allisson/bookflow/internal/dedupe"
	eventsDomain "github.com/allisson/bookflow/internal/events/domain"
	"github.com/allisson/bookflow/internal/notifications"
	workflowDomain "github.com/allisson/bookflow/internal/workflow/domain"
)

// Outcome is the final disposition of one delivery.
type Outcome string

// Delivery outcomes.
const (
	OutcomeAck        Outcome = "ack"
	OutcomeRetry      Outcome = "retry"
	OutcomeDeadLetter Outcome = "dead_letter"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// Result describes how one delivery was handled. Reasons is non-empty exactly
// when the outcome is OutcomeDeadLetter.
type Result struct {
	Outcome  Outcome
	EventID  string
	Attempts int
	Reasons  []string
}

// Dispatcher maps one raw broker message to an outcome. It is safe for
// concurrent use.
type Dispatcher struct {
	store         dedupe.Store
	resolver      *notifications.Resolver
	notifier      notifications.Notifier
	maxAttempts   int
	notifyTimeout time.Duration
	dedupeTTL     time.Duration
	logger        *slog.Logger
}

// NewDispatcher creates a new Dispatcher. maxAttempts is the delivery attempt
// ceiling; the attempt that reaches it is the one that dead-letters.
func NewDispatcher(
	store dedupe.Store,
	resolver *notifications.Resolver,
	notifier notifications.Notifier,
	maxAttempts int,
	notifyTimeout time.Duration,
	dedupeTTL time.Duration,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:         store,
		resolver:      resolver,
		notifier:      notifier,
		maxAttempts:   maxAttempts,
		notifyTimeout: notifyTimeout,
		dedupeTTL:     dedupeTTL,
		logger:        logger,
	}
}

// Handle processes one raw delivery: unwrap the transport envelope, parse and
// validate the event, suppress duplicates by event id, and deliver the
// notification for notification-worthy transitions. Failures count against a
// per-event attempt ceiling; the ceiling turns a Retry into a DeadLetter.
func (d *Dispatcher) Handle(ctx context.Context, raw eventsDomain.RawEnvelope) Result {
	payload, err := raw.Unwrap()
	if err != nil {
		return d.failure(ctx, bodyHashKey(raw.Body), "", []string{
			fmt.Sprintf("envelope: %v", err),
		})
	}

	event, err := eventsDomain.ParseEvent(payload)
	if err != nil {
		return d.failure(ctx, bodyHashKey(payload), "", []string{
			fmt.Sprintf("parse: %v", err),
		})
	}

	// The event id keys both dedupe and attempt counting; a payload hash
	// stands in when the producer forgot one so retries stay bounded.
	attemptKey := event.EventID
	if attemptKey == "" {
		attemptKey = bodyHashKey(payload)
	}

	if err := event.Validate(); err != nil {
		return d.failure(ctx, attemptKey, event.EventID, eventsDomain.Violations(err))
	}

	previous := workflowDomain.BookStatus(event.Data.PreviousStatus)
	next := workflowDomain.BookStatus(event.Data.NewStatus)
	kind, ok := eventsDomain.NotificationKindFor(previous, next)
	if !ok {
		// Valid event, nothing to notify about. Acking is the side effect.
		d.logger.Debug("event is not notification-worthy",
			slog.String("event_id", event.EventID),
			slog.String("previous_status", event.Data.PreviousStatus),
			slog.String("new_status", event.Data.NewStatus),
		)
		return Result{Outcome: OutcomeAck, EventID: event.EventID}
	}

	reserved, err := d.store.Reserve(ctx, attemptKey, d.dedupeTTL)
	if err != nil {
		return d.failure(ctx, attemptKey, event.EventID, []string{
			fmt.Sprintf("dedupe reserve: %v", err),
		})
	}
	if !reserved {
		d.logger.Info("duplicate delivery suppressed",
			slog.String("event_id", event.EventID),
		)
		return Result{Outcome: OutcomeAck, EventID: event.EventID}
	}

	recipient, err := d.resolver.Resolve(kind)
	if err != nil {
		d.release(ctx, attemptKey)
		return d.failure(ctx, attemptKey, event.EventID, []string{
			fmt.Sprintf("resolve recipient: %v", err),
		})
	}

	notifyCtx, cancel := context.WithTimeout(ctx, d.notifyTimeout)
	defer cancel()
	if err := d.notifier.Notify(notifyCtx, kind, recipient, notifications.BookMetadataFromEvent(event)); err != nil {
		// Free the reservation so a redelivery can retry the notification.
		d.release(ctx, attemptKey)
		return d.failure(ctx, attemptKey, event.EventID, []string{
			fmt.Sprintf("notify %s: %v", kind, err),
		})
	}

	d.logger.Info("notification delivered",
		slog.String("event_id", event.EventID),
		slog.String("kind", kind.String()),
		slog.String("recipient", recipient.Email),
	)
	return Result{Outcome: OutcomeAck, EventID: event.EventID}
}

// failure records one failed attempt and decides between Retry and
// DeadLetter. When the attempt counter itself is unavailable the delivery is
// retried; the broker's own redelivery policy bounds that case.
func (d *Dispatcher) failure(ctx context.Context, key, eventID string, reasons []string) Result {
	attempts, err := d.store.IncrAttempts(ctx, key, d.dedupeTTL)
	if err != nil {
		d.logger.Error("failed to count delivery attempt",
			slog.String("event_id", eventID),
			slog.Any("error", err),
		)
		return Result{Outcome: OutcomeRetry, EventID: eventID, Reasons: nil}
	}

	if attempts >= d.maxAttempts {
		return Result{
			Outcome:  OutcomeDeadLetter,
			EventID:  eventID,
			Attempts: attempts,
			Reasons:  reasons,
		}
	}

	d.logger.Warn("delivery failed, returning for redelivery",
		slog.String("event_id", eventID),
		slog.Int("attempt", attempts),
		slog.Int("max_attempts", d.maxAttempts),
		slog.Any("reasons", reasons),
	)
	return Result{Outcome: OutcomeRetry, EventID: eventID, Attempts: attempts}
}

func (d *Dispatcher) release(ctx context.Context, key string) {
	if err := d.store.Release(ctx, key); err != nil {
		d.logger.Error("failed to release dedupe reservation",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

func bodyHashKey(body []byte) string {
	sum := sha256.Sum256(body)
	return "body:" + hex.EncodeToString(sum[:])
}
