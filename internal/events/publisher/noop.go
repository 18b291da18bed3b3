package publisher

import (
	"context"
	"log/slog"

	eventsDomain "github.com/allisson/bookflow/internal/events/domain"
)

// NoopPublisher is a no-op EventPublisher used when no broker is configured.
// Transitions still commit; notification delivery is simply skipped.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a no-op publisher.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

// PublishStatusChanged logs the skipped event and reports success.
func (p *NoopPublisher) PublishStatusChanged(
	_ context.Context,
	change eventsDomain.StatusChange,
) (string, error) {
	p.logger.Debug("event publishing disabled, skipping status-change event",
		slog.String("book_id", change.Book.ID.String()),
		slog.String("previous_status", change.PreviousStatus.String()),
		slog.String("new_status", change.NewStatus.String()),
	)
	return "", nil
}
