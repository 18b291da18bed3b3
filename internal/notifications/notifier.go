// Package notifications defines the notifier consumed by the event dispatcher
// and the recipient resolution for each notification kind. The actual email
// transport is external; this package only shapes the call into it.
package notifications

import (
	"context"

	eventsDomain "github.com/allisson/bookflow/internal/events/domain"
)

// Recipient identifies who receives a notification.
type Recipient struct {
	// Name is the display name of the recipient.
	Name string
	// Email is the delivery address.
	Email string
}

// BookMetadata carries the book details a notification template needs.
type BookMetadata struct {
	BookID         string
	Title          string
	Author         string
	PreviousStatus string
	NewStatus      string
	ChangedBy      string
	ChangeReason   *string
}

// BookMetadataFromEvent maps a validated status-change event onto the
// notification payload.
func BookMetadataFromEvent(event *eventsDomain.StatusChangedEvent) BookMetadata {
	return BookMetadata{
		BookID:         event.Data.BookID,
		Title:          event.Data.Title,
		Author:         event.Data.Author,
		PreviousStatus: event.Data.PreviousStatus,
		NewStatus:      event.Data.NewStatus,
		ChangedBy:      event.Data.ChangedBy,
		ChangeReason:   event.Data.ChangeReason,
	}
}

// Notifier delivers one human-facing message for a notification kind.
// Implementations must be safe for concurrent use; the dispatcher calls
// Notify from multiple goroutines. A returned error marks the delivery as
// retryable.
type Notifier interface {
	Notify(
		ctx context.Context,
		kind eventsDomain.NotificationKind,
		recipient Recipient,
		book BookMetadata,
	) error
}
