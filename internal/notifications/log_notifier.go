package notifications

import (
	"context"
	"fmt"
	"log/slog"

	eventsDomain "github.com/allisson/bookflow/internal/events/domain"
)

// subjects holds the message subject per notification kind.
var subjects = map[eventsDomain.NotificationKind]string{
	eventsDomain.KindBookSubmitted: "Book %q was submitted for editing",
	eventsDomain.KindBookApproved:  "Book %q is ready for publication",
	eventsDomain.KindBookRejected:  "Book %q was sent back to editing",
	eventsDomain.KindBookReturned:  "Book %q was returned to draft",
	eventsDomain.KindBookPublished: "Book %q was published",
}

// LogNotifier writes notifications to the structured log instead of sending
// email. It is the default implementation while the email transport stays
// external, and it keeps local runs and tests free of outbound traffic.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification. It never fails.
func (n *LogNotifier) Notify(
	ctx context.Context,
	kind eventsDomain.NotificationKind,
	recipient Recipient,
	book BookMetadata,
) error {
	subject, ok := subjects[kind]
	if !ok {
		return fmt.Errorf("no subject for notification kind %q", kind)
	}

	n.logger.InfoContext(ctx, "notification sent",
		slog.String("kind", kind.String()),
		slog.String("subject", fmt.Sprintf(subject, book.Title)),
		slog.String("recipient", recipient.Email),
		slog.String("book_id", book.BookID),
		slog.String("previous_status", book.PreviousStatus),
		slog.String("new_status", book.NewStatus),
		slog.String("changed_by", book.ChangedBy),
	)
	return nil
}
