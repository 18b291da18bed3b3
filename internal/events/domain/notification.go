package domain

import (
	workflowDomain "github.com/allisson/bookflow/internal/workflow/domain"
)

// NotificationKind names the human-facing message variant derived from a
// status transition. Kinds are derived, never stored.
type NotificationKind string

// Notification kinds for the transitions that are notification-worthy.
const (
	KindBookSubmitted NotificationKind = "book_submitted"
	KindBookApproved  NotificationKind = "book_approved"
	KindBookRejected  NotificationKind = "book_rejected"
	KindBookReturned  NotificationKind = "book_returned"
	KindBookPublished NotificationKind = "book_published"
)

// String returns the string representation of the kind.
func (k NotificationKind) String() string {
	return string(k)
}

// statusPair keys the notification mapping.
type statusPair struct {
	previous workflowDomain.BookStatus
	next     workflowDomain.BookStatus
}

// notificationKinds maps notification-worthy transitions to their kind.
// Self-loops and every other pair produce no notification; such events are
// valid no-ops for the consumer.
var notificationKinds = map[statusPair]NotificationKind{
	{workflowDomain.StatusDraft, workflowDomain.StatusSubmittedForEditing}:               KindBookSubmitted,
	{workflowDomain.StatusSubmittedForEditing, workflowDomain.StatusReadyForPublication}: KindBookApproved,
	{workflowDomain.StatusReadyForPublication, workflowDomain.StatusSubmittedForEditing}: KindBookRejected,
	{workflowDomain.StatusSubmittedForEditing, workflowDomain.StatusDraft}:               KindBookReturned,
	{workflowDomain.StatusReadyForPublication, workflowDomain.StatusPublished}:           KindBookPublished,
}

// NotificationKindFor returns the notification kind for a status transition,
// or false when the transition is not notification-worthy.
func NotificationKindFor(previous, next workflowDomain.BookStatus) (NotificationKind, bool) {
	kind, ok := notificationKinds[statusPair{previous, next}]
	return kind, ok
}

// ShouldNotify reports whether a status transition triggers a notification.
// It is true exactly when NotificationKindFor returns a kind.
func ShouldNotify(previous, next workflowDomain.BookStatus) bool {
	_, ok := NotificationKindFor(previous, next)
	return ok
}
