package domain

import (
	workflowDomain "github.com/allisson/bookflow/internal/workflow/domain"
)

// StatusChange describes a successfully persisted workflow transition, ready
// to be turned into a status-change event. It is the publisher's input; the
// orchestrator builds one per notification-worthy transition.
type StatusChange struct {
	Book           *workflowDomain.Book
	PreviousStatus workflowDomain.BookStatus
	NewStatus      workflowDomain.BookStatus
	ChangedBy      string
	ChangeReason   *string
	Metadata       map[string]string
}

// EventData maps the status change onto the event payload.
func (s StatusChange) EventData() EventData {
	return EventData{
		BookID:         s.Book.ID.String(),
		Title:          s.Book.Title,
		Author:         s.Book.Author,
		PreviousStatus: s.PreviousStatus.String(),
		NewStatus:      s.NewStatus.String(),
		ChangedBy:      s.ChangedBy,
		ChangeReason:   s.ChangeReason,
		Metadata:       s.Metadata,
	}
}
