package domain

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a book record as seen by the workflow engine. The document
// store owns the full record; the workflow only reads and advances the fields
// below. Version is the optimistic-concurrency stamp: every status write must
// present the version it read, and the store rejects stale writes.
type Book struct {
	// ID is the unique identifier for the book (UUIDv7).
	ID uuid.UUID
	// Title is the book title.
	Title string
	// Author is the display name of the book's author.
	Author string
	// Status is the current workflow status.
	Status BookStatus
	// Version increases by one on every successful status write.
	Version int64
	// CreatedAt is the UTC timestamp when the book was created.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last status write.
	UpdatedAt time.Time
}

// WorkflowHistoryEntry is the append-only audit record of one workflow step.
// Exactly one entry is written per successful transition, plus one for the
// initial creation (FromStatus nil).
type WorkflowHistoryEntry struct {
	// ID is the unique identifier for this entry (UUIDv7).
	ID uuid.UUID
	// BookID references the book this entry belongs to.
	BookID uuid.UUID
	// FromStatus is the status before the step; nil for the creation entry.
	FromStatus *BookStatus
	// ToStatus is the status after the step.
	ToStatus BookStatus
	// Action is the workflow action that caused the step.
	Action Action
	// ActionBy identifies the user who requested the step.
	ActionBy string
	// Comment is the optional free-text comment attached to the step.
	Comment *string
	// CreatedAt is the UTC timestamp when the step happened.
	CreatedAt time.Time
}
