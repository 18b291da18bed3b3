// Package domain defines the core domain models for the book publishing workflow.
// A book moves along a canonical path (draft, editing, review, published) driven by
// explicit actions; the transition table in this package is the single authority on
// which status changes are legal.
package domain

// BookStatus represents the lifecycle state of a book in the publishing workflow.
type BookStatus string

// Book status values along the canonical publishing path.
const (
	// StatusDraft indicates the author is still working on the manuscript.
	StatusDraft BookStatus = "DRAFT"
	// StatusSubmittedForEditing indicates the book is with the editorial team.
	StatusSubmittedForEditing BookStatus = "SUBMITTED_FOR_EDITING"
	// StatusReadyForPublication indicates editing finished and the book awaits release.
	StatusReadyForPublication BookStatus = "READY_FOR_PUBLICATION"
	// StatusPublished is the terminal status; only the self-loop is legal from here.
	StatusPublished BookStatus = "PUBLISHED"
)

// AllStatuses lists every valid book status. Useful for exhaustive checks in
// validation and tests.
var AllStatuses = []BookStatus{
	StatusDraft,
	StatusSubmittedForEditing,
	StatusReadyForPublication,
	StatusPublished,
}

// IsValid reports whether the status is one of the known values.
func (s BookStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmittedForEditing, StatusReadyForPublication, StatusPublished:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s BookStatus) String() string {
	return string(s)
}
