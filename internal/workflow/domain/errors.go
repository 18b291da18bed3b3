package domain

import (
	"fmt"
	"strings"

	"github.com/allisson/bookflow/internal/errors"
)

// Workflow-specific error definitions.
var (
	// ErrBookNotFound indicates the book does not exist in the document store.
	ErrBookNotFound = errors.Wrap(errors.ErrNotFound, "book not found")

	// ErrVersionConflict indicates a concurrent modification: the book's version
	// changed between read and write. Callers must re-read and retry.
	ErrVersionConflict = errors.Wrap(errors.ErrConflict, "book version conflict")
)

// InvalidTransitionError reports a workflow action that is illegal for the
// book's current status. It carries the rejection reasons from the transition
// validator verbatim; it is a business error and is never retried.
type InvalidTransitionError struct {
	Action  Action
	From    BookStatus
	To      BookStatus
	Reasons []string
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf(
		"invalid transition: action %s from %s: %s",
		e.Action, e.From, strings.Join(e.Reasons, "; "),
	)
}

// Unwrap lets errors.Is classify the error as invalid input.
func (e *InvalidTransitionError) Unwrap() error {
	return errors.ErrInvalidInput
}
