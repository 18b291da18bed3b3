// Package domain defines the canonical status-change event schema, its
// validation rules, and the mapping from status transitions to notification
// kinds. The wire form is JSON with stable field names; consumers must accept
// events with the optional fields absent.
package domain

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/bookflow/internal/errors"
	customValidation "github.com/allisson/bookflow/internal/validation"
)

// Fixed literals of the status-change event schema. Inbound events must match
// all three exactly; anything else is a schema violation.
const (
	// EventTypeStatusChanged identifies the event type on the wire.
	EventTypeStatusChanged = "book.status.changed"
	// EventSource identifies the publishing component.
	EventSource = "bookflow.workflow"
	// SchemaVersion is the only supported schema version.
	SchemaVersion = "1.0"
)

// EventData is the payload of a status-change event. ChangeReason and Metadata
// are optional by design; their absence is never a violation.
type EventData struct {
	BookID         string            `json:"bookId"`
	Title          string            `json:"title"`
	Author         string            `json:"author"`
	PreviousStatus string            `json:"previousStatus"`
	NewStatus      string            `json:"newStatus"`
	ChangedBy      string            `json:"changedBy"`
	ChangeReason   *string           `json:"changeReason,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// StatusChangedEvent is the canonical envelope for a book status change.
// It is created once by the publisher at the moment a transition is persisted
// and never mutated afterwards.
type StatusChangedEvent struct {
	EventType string    `json:"eventType"`
	EventID   string    `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Data      EventData `json:"data"`
}

// NewStatusChangedEvent builds an event with a fresh UUIDv7 id, the fixed
// schema literals, and a UTC timestamp.
func NewStatusChangedEvent(data EventData) *StatusChangedEvent {
	return &StatusChangedEvent{
		EventType: EventTypeStatusChanged,
		EventID:   uuid.Must(uuid.NewV7()).String(),
		Timestamp: time.Now().UTC(),
		Source:    EventSource,
		Version:   SchemaVersion,
		Data:      data,
	}
}

// Validate checks the event against the schema. All required-field violations
// are collected into a single validation error; use Violations to obtain the
// per-field reasons.
func (e *StatusChangedEvent) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.EventType,
			validation.Required,
			validation.In(EventTypeStatusChanged),
		),
		validation.Field(&e.EventID,
			validation.Required,
			customValidation.UUID,
		),
		validation.Field(&e.Source,
			validation.Required,
			validation.In(EventSource),
		),
		validation.Field(&e.Version,
			validation.Required,
			validation.In(SchemaVersion),
		),
		validation.Field(&e.Data),
	)
}

// Validate checks the required payload fields. PreviousStatus is allowed to be
// empty; ChangeReason and Metadata are optional by design.
func (d EventData) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.BookID, validation.Required),
		validation.Field(&d.Title, validation.Required),
		validation.Field(&d.Author, validation.Required),
		validation.Field(&d.NewStatus, validation.Required),
		validation.Field(&d.ChangedBy, validation.Required),
	)
}

// Marshal serializes the event to its canonical wire form.
func (e *StatusChangedEvent) Marshal() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal status-change event")
	}
	return payload, nil
}

// ParseEvent deserializes an event from its wire form. Parsing errors are
// reported as invalid input; schema validation is a separate step.
func ParseEvent(raw []byte) (*StatusChangedEvent, error) {
	var event StatusChangedEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return &event, nil
}

// Violations flattens a validation error into a sorted list of per-field
// reasons (e.g. "data.bookId: cannot be blank"). Non-validation errors yield a
// single-element list so a failure reason is never lost.
func Violations(err error) []string {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validation.Errors)
	if !ok {
		return []string{err.Error()}
	}

	var reasons []string
	var walk func(prefix string, errs validation.Errors)
	walk = func(prefix string, errs validation.Errors) {
		for field, fieldErr := range errs {
			name := field
			if prefix != "" {
				name = prefix + "." + field
			}
			if nested, ok := fieldErr.(validation.Errors); ok {
				walk(name, nested)
				continue
			}
			reasons = append(reasons, name+": "+fieldErr.Error())
		}
	}
	walk("", verrs)
	sort.Strings(reasons)
	return reasons
}
