package domain

import (
	"encoding/json"

	apperrors "github.com/allisson/bookflow/internal/errors"
)

// RawEnvelope is the raw message body as received from the queue. Depending on
// the broker wiring, the body is either a bare status-change event or a
// notification wrapper (topic fan-out style) carrying the event as an embedded
// JSON string. The two shapes are kept separate: Unwrap resolves the outer
// layer and the strictly-typed event parsing happens afterwards.
type RawEnvelope struct {
	Body []byte
}

// notificationWrapper mirrors the outer wrapper an SNS-style topic puts around
// the payload when fanning out to a queue.
type notificationWrapper struct {
	Type      string `json:"Type"`
	MessageID string `json:"MessageId"`
	TopicArn  string `json:"TopicArn"`
	Message   string `json:"Message"`
}

// Unwrap returns the inner event payload. A body that is already a bare event
// passes through unchanged; a notification wrapper is unwrapped one level. A
// body that is not JSON, or a wrapper without a message, is a failure the
// caller turns into a validation reject.
func (e RawEnvelope) Unwrap() ([]byte, error) {
	if len(e.Body) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "empty message body")
	}
	if !json.Valid(e.Body) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "message body is not valid JSON")
	}

	var wrapper notificationWrapper
	if err := json.Unmarshal(e.Body, &wrapper); err != nil {
		// Valid JSON that is not an object (e.g. an array): not an event.
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "message body is not a JSON object")
	}
	if wrapper.Type != "Notification" {
		return e.Body, nil
	}
	if wrapper.Message == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "notification wrapper without message")
	}
	return []byte(wrapper.Message), nil
}
