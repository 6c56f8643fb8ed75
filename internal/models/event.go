package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingField is returned when a required FailureEvent field is absent or null.
var ErrMissingField = errors.New("missing required field")

// MessageSent is the confirmation message returned after a successful delivery.
const MessageSent = "Message sent"

// MessageAlreadySent is returned when a duplicate event was suppressed.
const MessageAlreadySent = "Message already sent"

// FailureEvent describes one workflow failure to notify about.
type FailureEvent struct {
	Workflow    string   `json:"workflow"`
	ExcID       string   `json:"exc_id"`
	Categories  []string `json:"categories"`             // who to notify, order preserved
	Message     string   `json:"message"`                // rendered verbatim, not escaped
	ContinueURL *string  `json:"continue_url,omitempty"` // nil when absent
	AbortURL    *string  `json:"abort_url,omitempty"`    // nil when absent
}

// rawFailureEvent mirrors FailureEvent with pointer fields so absent and null
// values can be told apart from empty ones.
type rawFailureEvent struct {
	Workflow    *string   `json:"workflow"`
	ExcID       *string   `json:"exc_id"`
	Categories  *[]string `json:"categories"`
	Message     *string   `json:"message"`
	ContinueURL *string   `json:"continue_url"`
	AbortURL    *string   `json:"abort_url"`
}

// UnmarshalJSON decodes a FailureEvent and rejects payloads missing any of
// workflow, exc_id, categories or message. Empty values are accepted.
func (e *FailureEvent) UnmarshalJSON(data []byte) error {
	var raw rawFailureEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.Workflow == nil:
		return fmt.Errorf("%w: workflow", ErrMissingField)
	case raw.ExcID == nil:
		return fmt.Errorf("%w: exc_id", ErrMissingField)
	case raw.Categories == nil:
		return fmt.Errorf("%w: categories", ErrMissingField)
	case raw.Message == nil:
		return fmt.Errorf("%w: message", ErrMissingField)
	}

	categories := *raw.Categories
	if categories == nil {
		categories = []string{}
	}

	*e = FailureEvent{
		Workflow:    *raw.Workflow,
		ExcID:       *raw.ExcID,
		Categories:  categories,
		Message:     *raw.Message,
		ContinueURL: raw.ContinueURL,
		AbortURL:    raw.AbortURL,
	}
	return nil
}

// DecodeFailureEvent parses an invocation payload into a FailureEvent.
func DecodeFailureEvent(data []byte) (*FailureEvent, error) {
	var event FailureEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode failure event: %w", err)
	}
	return &event, nil
}

// Response is the outcome reported back to the invoker after a successful delivery.
type Response struct {
	RequestID string `json:"req_id"`
	Message   string `json:"message"`
}

// ErrorResponse is the outcome reported back to the invoker when an invocation fails.
type ErrorResponse struct {
	RequestID string `json:"req_id,omitempty"`
	Error     string `json:"error"`
}
