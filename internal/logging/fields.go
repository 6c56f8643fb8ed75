package logging

import "log/slog"

// Common field names for consistent logging.
const (
	FieldService   = "service"
	FieldRequestID = "request_id"
	FieldWorkflow  = "workflow"
	FieldExcID     = "exc_id"
	FieldChannel   = "channel"
	FieldURL       = "url"
	FieldSource    = "source"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Workflow returns a slog attribute for the failing workflow.
func Workflow(name string) slog.Attr {
	return slog.String(FieldWorkflow, name)
}

// ExcID returns a slog attribute for the failing run identifier.
func ExcID(id string) slog.Attr {
	return slog.String(FieldExcID, id)
}

// Channel returns a slog attribute for the delivery channel type.
func Channel(name string) slog.Attr {
	return slog.String(FieldChannel, name)
}

// URL returns a slog attribute for an already redacted URL.
func URL(u string) slog.Attr {
	return slog.String(FieldURL, u)
}

// Source returns a slog attribute for the invocation source (http, nats, lambda, cli).
func Source(name string) slog.Attr {
	return slog.String(FieldSource, name)
}

// Status returns a slog attribute for an HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
