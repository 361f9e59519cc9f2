// Package validate accumulates per-field input problems so forms can report
// everything wrong at once instead of failing on the first field.
package validate

import (
	"strings"
	"time"
)

// DateLayout is the wire format for dates in API payloads.
const DateLayout = "2006-01-02"

// FieldError links one field to one human-readable problem.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects field problems in the order they were found.
type Errors struct {
	fields []FieldError
	seen   map[string]struct{}
}

// Add records a problem for a field. Only the first problem per field is
// kept, matching how the fields were checked.
func (e *Errors) Add(field, message string) {
	if e.seen == nil {
		e.seen = make(map[string]struct{})
	}
	if _, dup := e.seen[field]; dup {
		return
	}
	e.seen[field] = struct{}{}
	e.fields = append(e.fields, FieldError{Field: field, Message: message})
}

// Empty reports whether no problems were recorded.
func (e *Errors) Empty() bool { return len(e.fields) == 0 }

// Fields returns the recorded problems in insertion order.
func (e *Errors) Fields() []FieldError { return e.fields }

// Details shapes the problems as an error-envelope details map.
func (e *Errors) Details() map[string]any {
	if e.Empty() {
		return nil
	}
	details := make(map[string]any, len(e.fields))
	for _, f := range e.fields {
		details[f.Field] = f.Message
	}
	return details
}

// RequiredString trims value and records a problem when nothing remains.
func (e *Errors) RequiredString(field, value, message string) string {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		e.Add(field, message)
	}
	return cleaned
}

// RequiredDate parses a mandatory DateLayout value.
func (e *Errors) RequiredDate(field, value string) time.Time {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		e.Add(field, "Specify a date.")
		return time.Time{}
	}
	parsed, err := time.Parse(DateLayout, cleaned)
	if err != nil {
		e.Add(field, "Invalid date, use the YYYY-MM-DD format.")
		return time.Time{}
	}
	return parsed
}

// OptionalDate parses a DateLayout value when present; blank is fine.
func (e *Errors) OptionalDate(field, value string) *time.Time {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return nil
	}
	parsed, err := time.Parse(DateLayout, cleaned)
	if err != nil {
		e.Add(field, "Invalid date, use the YYYY-MM-DD format.")
		return nil
	}
	return &parsed
}
