package shared

import (
	"sort"
	"strings"
)

// FieldErrors maps a form field name to its error messages.
// The empty key holds errors that are not tied to a single field.
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Has reports whether field has at least one error.
func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

// Get returns the messages recorded for field.
func (f FieldErrors) Get(field string) []string {
	return f[field]
}

// Empty reports whether no errors were recorded.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// ValidationError is returned when user-supplied input fails validation.
// Nothing is persisted when it is returned.
type ValidationError struct {
	Fields FieldErrors `json:"fields"`
}

// NewValidationError wraps field errors.
func NewValidationError(fields FieldErrors) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		label := name
		if label == "" {
			label = "__all__"
		}
		parts = append(parts, label+": "+strings.Join(e.Fields[name], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
