package validation

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a validation error for a specific field.
// Field is a dotted path into the request, such as filters[0].entities[1].entityId.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e[0].Error(), len(e)-1)
}

// Add adds a validation error to the collection.
func (e *ValidationErrors) Add(field, value, message string) {
	*e = append(*e, NewValidationError(field, value, message))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Indexed returns the path of one element of a list field.
func Indexed(field string, index int) string {
	return field + "[" + strconv.Itoa(index) + "]"
}

// Path joins field path segments with dots, skipping empty ones.
func Path(segments ...string) string {
	parts := segments[:0:0]
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}

// Fields returns the distinct field paths that failed, in order.
func (e ValidationErrors) Fields() []string {
	var fields []string
	seen := make(map[string]bool, len(e))
	for _, ve := range e {
		if !seen[ve.Field] {
			seen[ve.Field] = true
			fields = append(fields, ve.Field)
		}
	}
	return fields
}
