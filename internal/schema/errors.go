package schema

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNotFound is returned when a schema name is not registered.
	ErrNotFound = errors.New("schema not found")

	// ErrInvalidArguments is returned when a cross-field rule of an argument
	// schema is not satisfied.
	ErrInvalidArguments = errors.New("Invalid arguments")
)

// ValidationError represents a single field that failed its rule.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid field value for %s: %s", e.Field, e.Message)
}

// Details returns the structured fields of the error for API consumers.
func (e *ValidationError) Details() map[string]interface{} {
	return map[string]interface{}{
		"field": e.Field,
	}
}

// NewRequiredFieldError creates an error for a missing required field.
func NewRequiredFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s is required", field),
	}
}

// NewFieldError creates an error whose message is prefixed with the field name,
// e.g. NewFieldError("email", "must be a valid email").
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s %s", field, message),
	}
}

// IsValidationError reports whether err is, or wraps, a field or cross-field
// validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrInvalidArguments)
}
