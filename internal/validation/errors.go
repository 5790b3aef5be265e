package validation

import (
	"errors"
	"fmt"
	"strings"

	apperrors "loipen-tracker/internal/errors"
)

// ValidationErrorType names the rule a field broke.
type ValidationErrorType string

const (
	ErrorTypeRequired      ValidationErrorType = "required"
	ErrorTypeInvalidFormat ValidationErrorType = "invalid_format"
	ErrorTypeInvalidLength ValidationErrorType = "invalid_length"
	ErrorTypeInvalidValue  ValidationErrorType = "invalid_value"
	ErrorTypeInvalidRange  ValidationErrorType = "invalid_range"
)

// FieldError is one broken rule on one input field.
type FieldError struct {
	Field   string
	Type    ValidationErrorType
	Message string
	Value   any
}

func (fe *FieldError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", fe.Field, fe.Message)
}

// ValidationError collects every field problem of one input so users see
// them all at once.
type ValidationError struct {
	Errors []FieldError
}

func NewValidationError() *ValidationError {
	return &ValidationError{}
}

func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation error"
	}
	if len(ve.Errors) == 1 {
		return ve.Errors[0].Error()
	}
	parts := make([]string, len(ve.Errors))
	for i := range ve.Errors {
		parts[i] = ve.Errors[i].Error()
	}
	return "multiple validation errors: " + strings.Join(parts, "; ")
}

// IsValidationError checks if err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func (ve *ValidationError) HasErrors() bool {
	return len(ve.Errors) > 0
}

func (ve *ValidationError) add(field string, t ValidationErrorType, message string, value any) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Type: t, Message: message, Value: value})
}

func (ve *ValidationError) AddRequiredError(field string) {
	ve.add(field, ErrorTypeRequired, field+" is required", nil)
}

func (ve *ValidationError) AddInvalidFormatError(field string, value any, expectedFormat string) {
	ve.add(field, ErrorTypeInvalidFormat, fmt.Sprintf("%s has invalid format, expected: %s", field, expectedFormat), value)
}

// AddInvalidLengthError records a length violation. A bound of 0 means unbounded.
func (ve *ValidationError) AddInvalidLengthError(field string, value any, min, max int) {
	message := field + " has invalid length"
	switch {
	case min > 0 && max > 0:
		message = fmt.Sprintf("%s must be between %d and %d characters long", field, min, max)
	case min > 0:
		message = fmt.Sprintf("%s must be at least %d characters long", field, min)
	case max > 0:
		message = fmt.Sprintf("%s must be at most %d characters long", field, max)
	}
	ve.add(field, ErrorTypeInvalidLength, message, value)
}

func (ve *ValidationError) AddInvalidValueError(field string, value any, reason string) {
	ve.add(field, ErrorTypeInvalidValue, fmt.Sprintf("%s has invalid value: %s", field, reason), value)
}

// AddInvalidRangeError records reason as the message verbatim, so
// "end time must be after start time" reaches the user unchanged.
func (ve *ValidationError) AddInvalidRangeError(field string, value any, reason string) {
	ve.add(field, ErrorTypeInvalidRange, reason, value)
}

func (ve *ValidationError) GetFieldErrors(field string) []FieldError {
	var out []FieldError
	for _, fe := range ve.Errors {
		if fe.Field == field {
			out = append(out, fe)
		}
	}
	return out
}

// GetUserFriendlyMessage renders the field messages without field prefixes.
func (ve *ValidationError) GetUserFriendlyMessage() string {
	if len(ve.Errors) == 0 {
		return "Input validation failed"
	}
	if len(ve.Errors) == 1 {
		return ve.Errors[0].Message
	}
	var b strings.Builder
	b.WriteString("Multiple validation errors occurred:")
	for _, fe := range ve.Errors {
		b.WriteString("\n- ")
		b.WriteString(fe.Message)
	}
	return b.String()
}

// ToAppError wraps the field errors into an application validation error.
func (ve *ValidationError) ToAppError() *apperrors.AppError {
	fields := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		fields[i] = fe.Field
	}
	return apperrors.NewValidationError(ve.GetUserFriendlyMessage(), ve).WithContext("fields", fields)
}

func (ve *ValidationError) orNil() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}
