package validation

import (
	"fmt"
	"strings"
	"testing"

	apperrors "loipen-tracker/internal/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name        string
		errors      []FieldError
		expectError string
		contains    bool
	}{
		{"No errors", []FieldError{}, "validation error", false},
		{"Single error", []FieldError{{Field: "date", Message: "date is required"}}, "validation error for field 'date': date is required", false},
		{"Multiple errors", []FieldError{
			{Field: "date", Message: "date is required"},
			{Field: "activity", Message: "activity is required"},
		}, "multiple validation errors", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{Errors: tt.errors}
			result := ve.Error()

			if tt.contains {
				if !strings.Contains(result, tt.expectError) {
					t.Errorf("ValidationError.Error() = %v, expected to contain %v", result, tt.expectError)
				}
			} else if result != tt.expectError {
				t.Errorf("ValidationError.Error() = %v, expected %v", result, tt.expectError)
			}
		})
	}
}

func TestValidationError_AddHelpers(t *testing.T) {
	tests := []struct {
		name         string
		add          func(ve *ValidationError)
		expectedType ValidationErrorType
		contains     string
	}{
		{"required", func(ve *ValidationError) { ve.AddRequiredError("date") }, ErrorTypeRequired, "date is required"},
		{"format", func(ve *ValidationError) { ve.AddInvalidFormatError("start_time", "6 Uhr", "HH:MM") }, ErrorTypeInvalidFormat, "HH:MM"},
		{"length", func(ve *ValidationError) { ve.AddInvalidLengthError("first_name", "", 1, 100) }, ErrorTypeInvalidLength, "between 1 and 100"},
		{"value", func(ve *ValidationError) { ve.AddInvalidValueError("limit", -1, "must be positive") }, ErrorTypeInvalidValue, "must be positive"},
		{"range", func(ve *ValidationError) { ve.AddInvalidRangeError("end_time", "05:30", EndBeforeStartMessage) }, ErrorTypeInvalidRange, EndBeforeStartMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := NewValidationError()
			tt.add(ve)

			if len(ve.Errors) != 1 {
				t.Fatalf("Expected 1 error, got %d", len(ve.Errors))
			}
			if ve.Errors[0].Type != tt.expectedType {
				t.Errorf("Expected error type %v, got %v", tt.expectedType, ve.Errors[0].Type)
			}
			if !strings.Contains(ve.Errors[0].Message, tt.contains) {
				t.Errorf("Expected message to contain %q, got %s", tt.contains, ve.Errors[0].Message)
			}
		})
	}
}

func TestValidationError_AddInvalidRangeError_UsesReasonVerbatim(t *testing.T) {
	ve := NewValidationError()
	ve.AddInvalidRangeError("end_time", nil, EndBeforeStartMessage)

	if got := ve.GetUserFriendlyMessage(); got != "end time must be after start time" {
		t.Errorf("GetUserFriendlyMessage() = %q", got)
	}
}

func TestValidationError_GetFieldErrors(t *testing.T) {
	ve := NewValidationError()

	ve.AddRequiredError("date")
	ve.AddInvalidFormatError("date", "x", "YYYY-MM-DD")
	ve.AddRequiredError("activity")

	if n := len(ve.GetFieldErrors("date")); n != 2 {
		t.Errorf("Expected 2 errors for 'date', got %d", n)
	}
	if n := len(ve.GetFieldErrors("activity")); n != 1 {
		t.Errorf("Expected 1 error for 'activity', got %d", n)
	}
	if n := len(ve.GetFieldErrors("missing")); n != 0 {
		t.Errorf("Expected 0 errors for 'missing', got %d", n)
	}
}

func TestValidationError_GetUserFriendlyMessage(t *testing.T) {
	tests := []struct {
		name     string
		errors   []FieldError
		expected string
	}{
		{"No errors", []FieldError{}, "Input validation failed"},
		{"Single error", []FieldError{{Field: "date", Message: "date is required"}}, "date is required"},
		{"Multiple errors", []FieldError{
			{Field: "date", Message: "date is required"},
			{Field: "activity", Message: "activity is required"},
		}, "Multiple validation errors occurred:\n- date is required\n- activity is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{Errors: tt.errors}
			if result := ve.GetUserFriendlyMessage(); result != tt.expected {
				t.Errorf("GetUserFriendlyMessage() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("date")

	if !IsValidationError(ve) {
		t.Errorf("IsValidationError() = false, expected true for ValidationError")
	}
	if !IsValidationError(fmt.Errorf("save manual entry: %w", ve)) {
		t.Errorf("IsValidationError() should see through wrapping")
	}
	if IsValidationError(&FieldError{Field: "test", Message: "error"}) {
		t.Errorf("IsValidationError() = true, expected false for FieldError")
	}
}

func TestValidationError_ToAppError(t *testing.T) {
	ve := NewValidationError()
	ve.AddInvalidRangeError("end_time", nil, EndBeforeStartMessage)

	appErr := ve.ToAppError()

	if appErr.Type != apperrors.ErrorTypeValidation {
		t.Errorf("ToAppError() type = %v, want validation", appErr.Type)
	}
	if appErr.Message != EndBeforeStartMessage {
		t.Errorf("ToAppError() message = %q", appErr.Message)
	}
	if !IsValidationError(appErr) {
		t.Errorf("ToAppError() should keep the field errors reachable via errors.As")
	}
	fields, _ := appErr.GetContext("fields")
	if got, ok := fields.([]string); !ok || len(got) != 1 || got[0] != "end_time" {
		t.Errorf("ToAppError() fields context = %v", fields)
	}
}

func TestValidationError_OrNil(t *testing.T) {
	if err := NewValidationError().orNil(); err != nil {
		t.Errorf("orNil() on empty ValidationError = %v, want nil", err)
	}
}
