package cli

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "loipen-tracker/internal/errors"
	"loipen-tracker/internal/validation"
)

func TestErrorHandler_Handle(t *testing.T) {
	eh := NewErrorHandler()

	multi := validation.NewValidationError()
	multi.AddRequiredError("date")
	multi.AddInvalidRangeError("end_time", nil, validation.EndBeforeStartMessage)

	tests := []struct {
		name      string
		operation string
		err       error
		expected  string
	}{
		{
			name:      "Validation error",
			operation: "save entry",
			err:       apperrors.NewValidationError("end time must be after start time", nil),
			expected:  "failed to save entry: end time must be after start time",
		},
		{
			name:      "Field validation errors",
			operation: "save entry",
			err:       multi,
			expected:  "failed to save entry: " + multi.GetUserFriendlyMessage(),
		},
		{
			name:      "Not found error",
			operation: "stop timer",
			err:       apperrors.NewNotFoundError("running timer", "anna"),
			expected:  "failed to stop timer: running timer not found: anna",
		},
		{
			name:      "Store error",
			operation: "stop timer",
			err:       apperrors.NewStoreError("complete entry", stderrors.New("database is locked")),
			expected:  "failed to stop timer: The entry could not be saved. Please try again.",
		},
		{
			name:      "Regular error",
			operation: "export entries",
			err:       stderrors.New("disk full"),
			expected:  "failed to export entries: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, eh.Handle(tt.operation, tt.err), tt.expected)
		})
	}
}

func TestErrorHandler_HandleSimple(t *testing.T) {
	eh := NewErrorHandler()
	plain := stderrors.New("plain")

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"conflict", apperrors.NewConflictError("a timer is already running"), "a timer is already running"},
		{"timeout", apperrors.NewTimeoutError("list entries", "10s"), "The operation timed out. Please try again."},
		{"plain error", plain, "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, eh.HandleSimple(tt.err), tt.expected)
		})
	}
	assert.Same(t, plain, eh.HandleSimple(plain))
}

func TestErrorHandler_Classification(t *testing.T) {
	eh := NewErrorHandler()

	ve := validation.NewValidationError()
	ve.AddRequiredError("activity")

	assert.True(t, eh.IsValidationError(ve))
	assert.True(t, eh.IsValidationError(apperrors.NewValidationError("bad", nil)))
	assert.False(t, eh.IsValidationError(apperrors.NewConflictError("running")))
	assert.True(t, eh.IsNotFoundError(apperrors.NewNotFoundError("entry", "42")))
	assert.True(t, eh.IsConflictError(apperrors.NewConflictError("running")))
	assert.True(t, eh.IsStoreError(apperrors.NewStoreError("insert", nil)))
	assert.Equal(t, "CONFLICT", eh.GetErrorCode(apperrors.NewConflictError("running")))
	assert.Equal(t, "UNKNOWN_ERROR", eh.GetErrorCode(stderrors.New("x")))
}

func TestErrorHandler_KeepsCause(t *testing.T) {
	eh := NewErrorHandler()
	cause := apperrors.NewConflictError("a timer is already running")

	err := eh.Handle("start timer", cause)

	assert.EqualError(t, err, "failed to start timer: a timer is already running")
	assert.True(t, eh.IsConflictError(err))
	assert.ErrorIs(t, err, cause)
	assert.NoError(t, eh.Handle("start timer", nil))
}
