package cli

import (
	"loipen-tracker/internal/errors"
	"loipen-tracker/internal/validation"
)

// ErrorHandler turns service errors into messages for the terminal.
type ErrorHandler struct{}

func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// commandError prints the user-facing text but still unwraps to the
// original error, so callers can classify it.
type commandError struct {
	msg   string
	cause error
}

func (e *commandError) Error() string { return e.msg }
func (e *commandError) Unwrap() error { return e.cause }

// userMessage prefers field messages, then AppError user messages, then
// the raw error text.
func userMessage(err error) string {
	if ve, ok := err.(*validation.ValidationError); ok {
		return ve.GetUserFriendlyMessage()
	}
	if errors.IsAppError(err) {
		return errors.GetUserMessage(err)
	}
	return err.Error()
}

// Handle prefixes the user message with "failed to <operation>".
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &commandError{msg: "failed to " + operation + ": " + userMessage(err), cause: err}
}

// HandleSimple returns the user message without operation context.
func (eh *ErrorHandler) HandleSimple(err error) error {
	if err == nil {
		return nil
	}
	if !errors.IsAppError(err) && !validation.IsValidationError(err) {
		return err
	}
	return &commandError{msg: userMessage(err), cause: err}
}

func (eh *ErrorHandler) IsValidationError(err error) bool {
	return validation.IsValidationError(err) || errors.IsErrorType(err, errors.ErrorTypeValidation)
}

func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeNotFound)
}

// IsConflictError reports errors caused by the timer being in the wrong state
func (eh *ErrorHandler) IsConflictError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeConflict)
}

// IsStoreError checks if an error comes from the entry store
func (eh *ErrorHandler) IsStoreError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeStore)
}

func (eh *ErrorHandler) GetErrorCode(err error) string {
	return errors.GetErrorCode(err)
}
