package errors

import (
	"errors"
	"fmt"
)

var errorCodes = [...]string{
	ErrorTypeValidation:   "VALIDATION_FAILED",
	ErrorTypeNotFound:     "NOT_FOUND",
	ErrorTypeConflict:     "CONFLICT",
	ErrorTypeStore:        "STORE_ERROR",
	ErrorTypeInvalidInput: "INVALID_INPUT",
	ErrorTypeTimeout:      "TIMEOUT",
	ErrorTypePermission:   "PERMISSION_DENIED",
}

// codeFor returns the default code of t.
func codeFor(t ErrorType) string {
	if t < 0 || int(t) >= len(errorCodes) {
		return "UNKNOWN_ERROR"
	}
	return errorCodes[t]
}

// newError builds an AppError with its type's default code. kv are
// alternating context keys and values.
func newError(t ErrorType, message string, cause error, kv ...any) *AppError {
	e := &AppError{
		Type:    t,
		Message: message,
		Code:    codeFor(t),
		Cause:   cause,
		Context: make(map[string]any, len(kv)/2),
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			e.Context[key] = kv[i+1]
		}
	}
	return e
}

func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, message, cause)
}

// NewNotFoundError reports a missing resource. identifier may be empty.
func NewNotFoundError(resource string, identifier string) *AppError {
	message := resource + " not found"
	if identifier != "" {
		message += ": " + identifier
	}
	return newError(ErrorTypeNotFound, message, nil, "resource", resource, "identifier", identifier)
}

// NewConflictError reports an operation that clashes with current state,
// such as starting a timer while one is running.
func NewConflictError(message string) *AppError {
	return newError(ErrorTypeConflict, message, nil)
}

// NewStoreError wraps a persistence failure. The entry store is the only
// external dependency whose failures users see.
func NewStoreError(operation string, cause error) *AppError {
	return newError(ErrorTypeStore, "store operation failed: "+operation, cause, "operation", operation)
}

func NewInvalidInputError(field string, value any, reason string) *AppError {
	return newError(ErrorTypeInvalidInput, fmt.Sprintf("invalid input for %s: %s", field, reason), nil,
		"field", field, "value", value, "reason", reason)
}

func NewTimeoutError(operation string, timeout any) *AppError {
	return newError(ErrorTypeTimeout, "operation timed out: "+operation, nil, "operation", operation, "timeout", timeout)
}

func NewPermissionError(operation string, resource string) *AppError {
	return newError(ErrorTypePermission, fmt.Sprintf("permission denied for %s on %s", operation, resource), nil,
		"operation", operation, "resource", resource)
}

// WrapError classifies err as errorType with a new message.
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return newError(errorType, message, err)
}

func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.IsType(errorType)
}

// userError reports types whose messages are written for the person at the keyboard.
func userError(t ErrorType) bool {
	switch t {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeConflict, ErrorTypeInvalidInput:
		return true
	}
	return false
}

// GetUserMessage returns the text shown to users. Store and timeout
// failures get a retry hint instead of driver detail.
func GetUserMessage(err error) string {
	appErr, ok := AsAppError(err)
	if !ok {
		return err.Error()
	}
	switch {
	case userError(appErr.Type), appErr.Type == ErrorTypePermission:
		return appErr.Message
	case appErr.Type == ErrorTypeStore:
		return "The entry could not be saved. Please try again."
	case appErr.Type == ErrorTypeTimeout:
		return "The operation timed out. Please try again."
	default:
		return "An unexpected error occurred. Please try again."
	}
}

func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError is false for mistakes the user can fix themselves.
func ShouldLogError(err error) bool {
	appErr, ok := AsAppError(err)
	return !ok || !userError(appErr.Type)
}
