package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Configuration errors
	ErrConfigInvalid   ErrorCode = "CONFIG_INVALID"
	ErrExternalMapping ErrorCode = "EXTERNAL_MAPPING"

	// Copy errors
	ErrSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"
	ErrDirConflict    ErrorCode = "DIR_CONFLICT"
	ErrPermission     ErrorCode = "PERMISSION"

	// Ledger errors
	ErrLedgerCorrupt ErrorCode = "LEDGER_CORRUPT"
	ErrLedgerWrite   ErrorCode = "LEDGER_WRITE"

	// Reconciliation errors
	ErrCleanup ErrorCode = "CLEANUP"

	// Interaction errors
	ErrPromptUnavailable ErrorCode = "PROMPT_UNAVAILABLE"
)

// OpusError represents a structured error with code and details
type OpusError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *OpusError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *OpusError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *OpusError) Is(target error) bool {
	var targetErr *OpusError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new OpusError with the given code and message
func New(code ErrorCode, message string) *OpusError {
	return &OpusError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new OpusError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *OpusError {
	return &OpusError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an OpusError
func Wrap(err error, code ErrorCode, message string) *OpusError {
	if err == nil {
		return nil
	}
	return &OpusError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *OpusError {
	if err == nil {
		return nil
	}
	return &OpusError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *OpusError) WithDetail(key string, value interface{}) *OpusError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// GetCode extracts the error code from an error, returning ErrUnknown
// for errors that are not OpusErrors.
func GetCode(err error) ErrorCode {
	var opusErr *OpusError
	if errors.As(err, &opusErr) {
		return opusErr.Code
	}
	return ErrUnknown
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}
