package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for graph facade errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Domain validation error codes
const (
	DOMAIN_INVALID_ACCOUNT     ErrorCode = "DOMAIN_INVALID_ACCOUNT"
	DOMAIN_INVALID_INSTRUMENT  ErrorCode = "DOMAIN_INVALID_INSTRUMENT"
	DOMAIN_INVALID_PRICE       ErrorCode = "DOMAIN_INVALID_PRICE"
	DOMAIN_INVALID_TRANSACTION ErrorCode = "DOMAIN_INVALID_TRANSACTION"
)

// Error represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is an Error with the same Code.
func (e *Error) Is(target error) bool {
	var facadeErr *Error
	if errors.As(target, &facadeErr) {
		return e.Code == facadeErr.Code
	}
	return false
}

// NewError creates a new non-retryable Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable Error with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable Error that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// WrapRetryableError creates a retryable Error that wraps an existing error.
// Use for transient failures (connectivity, leader switches) that may succeed
// when the caller retries.
func WrapRetryableError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// IsRetryable reports whether err carries a retryability hint anywhere in its
// chain.
func IsRetryable(err error) bool {
	var facadeErr *Error
	if errors.As(err, &facadeErr) {
		return facadeErr.Retryable
	}
	return false
}

// IsCode reports whether err carries the given error code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var facadeErr *Error
	if errors.As(err, &facadeErr) {
		return facadeErr.Code == code
	}
	return false
}

// CodeOf returns the error code of err if it is a structured Error,
// or an empty code otherwise.
func CodeOf(err error) ErrorCode {
	var facadeErr *Error
	if errors.As(err, &facadeErr) {
		return facadeErr.Code
	}
	return ""
}
