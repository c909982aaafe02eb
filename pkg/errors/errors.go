// Package errors provides structured error types for the pipetree core.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the resolver core, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - A clean separation between fatal failures and retryable probe
//     deferrals
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (caller bugs, never retried)
//   - MISSING_TOPOLOGY / NO_AVAILABLE_PORT: the declared topology is
//     absent or unusable, fatal for the device being initialized
//   - *_NOT_FOUND: an expected link or device is not described
//   - DEFER_PROBE: a dependency has not registered itself yet; this is
//     the only retryable condition
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDeviceNotFound, "no remote node for %s", path)
//	if errors.Is(err, errors.ErrCodeDeviceNotFound) {
//	    // Handle missing device
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidManifest, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Topology errors, fatal for the device being probed
	ErrCodeMissingTopology Code = "MISSING_TOPOLOGY"
	ErrCodeNoAvailablePort Code = "NO_AVAILABLE_PORT"

	// Resource not found errors
	ErrCodeEndpointNotFound Code = "ENDPOINT_NOT_FOUND"
	ErrCodeDeviceNotFound   Code = "DEVICE_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Retryable: a dependency has not registered itself yet
	ErrCodeDeferProbe Code = "DEFER_PROBE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsDeferProbe reports whether err asks the caller to retry after other
// components have finished registering. Every other error class is final
// and must not be retried.
func IsDeferProbe(err error) bool {
	return Is(err, ErrCodeDeferProbe)
}
