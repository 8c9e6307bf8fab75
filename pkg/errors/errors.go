// Package errors provides structured error types for lattice.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, pipeline, CLI and HTTP inspector
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (scenes, constraints, options)
//   - NOT_FOUND_*: Resource not found
//   - LAYOUT_*: Engine contract violations and scheduling failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Engine Panics
//
// Contract violations inside the layout engine are not recoverable at the
// point where they are detected. The engine panics with an *Error so that an
// embedding process that chooses to recover can still report a coded error:
//
//	defer func() {
//	    if err := errors.Recovered(recover()); err != nil {
//	        // err carries LAYOUT_* code
//	    }
//	}()
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidScene, "unknown policy %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidScene) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidScene, origErr, "decode %s", path)
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
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidScene       Code = "INVALID_SCENE"
	ErrCodeInvalidConstraints Code = "INVALID_CONSTRAINTS"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidPath        Code = "INVALID_PATH"
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeNodeNotFound  Code = "NODE_NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeSceneNotFound Code = "SCENE_NOT_FOUND"

	// Layout engine contract violations
	ErrCodeIllegalState     Code = "LAYOUT_ILLEGAL_STATE"
	ErrCodeMultipleMeasure  Code = "LAYOUT_MULTIPLE_MEASURE"
	ErrCodePlaceOrder       Code = "LAYOUT_PLACE_ORDER"
	ErrCodeNotAttached      Code = "LAYOUT_NOT_ATTACHED"
	ErrCodeMissingPolicy    Code = "LAYOUT_MISSING_POLICY"
	ErrCodeNotMeasured      Code = "LAYOUT_NOT_MEASURED"
	ErrCodeReentrantPass    Code = "LAYOUT_REENTRANT_PASS"
	ErrCodeInvalidTree      Code = "LAYOUT_INVALID_TREE"
	ErrCodeInconsistentTree Code = "LAYOUT_INCONSISTENT_TREE"
	ErrCodeNotConverged     Code = "LAYOUT_NOT_CONVERGED"

	// Backend errors
	ErrCodeCache   Code = "CACHE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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

// Recovered converts a value returned by recover() into an error.
// It returns nil for a nil value, the value itself when it already is an
// error, and an ErrCodeInternal error otherwise.
func Recovered(v any) error {
	switch r := v.(type) {
	case nil:
		return nil
	case error:
		return r
	default:
		return New(ErrCodeInternal, "panic: %v", r)
	}
}
