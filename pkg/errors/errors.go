// Package errors provides structured error types for lzmap.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes map one-to-one onto the failure categories of the diagram pipeline:
// configuration problems, reference integrity, containment structure, layout
// invariants, and classification coverage, plus generic input/internal codes
// for the outer surfaces.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "malformed address space: %s", cidr)
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "serialize diagram")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the pipeline failure taxonomy.
const (
	// ErrCodeConfiguration marks invalid or contradictory preset values,
	// such as a malformed address space.
	ErrCodeConfiguration Code = "CONFIGURATION"

	// ErrCodeReference marks a dangling parent, child, or edge endpoint.
	ErrCodeReference Code = "REFERENCE"

	// ErrCodeStructural marks multi-parent assignment or a containment cycle.
	ErrCodeStructural Code = "STRUCTURAL"

	// ErrCodeLayoutInvariant marks a child rectangle escaping its parent's
	// final bounds after sizing.
	ErrCodeLayoutInvariant Code = "LAYOUT_INVARIANT"

	// ErrCodeClassificationMismatch marks per-tier group sizes not summing
	// to the total input record count. Non-fatal: reported, not aborted on.
	ErrCodeClassificationMismatch Code = "CLASSIFICATION_MISMATCH"

	// ErrCodeSerialization marks a node or edge reaching the serializer
	// without bounds (layout was skipped for it).
	ErrCodeSerialization Code = "SERIALIZATION"

	// Generic codes for the CLI and API surfaces.
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeInternal      Code = "INTERNAL_ERROR"
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

// Is reports whether err carries the given error code.
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
	var v *ValidationError
	if errors.As(err, &v) && len(v.Violations) > 0 {
		return v.Violations[0].Code
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
