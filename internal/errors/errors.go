// Package errors provides standardized domain errors with codes for IconVault.
//
// Usage:
//
//	// In stores and services - return typed errors
//	if hasChildren {
//	    return errors.IntegrityViolationf("category %s has child categories", id)
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    fmt.Fprintln(os.Stderr, "no such icon")
//	    return
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeValidation         Code = "VALIDATION"
	CodeConflict           Code = "CONFLICT"
	CodeIntegrityViolation Code = "INTEGRITY_VIOLATION"
	CodeStorage            Code = "STORAGE"
	CodeCorrupt            Code = "CORRUPT"
	CodeContentUnavailable Code = "CONTENT_UNAVAILABLE"
	CodeUnsupported        Code = "UNSUPPORTED"
	CodeInternal           Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitzero"`
	cause   error             // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists      = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflict"}
	ErrIntegrityViolation = &Error{Code: CodeIntegrityViolation, Message: "integrity violation"}
	ErrStorage            = &Error{Code: CodeStorage, Message: "storage failure"}
	ErrCorrupt            = &Error{Code: CodeCorrupt, Message: "corrupt document"}
	ErrContentUnavailable = &Error{Code: CodeContentUnavailable, Message: "content unavailable"}
	ErrUnsupported        = &Error{Code: CodeUnsupported, Message: "unsupported operation"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists creates an already exists error.
func AlreadyExists(msg string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: msg}
}

// AlreadyExistsf creates an already exists error with formatted message.
func AlreadyExistsf(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error carrying per-field messages.
func ValidationWithDetails(msg string, details map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Conflictf creates a conflict error with formatted message.
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// IntegrityViolation creates an integrity violation error.
func IntegrityViolation(msg string) *Error {
	return &Error{Code: CodeIntegrityViolation, Message: msg}
}

// IntegrityViolationf creates an integrity violation error with formatted message.
func IntegrityViolationf(format string, args ...any) *Error {
	return &Error{Code: CodeIntegrityViolation, Message: fmt.Sprintf(format, args...)}
}

// Storage creates a storage failure error.
func Storage(msg string) *Error {
	return &Error{Code: CodeStorage, Message: msg}
}

// Storagef creates a storage failure error with formatted message.
func Storagef(format string, args ...any) *Error {
	return &Error{Code: CodeStorage, Message: fmt.Sprintf(format, args...)}
}

// Corrupt creates a corrupt document error.
func Corrupt(msg string) *Error {
	return &Error{Code: CodeCorrupt, Message: msg}
}

// ContentUnavailable creates a content unavailable error.
func ContentUnavailable(msg string) *Error {
	return &Error{Code: CodeContentUnavailable, Message: msg}
}

// ContentUnavailablef creates a content unavailable error with formatted message.
func ContentUnavailablef(format string, args ...any) *Error {
	return &Error{Code: CodeContentUnavailable, Message: fmt.Sprintf(format, args...)}
}

// Unsupported creates an unsupported operation error.
func Unsupported(msg string) *Error {
	return &Error{Code: CodeUnsupported, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}
