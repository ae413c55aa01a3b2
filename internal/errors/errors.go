// Package errors provides structured error handling with a category taxonomy.
//
// Categories map to how the bot reacts: validation errors are surfaced to the
// submitting user, not-found and conflict are ordinary business outcomes,
// delivery errors are logged and isolated per recipient, upstream errors
// degrade the single operation that hit them.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error for metrics and response handling.
type ErrorType string

const (
	// TypeValidation indicates malformed feedback input
	TypeValidation ErrorType = "validation"
	// TypeNotFound indicates a missing session or unenrolled user
	TypeNotFound ErrorType = "not_found"
	// TypeConflict indicates a session already exists or is in the wrong phase
	TypeConflict ErrorType = "conflict"
	// TypeDelivery indicates a failed notification to a single recipient
	TypeDelivery ErrorType = "delivery"
	// TypeUpstream indicates a failed membership/presence/reaction lookup
	TypeUpstream ErrorType = "upstream"
	// TypeInternal indicates an unexpected server-side error
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ValidationError creates a new validation error.
func ValidationError(message string) *Error {
	return &Error{
		Type:    TypeValidation,
		Message: message,
		Context: make(map[string]any),
	}
}

// NotFoundError creates a new not-found error.
func NotFoundError(message string) *Error {
	return &Error{
		Type:    TypeNotFound,
		Message: message,
		Context: make(map[string]any),
	}
}

// ConflictError creates a new conflict error.
func ConflictError(message string) *Error {
	return &Error{
		Type:    TypeConflict,
		Message: message,
		Context: make(map[string]any),
	}
}

// DeliveryError creates a new per-recipient delivery error.
func DeliveryError(message string, cause error) *Error {
	return &Error{
		Type:    TypeDelivery,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// UpstreamError creates a new upstream-unavailable error.
func UpstreamError(message string, cause error) *Error {
	return &Error{
		Type:    TypeUpstream,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// InternalError creates a new internal error.
func InternalError(message string, cause error) *Error {
	return &Error{
		Type:    TypeInternal,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// IsType reports whether err is a structured error of the given type.
func IsType(err error, t ErrorType) bool {
	var structured *Error
	if errors.As(err, &structured) {
		return structured.Type == t
	}
	return false
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal error", err)
}
