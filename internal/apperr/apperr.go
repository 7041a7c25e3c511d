// Package apperr defines the error kinds surfaced to API callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and for the HTTP layer
type Kind string

const (
	KindUnauthorized      Kind = "unauthorized"
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindForbidden         Kind = "forbidden"
	KindInconsistentState Kind = "inconsistent_state"
	KindInternal          Kind = "internal"
)

// Error is a request-local failure with a machine-checkable kind
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error

	// Status overrides the kind's HTTP status when set
	Status int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithStatus sets the response status of e without changing its kind
func (e *Error) WithStatus(code int) *Error {
	e.Status = code
	return e
}

// StatusCode is the HTTP status e is answered with
func (e *Error) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	return HTTPStatus(e.Kind)
}

// Unauthorized is returned when an operation needs an authenticated user
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Validation names the offending field
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Required is a Validation error for a missing field
func Required(field string) *Error {
	return Validation(field, field+" is required")
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// InconsistentState signals a data-integrity bug, never a user mistake
func InconsistentState(message string) *Error {
	return &Error{Kind: KindInconsistentState, Message: message}
}

// Wrap attaches a kind to an underlying error
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to a response status code
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound, KindInconsistentState:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
