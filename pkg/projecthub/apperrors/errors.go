// Package apperrors defines the stable error kinds surfaced by the workflow services.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind represents a stable error kind for programmatic handling.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindInvalidInput Kind = "invalid_input"
	KindInvalidRole  Kind = "invalid_role"
	KindInternal     Kind = "internal"
)

// Error carries a kind, a human readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error { return e.Err }

// Newf creates a new Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error     { return Newf(KindNotFound, format, args...) }
func Forbidden(format string, args ...any) *Error    { return Newf(KindForbidden, format, args...) }
func Conflict(format string, args ...any) *Error     { return Newf(KindConflict, format, args...) }
func InvalidState(format string, args ...any) *Error { return Newf(KindInvalidState, format, args...) }
func InvalidInput(format string, args ...any) *Error { return Newf(KindInvalidInput, format, args...) }
func InvalidRole(format string, args ...any) *Error  { return Newf(KindInvalidRole, format, args...) }

// Internal wraps a lower-level failure (usually storage) as an opaque internal error.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// Storage classifies a store error. Unique-constraint violations become a conflict
// with conflictMsg (message when empty); record-not-found becomes not found; everything else is internal.
func Storage(err error, message, conflictMsg string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if conflictMsg == "" {
			conflictMsg = message
		}
		return &Error{Kind: KindConflict, Message: conflictMsg, Err: err}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Message: message, Err: err}
	}
	return Internal(err, message)
}

// KindOf returns the kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is checks if an error has the provided kind (through unwrapping).
func Is(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// Message returns the caller-facing message for err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae.Message
	}
	return "Internal server error"
}

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindInvalidState:
		return http.StatusUnprocessableEntity
	case KindInvalidInput, KindInvalidRole:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
