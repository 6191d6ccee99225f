// Package apperror defines the closed set of error kinds the API can surface.
//
// Every failure that crosses a package boundary in this codebase is one of the
// sentinel kinds below, wrapped in an *AppError that carries the client-facing
// message. Handlers never inspect concrete error types from lower layers —
// they match the kind with errors.Is and read the message from the AppError.
// That keeps the policy auditable: the full list of things that can go wrong,
// and the status each maps to, lives in this one file.
package apperror

import (
	"errors"
	"net/http"
)

// Sentinel kinds. Each maps to exactly one HTTP status (see Status).
var (
	ErrBadRequest   = errors.New("bad request")  // 400: field validation failed
	ErrUnauthorized = errors.New("unauthorized") // 401: bad token, ownership or immutability violation
	ErrNotFound     = errors.New("not found")    // 404: record does not exist
	ErrConflict     = errors.New("conflict")     // 409: uniqueness violation
)

// AppError is a tagged error: Err says WHICH kind it is, Message is what the
// client sees, Field optionally names the offending input field.
type AppError struct {
	Err     error  // one of the sentinel kinds above
	Message string // human-readable, returned verbatim in the response body
	Field   string // optional: input field that caused the error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel kind so errors.Is(err, ErrNotFound) works
// through any number of fmt.Errorf("%w") wrappers above us.
func (e *AppError) Unwrap() error {
	return e.Err
}

// BadRequest reports a field-level validation failure.
func BadRequest(field, message string) *AppError {
	return &AppError{
		Err:     ErrBadRequest,
		Message: message,
		Field:   field,
	}
}

// Unauthorized reports a failed token, ownership, or immutability check.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// NotFound reports a missing record.
func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

// Conflict reports a uniqueness violation on the named field.
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// Status maps an error to its HTTP status code.
//
// Anything that isn't one of our kinds is an infrastructure failure and
// becomes a 500 — the caller can't correct it, and we don't retry.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
