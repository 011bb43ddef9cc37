// Package errors defines the typed errors shared by the domain, the services
// and the HTTP layer. Each error carries the status the API answers with.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a coded error. Err, when set, is the underlying cause and is never
// serialised.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates an Error.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap creates an Error around cause.
func Wrap(cause error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: cause}
}

// Admission rule violations.
var (
	ErrValidation       = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNotFound         = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrStateConflict    = New("STATE_CONFLICT", http.StatusConflict, "operation not allowed in current state")
	ErrNoSeatsAvailable = New("NO_SEATS_AVAILABLE", http.StatusConflict, "no seats available for segment")
)

// Operator access.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid username or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
)

// Infrastructure.
var (
	ErrInternal    = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrUnavailable = New("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, "service unavailable")

	// ErrCacheMiss is returned by cache lookups that found nothing. It never
	// reaches a client.
	ErrCacheMiss = errors.New("cache miss")
)

// FromError returns the *Error in err's chain, or wraps err as an internal
// error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := as(err); ok {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies a sentinel, replacing its message when one is given.
func Clone(sentinel *Error, message string) *Error {
	if sentinel == nil {
		return nil
	}
	clone := *sentinel
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// HasCode reports whether err's chain holds an *Error with code.
func HasCode(err error, code string) bool {
	e, ok := as(err)
	return ok && e.Code == code
}

func as(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
