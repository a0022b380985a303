// Package apperrors holds the error kinds that services return and that the
// api layer maps onto HTTP status codes.
package apperrors

import (
	"errors"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrAuth            = errors.New("authentication error")
	ErrPermission      = errors.New("permission denied")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrExternalService = errors.New("external service error")
)

// Error carries a message that is safe to show to clients. errors.Is matches
// it against its kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

func New(kind error, msg string) error {
	return &Error{kind: kind, msg: msg}
}

func Validation(msg string) error {
	return New(ErrValidation, msg)
}

func Auth(msg string) error {
	return New(ErrAuth, msg)
}

func Permission(msg string) error {
	return New(ErrPermission, msg)
}

func Conflict(msg string) error {
	return New(ErrConflict, msg)
}

func NotFound(msg string) error {
	return New(ErrNotFound, msg)
}

func ExternalService(msg string) error {
	return New(ErrExternalService, msg)
}

// Message returns the client facing message of err, or fallback if err was
// not created by this package.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	return fallback
}
