package service

import (
	"errors"
	"fmt"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// Failure classes visible to callers
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnprocessable  = errors.New("could not process request")
)

// Error carries the failure class of an operation together with the
// store-level cause, so callers can branch on the class with errors.Is
// while logs keep the cause.
type Error struct {
	Op    string
	Class error
	Cause domain.Cause
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Class)
	}
	return fmt.Sprintf("%s: %v (%s): %v", e.Op, e.Class, e.Cause, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Class}
	}
	return []error{e.Class, e.Err}
}

func fail(op string, class, err error) error {
	cause := domain.CauseOf(err)
	if err == nil {
		switch class {
		case ErrInvalidRequest:
			cause = domain.CauseValidation
		case ErrNotFound:
			cause = domain.CauseNotFound
		}
	}
	return &Error{Op: op, Class: class, Cause: cause, Err: err}
}

// CauseOf returns the cause recorded on a service error, or classifies err directly.
func CauseOf(err error) domain.Cause {
	var se *Error
	if errors.As(err, &se) {
		return se.Cause
	}
	return domain.CauseOf(err)
}
