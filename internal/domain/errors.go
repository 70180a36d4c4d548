package domain

import (
	"context"
	"errors"
)

// Cause classifies why a store operation failed.
type Cause uint8

const (
	CauseUnknown Cause = iota
	CauseValidation
	CauseNotFound
	CauseConstraint
	CauseConnectivity
)

func (c Cause) String() string {
	switch c {
	case CauseValidation:
		return "validation"
	case CauseNotFound:
		return "not_found"
	case CauseConstraint:
		return "constraint"
	case CauseConnectivity:
		return "connectivity"
	default:
		return "unknown"
	}
}

// StoreError tags a repository failure with its cause
type StoreError struct {
	Cause Cause
	Err   error
}

// NewStoreError wraps err with cause. A nil err stays nil.
func NewStoreError(cause Cause, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Cause: cause, Err: err}
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// CauseOf reports the cause attached to err, falling back to the
// sentinel and context errors it can recognise.
func CauseOf(err error) Cause {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Cause
	}
	switch {
	case err == nil:
		return CauseUnknown
	case errors.Is(err, ErrQuestionNotFound), errors.Is(err, ErrCategoryNotFound):
		return CauseNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CauseConnectivity
	default:
		return CauseUnknown
	}
}
