package core

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain failure wraps exactly one of them.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Error carries a caller-facing message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func NotFoundf(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func Conflictf(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func InsufficientFundsf(format string, args ...any) error {
	return newError(ErrInsufficientFunds, format, args...)
}

// Kind returns the sentinel an error wraps, or nil for unexpected failures.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrInsufficientFunds} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Message returns the text safe to show a caller. Unexpected failures
// collapse to a generic message so storage details never leak.
func Message(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	if Kind(err) != nil {
		return err.Error()
	}
	return "internal server error"
}
