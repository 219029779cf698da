package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindCartEmpty
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindCartEmpty:
		return "cart_empty"
	default:
		return "internal"
	}
}

// AppError is the error type services return to controllers.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind and code so wrapped copies still compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

func NewValidation(code, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

func NewNotFound(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

func NewConflict(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

func NewCartEmpty(message string) *AppError {
	return &AppError{Kind: KindCartEmpty, Code: CartEmpty, Message: message}
}

// Internal wraps an unexpected failure.
func Internal(err error, message string) *AppError {
	return &AppError{Kind: KindInternal, Code: InternalServerError, Message: message, Err: err}
}

// Wrap returns a copy of the sentinel carrying err as its cause.
func Wrap(sentinel *AppError, err error) *AppError {
	cp := *sentinel
	cp.Err = err
	return &cp
}

// As extracts an *AppError from err. Anything else is reported as internal.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err, "unexpected error")
}
