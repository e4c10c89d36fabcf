// Package errors defines the coded application error used across the
// service and its mapping onto HTTP responses.
package errors

import (
	"errors"
	"fmt"
)

// Re-exported so callers need a single errors import.
var (
	New    = errors.New
	Unwrap = errors.Unwrap
	Is     = errors.Is
	As     = errors.As
)

// AppError is an error with a stable machine readable code.
type AppError struct {
	code    string
	message string
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

// Code returns the error code, e.g. NOT_FOUND.
func (e *AppError) Code() string { return e.code }

// Message returns the client-safe message without the wrapped cause.
func (e *AppError) Message() string { return e.message }

func (e *AppError) Unwrap() error { return e.err }

// NewAppError creates a coded error. err may be nil.
func NewAppError(code, message string, err error) *AppError {
	return &AppError{code: code, message: message, err: err}
}

// Wrap annotates err with message, keeping the code of an inner AppError
// or falling back to INTERNAL.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	code := ErrInternal
	var appErr *AppError
	if As(err, &appErr) {
		code = appErr.Code()
	}
	return NewAppError(code, message, err)
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code()
	}
	return ErrInternal
}
