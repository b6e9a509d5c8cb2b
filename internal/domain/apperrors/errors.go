package apperrors

import (
	"errors"
	"fmt"
)

// Code classifies an application error for the HTTP boundary.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeUnavailable   Code = "UNAVAILABLE"
	CodeNotConfigured Code = "NOT_CONFIGURED"
	CodeUpstream      Code = "UPSTREAM_ERROR"
)

// AppError carries a classification, a user-facing message and an optional cause.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// New builds an AppError.
func New(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Validation builds a validation error with a formatted message.
func Validation(format string, args ...any) *AppError {
	return &AppError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// From extracts the first AppError in err's chain.
func From(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	appErr, ok := From(err)
	return ok && appErr.Code == code
}

var (
	ErrNotFound      = New(CodeNotFound, "resource not found", nil)
	ErrConflict      = New(CodeConflict, "resource already exists", nil)
	ErrUnavailable   = New(CodeUnavailable, "feature unavailable", nil)
	ErrNotConfigured = New(CodeNotConfigured, "feature not configured", nil)
)
