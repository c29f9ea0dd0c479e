package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared by the gateway and the stores.
type ErrorCode string

const (
	ErrCodeAuthRequired ErrorCode = "AUTH_REQUIRED"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeHTTP         ErrorCode = "HTTP"
	ErrCodeNetwork      ErrorCode = "NETWORK"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeSignupFailed ErrorCode = "SIGNUP_FAILED"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	// Status is the HTTP status of the response that produced the error, 0 otherwise.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewHTTPError builds the error reported for a non-success, non-401 response.
// An empty message falls back to the generic status text.
func NewHTTPError(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("HTTP error! status: %d", status)
	}
	return &Error{Code: ErrCodeHTTP, Message: message, Status: status}
}

// Common domain errors.
var (
	ErrAuthRequired        = NewError(ErrCodeAuthRequired, "Authentication required. Please log in.")
	ErrAuthExpired         = &Error{Code: ErrCodeUnauthorized, Message: "Authentication required. Please log in.", Status: 401}
	ErrSignupFailed        = NewError(ErrCodeSignupFailed, "Signup failed. Please try again.")
	ErrTitleRequired       = NewError(ErrCodeInvalid, "task title is required")
	ErrCategoryNameMissing = NewError(ErrCodeInvalid, "category name is required")
	ErrTaskIDMissing       = NewError(ErrCodeInvalid, "task id is required")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
