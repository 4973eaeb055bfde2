package utils

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
)

// ApiError is an error that already knows the HTTP status it maps to.
type ApiError struct {
	StatusCode int
	Message    string
	Stack      string
	Err        error
}

func (e *ApiError) Error() string {
	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func NewApiError(code int, message string) *ApiError {
	return &ApiError{StatusCode: code, Message: message, Stack: string(debug.Stack())}
}

// WrapApiError keeps cause reachable through errors.Is/As.
func WrapApiError(code int, message string, cause error) *ApiError {
	e := NewApiError(code, message)
	e.Err = cause
	return e
}

func Unauthorized(message string) *ApiError {
	return NewApiError(http.StatusUnauthorized, message)
}

func Forbidden(message string) *ApiError {
	return NewApiError(http.StatusForbidden, message)
}

func NotFound(message string) *ApiError {
	return NewApiError(http.StatusNotFound, message)
}

func BadRequest(message string) *ApiError {
	return NewApiError(http.StatusBadRequest, message)
}

func Conflict(message string) *ApiError {
	return NewApiError(http.StatusConflict, message)
}

func Validation(err error) *ApiError {
	return WrapApiError(http.StatusBadRequest, fmt.Sprintf("Validation Error: %v", err), err)
}

// AsApiError reports whether err is, or wraps, an *ApiError.
func AsApiError(err error) (*ApiError, bool) {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
