package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

// Code returns the machine-readable error code
func (e *ValidationError) Code() string {
	return "validation_error"
}

// InternalError represents a failure the caller cannot fix by retrying the same input.
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// Code returns the machine-readable error code
func (e *InternalError) Code() string {
	return "internal_error"
}

// UnavailableError represents a dependency that could not be reached in time.
// Requests failing this way may succeed when retried.
type UnavailableError struct {
	Message string
	Err     error
}

// NewUnavailableError creates a new unavailable error
func NewUnavailableError(message string, err error) *UnavailableError {
	return &UnavailableError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *UnavailableError) HTTPStatus() int {
	return http.StatusServiceUnavailable
}

// Code returns the machine-readable error code
func (e *UnavailableError) Code() string {
	return "service_unavailable"
}

// HTTPError is implemented by errors that map onto an HTTP response.
type HTTPError interface {
	error
	HTTPStatus() int
	Code() string
}

// AsHTTPError finds the first HTTPError in err's chain.
// Errors without one are reported as internal errors.
func AsHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return NewInternalError("internal server error", err)
}
