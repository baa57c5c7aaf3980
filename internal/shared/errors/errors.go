// Package errors provides application-level error types. Callers branch on
// the error kind, not on concrete error identity: transient kinds report
// Retryable() = true so delivery components can distinguish a failure worth
// retrying from a permanent rejection.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the kind of error
type ErrorType string

const (
	ErrorTypeValidation          ErrorType = "validation_error"
	ErrorTypeNotFound            ErrorType = "not_found"
	ErrorTypeConflict            ErrorType = "conflict"
	ErrorTypeUpstreamUnavailable ErrorType = "upstream_unavailable"
	ErrorTypeUpstreamRejected    ErrorType = "upstream_rejected"
	ErrorTypeRateLimited         ErrorType = "rate_limited"
	ErrorTypeInternal            ErrorType = "internal_error"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Retryable reports whether the failure is transient and may succeed later.
func (e *AppError) Retryable() bool {
	switch e.Type {
	case ErrorTypeUpstreamUnavailable, ErrorTypeRateLimited:
		return true
	}
	return false
}

func newError(t ErrorType, code int, message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{Type: t, Message: message, Code: code, Details: detail}
}

// NewValidationError creates a validation error, rejected before any write.
func NewValidationError(message string, details ...string) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message, details...)
}

// NewNotFoundError creates a not found error (provider, subscription, payment).
func NewNotFoundError(message string, details ...string) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, message, details...)
}

// NewConflictError creates a conflict error (duplicate order_id/event_id).
func NewConflictError(message string, details ...string) *AppError {
	return newError(ErrorTypeConflict, http.StatusConflict, message, details...)
}

// NewUpstreamUnavailableError creates a transient upstream failure
// (transport error, timeout or 5xx from provider/merchant).
func NewUpstreamUnavailableError(message string, details ...string) *AppError {
	return newError(ErrorTypeUpstreamUnavailable, http.StatusBadGateway, message, details...)
}

// NewUpstreamRejectedError creates a permanent upstream rejection (4xx).
func NewUpstreamRejectedError(message string, details ...string) *AppError {
	return newError(ErrorTypeUpstreamRejected, http.StatusBadGateway, message, details...)
}

// NewRateLimitedError creates a self-imposed backpressure error.
func NewRateLimitedError(message string, details ...string) *AppError {
	return newError(ErrorTypeRateLimited, http.StatusTooManyRequests, message, details...)
}

// NewInternalError creates an internal error.
func NewInternalError(message string, details ...string) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message, details...)
}

// GetAppError extracts AppError from err, or nil if it is not one.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Type == t
	}
	return false
}

// IsRetryable reports whether err is a transient AppError. Unknown errors
// default to retryable so unknown transport failures are not dropped.
func IsRetryable(err error) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Retryable()
	}
	return true
}
