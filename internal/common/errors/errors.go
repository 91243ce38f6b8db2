// Package errors provides standardized error handling for ServiceNow tool operations.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRecordNotFound   ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeResolutionFailed ErrorCode = "RESOLUTION_FAILED"

	ErrCodeTransportError ErrorCode = "TRANSPORT_ERROR"
	ErrCodeAPIError       ErrorCode = "API_ERROR"

	ErrCodeMalformedInput   ErrorCode = "MALFORMED_INPUT"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeUnknown ErrorCode = "UNKNOWN_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewRecordNotFoundError creates a non-retryable not-found error.
// Not-found is a normal outcome for lookups; this error exists for callers
// that require the record to be present.
func NewRecordNotFoundError(table, identifier string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   "Record not found",
		Details:   fmt.Sprintf("table: %s, identifier: %s", table, identifier),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResolutionFailedError creates a non-retryable identifier resolution error.
func NewResolutionFailedError(kind, input string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResolutionFailed,
		Message:   fmt.Sprintf("Could not resolve %s identifier", kind),
		Details:   fmt.Sprintf("input: %s", input),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportError creates a retryable network-level error.
func NewTransportError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportError,
		Message:   "Transport failure calling ServiceNow",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAPIError creates an error for a non-2xx application response.
func NewAPIError(statusCode int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAPIError,
		Message:   fmt.Sprintf("ServiceNow API returned status %d", statusCode),
		Details:   body,
		Retryable: statusCode >= 500,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedInputError creates a non-retryable input error, raised before
// any network call is made.
func NewMalformedInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedInput,
		Message:   "Malformed input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable parameter validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Parameter validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Failed to send notification",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Helpers
// ==========================

// CodeOf extracts the error code from an error, returning UNKNOWN_ERROR for
// plain errors and nil errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeUnknown
	}
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ErrCodeUnknown
}

// Convert wraps a plain error into a StandardError, passing StandardErrors
// through unchanged.
func Convert(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeUnknown,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsCode reports whether err is a StandardError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == code
}
