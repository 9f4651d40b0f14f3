package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeUnsupported     ErrorType = "unsupported"
	ErrorTypeResponseContent ErrorType = "response_content"
	ErrorTypeOAuth           ErrorType = "oauth"
	ErrorTypeGraph           ErrorType = "graph"
	ErrorTypeNetwork         ErrorType = "network"
	ErrorTypeRateLimit       ErrorType = "rate_limit"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeServerError     ErrorType = "server_error"
	ErrorTypeUnknown         ErrorType = "unknown"
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	// Param names the offending parameter for validation errors.
	Param string
	// Subcode and TraceID are copied from Graph error envelopes.
	Subcode int
	TraceID string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewValidation reports a missing or blank required parameter.
func NewValidation(param string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf("parameter '%s' is required and must not be blank", param),
		Param:   param,
	}
}

// NewUnsupported reports a call shape the client variant does not implement.
func NewUnsupported(message string) *Error {
	return &Error{
		Type:    ErrorTypeUnsupported,
		Message: message,
	}
}

// NewResponseContent wraps a failure to extract content from a successful response.
func NewResponseContent(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeResponseContent,
		Message: message,
		Cause:   cause,
	}
}

// Is reports whether err is, or wraps, an *Error of the given type.
func Is(err error, errorType ErrorType) bool {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Type == errorType
	}
	return false
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429:
		return true
	case 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}
