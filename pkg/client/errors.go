package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)

// ErrorClass represents a classification of portal errors.
type ErrorClass string

const (
	// ErrorClassTransport represents network/connection failures.
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassDecode represents responses not matching the expected JSON shape.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassUpstream represents explicit error payloads from the provider.
	ErrorClassUpstream ErrorClass = "upstream"

	// ErrorClassAuth represents missing, expired, or rejected credentials.
	ErrorClassAuth ErrorClass = "auth"
)

// APIError represents a portal-specific error with additional context.
type APIError struct {
	Class      ErrorClass
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("portal %s error: %s", e.Class, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("portal %s error (status %d): %s", e.Class, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// ClassOf returns the error class of err, or empty when err carries none.
func ClassOf(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class
	}
	return ""
}

// ErrorFromOutcome converts a non-OK decode outcome into an APIError.
// The detail carries the upstream message or the missing field name.
func ErrorFromOutcome(outcome DecodeOutcome, detail string) *APIError {
	var apiErr *APIError

	switch outcome {
	case DecodeWrongShape:
		apiErr = &APIError{Class: ErrorClassDecode, Message: "response is not a JSON object"}
	case DecodeMissingField:
		apiErr = &APIError{Class: ErrorClassDecode, Message: fmt.Sprintf("required field %q missing", detail)}
	case DecodeUpstreamError:
		apiErr = &APIError{Class: ErrorClassUpstream, Message: detail}
	default:
		return nil
	}

	portalErrorsTotal.WithLabelValues(string(apiErr.Class)).Inc()
	return apiErr
}
