package providers

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrUnknownProvider is returned when a selector names no known provider
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrProviderNotConfigured is returned when a known provider has no adapter registered
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrProviderAlreadyRegistered is returned when trying to register a duplicate provider
	ErrProviderAlreadyRegistered = errors.New("provider already registered")
)

// Error codes shared by all adapters
const (
	CodeAuthentication = "authentication_error"
	CodeRateLimited    = "rate_limited"
	CodeTimeout        = "timeout"
	CodeUnavailable    = "unavailable"
	CodeBadRequest     = "bad_request"
	CodeEmptyResponse  = "empty_response"
	CodeBlocked        = "blocked"
	CodeUnknown        = "unknown_error"
)

// ProviderError is the normalized failure of a single upstream call
type ProviderError struct {
	// Provider that generated the error
	Provider Name

	// Code is one of the Code* constants
	Code string

	// Message is a human readable summary
	Message string

	// StatusCode is the upstream HTTP status (0 when not applicable)
	StatusCode int

	// Transient is true when the same call could succeed later
	Transient bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	msg := string(e.Provider) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider Name, code, message string, statusCode int, transient bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Transient:  transient,
		Cause:      cause,
	}
}

// AsProviderError normalizes any error returned by an adapter.
// Errors that are already *ProviderError are returned as is
func AsProviderError(provider Name, err error) *ProviderError {
	if err == nil {
		return nil
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewProviderError(provider, CodeTimeout, "request timed out", 0, true, err)
	case errors.Is(err, context.Canceled):
		return NewProviderError(provider, CodeTimeout, "request canceled", 0, false, err)
	}

	return NewProviderError(provider, CodeUnknown, "request failed", 0, false, err)
}

// ClassifyStatus maps an upstream HTTP status to an error code and transience
func ClassifyStatus(status int) (code string, transient bool) {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return CodeAuthentication, false
	case status == http.StatusTooManyRequests:
		return CodeRateLimited, true
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return CodeTimeout, true
	case status >= 500:
		return CodeUnavailable, true
	case status >= 400:
		return CodeBadRequest, false
	}
	return CodeUnknown, false
}
