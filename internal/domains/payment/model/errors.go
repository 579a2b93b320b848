package model

import (
	"errors"
	"fmt"
	"strings"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrNoProviderForNetwork = errors.New("no provider available for network")
	ErrNotSupported         = errors.New("operation not supported by provider")
	ErrInvalidWebhookAuth   = errors.New("webhook authentication failed")
	ErrProviderUnavailable  = errors.New("payment provider unavailable")
)

// =====================================================
// VALIDATION ERROR
// =====================================================
// ValidationError aggregates structural validation failures so the
// caller gets every problem in one response instead of one at a time.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func NewValidationError(errs []string) *ValidationError {
	return &ValidationError{Errors: errs}
}

// =====================================================
// PROVIDER ERROR
// =====================================================
// ProviderError wraps an upstream call failure with enough context to
// surface or fall back at the call site. Never silently swallowed.
type ProviderError struct {
	Provider   string
	StatusCode int // upstream HTTP status, 0 when unknown
	Message    string
	Raw        map[string]interface{}
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s: [%d] %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Message: message, Err: err}
}

func NewProviderHTTPError(provider string, statusCode int, message string, raw map[string]interface{}) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Raw:        raw,
	}
}
