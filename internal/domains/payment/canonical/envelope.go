package canonical

import (
	"errors"
	"time"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// ERROR ENVELOPE
// =====================================================
// Every externally visible failure, provider- or router-level, uses
// this single shape so callers need exactly one parser.

type StandardError struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Details ErrorDetails `json:"details"`
}

type ErrorDetails struct {
	Provider     string                 `json:"provider"`
	Timestamp    time.Time              `json:"timestamp"`
	ErrorType    string                 `json:"errorType"`
	StatusCode   int                    `json:"statusCode,omitempty"`
	ResponseData map[string]interface{} `json:"responseData,omitempty"`
}

// ErrorEnvelope classifies err and wraps it in the standard shape.
func ErrorEnvelope(err error, providerName string) StandardError {
	env := StandardError{
		Error:   "payment_error",
		Message: err.Error(),
		Details: ErrorDetails{
			Provider:  providerName,
			Timestamp: time.Now().UTC(),
			ErrorType: "internal",
		},
	}

	var validationErr *model.ValidationError
	var providerErr *model.ProviderError

	switch {
	case errors.As(err, &validationErr):
		env.Error = "validation_error"
		env.Details.ErrorType = "validation"
		env.Details.ResponseData = map[string]interface{}{"errors": validationErr.Errors}
	case errors.As(err, &providerErr):
		env.Error = "provider_error"
		env.Details.ErrorType = "provider"
		env.Details.Provider = providerErr.Provider
		env.Details.StatusCode = providerErr.StatusCode
		env.Details.ResponseData = providerErr.Raw
	case errors.Is(err, model.ErrPaymentNotFound):
		env.Error = "not_found"
		env.Details.ErrorType = "not_found"
	case errors.Is(err, model.ErrNoProviderForNetwork):
		env.Error = "unsupported_network"
		env.Details.ErrorType = "unsupported_network"
	case errors.Is(err, model.ErrInvalidWebhookAuth):
		env.Error = "authentication_error"
		env.Details.ErrorType = "authentication"
	}

	return env
}
