package provider

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// PROVIDER CONTRACT
// =====================================================

// PaymentProvider is the fixed capability contract every upstream
// adapter implements. Adapters translate canonical requests into
// their native call and decode native responses into ProviderPayment.
type PaymentProvider interface {
	// Name returns the registry key for this provider.
	Name() string

	// SupportedChains returns the network ids this provider serves.
	SupportedChains() []int64

	// Priority orders providers for fallback selection (lower = preferred).
	Priority() int

	// IDPrefix returns the provider-specific payment-id prefix used to
	// infer the adapter from a bare id. Empty means no distinctive
	// prefix (resolution falls through to the default provider).
	IDPrefix() string

	// CreatePayment creates a payment upstream.
	CreatePayment(ctx context.Context, req model.CanonicalPaymentRequest) (*model.ProviderPayment, error)

	// GetPaymentByID fetches a payment by its provider-native id.
	GetPaymentByID(ctx context.Context, id string) (*model.ProviderPayment, error)

	// GetPaymentByExternalID fetches a payment by caller-assigned
	// external id. Returns model.ErrNotSupported when the provider has
	// no such lookup.
	GetPaymentByExternalID(ctx context.Context, externalID string) (*model.ProviderPayment, error)

	// IsHealthy probes the upstream service. Never returns an error;
	// internal failures collapse to false.
	IsHealthy(ctx context.Context) bool

	// Validate runs the base rule set plus provider-specific rules
	// against a sanitized request. Empty slice means valid.
	Validate(req model.CanonicalPaymentRequest) []string
}

// =====================================================
// VALIDATION RULES
// =====================================================
// Rules compose by concatenation: each adapter's Validate runs
// BaseRules followed by its own rule list. A Rule returns a
// human-readable problem or "" when satisfied.

type Rule func(req model.CanonicalPaymentRequest) string

// BaseRules are the provider-independent checks shared by every
// adapter: display fields present, destination complete, amount
// parseable and non-negative, and the network actually served.
func BaseRules(supportedChains []int64) []Rule {
	return []Rule{
		func(req model.CanonicalPaymentRequest) string {
			err := validation.ValidateStruct(&req.Display,
				validation.Field(&req.Display.Intent, validation.Required),
				validation.Field(&req.Display.Currency, validation.Required),
			)
			if err != nil {
				return fmt.Sprintf("display: %v", err)
			}
			return ""
		},
		func(req model.CanonicalPaymentRequest) string {
			err := validation.ValidateStruct(&req.Destination,
				validation.Field(&req.Destination.DestinationAddress, validation.Required),
				validation.Field(&req.Destination.AmountUnits, validation.Required),
			)
			if err != nil {
				return fmt.Sprintf("destination: %v", err)
			}
			return ""
		},
		func(req model.CanonicalPaymentRequest) string {
			amount, err := decimal.NewFromString(req.Destination.AmountUnits)
			if err != nil {
				return fmt.Sprintf("Invalid amount %q", req.Destination.AmountUnits)
			}
			if amount.IsNegative() {
				return "Amount must not be negative"
			}
			return ""
		},
		func(req model.CanonicalPaymentRequest) string {
			for _, id := range supportedChains {
				if id == req.Destination.ChainID {
					return ""
				}
			}
			return fmt.Sprintf("Chain %d is not supported by this provider", req.Destination.ChainID)
		},
	}
}

// RunRules evaluates the concatenated rule lists and collects every
// failure rather than stopping at the first.
func RunRules(req model.CanonicalPaymentRequest, ruleSets ...[]Rule) []string {
	var errs []string
	for _, rules := range ruleSets {
		for _, rule := range rules {
			if msg := rule(req); msg != "" {
				errs = append(errs, msg)
			}
		}
	}
	return errs
}
