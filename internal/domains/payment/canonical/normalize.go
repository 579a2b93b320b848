package canonical

import (
	"time"

	"github.com/rs/zerolog/log"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// STATUS NORMALIZATION
// =====================================================
// Per-provider native status vocabularies mapped onto the canonical
// enum. Unknown values log a warning and default to unpaid; Normalize
// never fails.

var providerStatusMaps = map[string]map[string]string{
	model.ProviderDaimo: {
		"payment_unpaid":    model.StatusUnpaid,
		"payment_started":   model.StatusStarted,
		"payment_completed": model.StatusCompleted,
		"payment_bounced":   model.StatusBounced,
	},
	model.ProviderLumen: {
		"pending":    model.StatusUnpaid,
		"processing": model.StatusStarted,
		"paid":       model.StatusCompleted,
		"failed":     model.StatusBounced,
		"expired":    model.StatusBounced,
	},
}

// NormalizeStatus maps a provider-native status onto the canonical
// enum. Canonical values pass through so already-normalized payloads
// survive a second pass.
func NormalizeStatus(providerName, native string) string {
	if model.IsValidStatus(native) {
		return native
	}
	if statuses, ok := providerStatusMaps[providerName]; ok {
		if canonical, ok := statuses[native]; ok {
			return canonical
		}
	}
	log.Warn().
		Str("provider", providerName).
		Str("native_status", native).
		Msg("Unknown provider status, defaulting to unpaid")
	return model.StatusUnpaid
}

// =====================================================
// NORMALIZE
// =====================================================

// Normalize converts any adapter's decoded payment into the canonical
// response shape. Total function: missing fields map to zero values,
// malformed statuses default to unpaid, nothing here can fail.
func Normalize(payment *model.ProviderPayment, providerName string) model.CanonicalPaymentResponse {
	if payment == nil {
		return model.CanonicalPaymentResponse{Status: model.StatusUnpaid}
	}

	createdAt := payment.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	resp := model.CanonicalPaymentResponse{
		ID:        payment.ID,
		Status:    NormalizeStatus(providerName, payment.Status),
		CreatedAt: createdAt,
		Display: model.Display{
			Intent:      stringOr(payment.Display.Intent, model.DefaultIntent),
			AmountUnits: stringOr(payment.Display.AmountUnits, model.DefaultAmountUnits),
			Currency:    stringOr(payment.Display.Currency, model.DefaultCurrency),
		},
		Source:      payment.Source,
		Destination: payment.Destination,
		ExternalID:  payment.ExternalID,
		Metadata:    payment.Metadata,
		URL:         payment.URL,
	}

	return resp
}
