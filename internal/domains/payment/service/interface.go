package service

import (
	"context"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// PAYMENT SERVICE INTERFACE
// =====================================================
type PaymentService interface {
	// CreatePayment routes a raw payment request to a provider and
	// caches the created payment
	CreatePayment(ctx context.Context, raw map[string]interface{}) (*model.CanonicalPaymentResponse, error)

	// GetPaymentByID serves a payment cache-first by provider-assigned id
	GetPaymentByID(ctx context.Context, id string, chainHint *int64) (*model.CanonicalPaymentResponse, error)

	// GetPaymentByExternalID serves a payment cache-first by caller external id
	GetPaymentByExternalID(ctx context.Context, externalID string) (*model.CanonicalPaymentResponse, error)

	// RefreshStale re-queries one stale record from its provider (used
	// by the background sweep)
	RefreshStale(ctx context.Context, record *model.PaymentRecord) error
}

// =====================================================
// WEBHOOK SERVICE INTERFACE
// =====================================================
type WebhookService interface {
	// Process applies a verified, decoded webhook delivery
	Process(ctx context.Context, event model.WebhookEvent) (*model.WebhookAck, error)

	// RecordRejected logs a delivery that failed auth or decoding
	RecordRejected(ctx context.Context, providerName string, body map[string]interface{}, reason string)
}
