package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// PAYMENT RECORD REPOSITORY INTERFACE
// =====================================================
type PaymentRepoInterface interface {
	// Create inserts a new payment record
	Create(ctx context.Context, record *model.PaymentRecord) error

	// GetByPaymentID gets a record by provider-assigned payment id
	GetByPaymentID(ctx context.Context, paymentID string) (*model.PaymentRecord, error)

	// GetByExternalID gets the latest record for a caller external id
	GetByExternalID(ctx context.Context, externalID string) (*model.PaymentRecord, error)

	// UpdateFromProvider refreshes status and provider payload after a
	// re-query or webhook. Nil settlement fields leave columns untouched;
	// status_updated_at only advances when the status actually changes.
	UpdateFromProvider(ctx context.Context, id uuid.UUID, status string, providerResponse map[string]interface{}, txHash, payerAddress *string) error

	// SetWithdrawID records the withdraw triggered on terminal transition
	SetWithdrawID(ctx context.Context, id uuid.UUID, withdrawID string) error

	// ListStale lists started payments whose status has not moved within
	// the window (for the background sweep)
	ListStale(ctx context.Context, window time.Duration, limit int) ([]*model.PaymentRecord, error)
}

// =====================================================
// WEBHOOK LOG REPOSITORY INTERFACE
// =====================================================
type WebhookRepoInterface interface {
	// Create creates webhook log
	Create(ctx context.Context, log *model.PaymentWebhookLog) error

	// MarkAsProcessed marks webhook as processed
	MarkAsProcessed(ctx context.Context, id uuid.UUID) error

	// MarkAsInvalid marks webhook as invalid (auth or shape failed)
	MarkAsInvalid(ctx context.Context, id uuid.UUID, reason string) error

	// MarkProcessingError records a processing failure
	MarkProcessingError(ctx context.Context, id uuid.UUID, errorMsg string) error

	// ListByPaymentRecordID lists webhook logs for a payment record
	ListByPaymentRecordID(ctx context.Context, recordID uuid.UUID) ([]*model.PaymentWebhookLog, error)
}
