package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// PAYMENT RECORD ENTITY
// =====================================================
// PaymentRecord is the persisted cache entity: the canonical response
// plus provenance and audit columns. Created exactly once at payment
// creation; mutated only by the stale-refresh path and by webhook
// reconciliation, both of which move status forward only.
type PaymentRecord struct {
	ID       uuid.UUID       `json:"id" db:"id"`
	Amount   decimal.Decimal `json:"amount" db:"amount"`
	Currency string          `json:"currency" db:"currency"`
	Status   string          `json:"status" db:"status"`

	// PaymentID is the provider-assigned id ("dp_..." / "inv_...") and
	// the public identifier of the payment. Unique per record.
	PaymentID string `json:"payment_id" db:"payment_id"`
	URL       string `json:"url" db:"url"`

	ExternalID *string `json:"external_id,omitempty" db:"external_id"`
	WithdrawID *string `json:"withdraw_id,omitempty" db:"withdraw_id"`

	// Settlement facts reported by webhooks
	TxHash       *string `json:"tx_hash,omitempty" db:"tx_hash"`
	PayerAddress *string `json:"payer_address,omitempty" db:"payer_address"`

	// Provenance
	ProviderName string `json:"provider_name" db:"provider_name"`
	ChainID      int64  `json:"chain_id" db:"chain_id"`

	// Verbatim payloads for replay/display and audit
	ProviderResponse map[string]interface{} `json:"provider_response,omitempty" db:"provider_response"`
	Metadata         map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	OriginalRequest  *CanonicalPaymentRequest `json:"original_request,omitempty" db:"original_request"`

	// Timestamps. StatusUpdatedAt only advances on a status change;
	// UpdatedAt advances on any write.
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
	StatusUpdatedAt time.Time `json:"status_updated_at" db:"status_updated_at"`
}

// IsStale reports whether the record should be re-queried from its
// provider. Only started payments go stale: terminal and
// pre-submission states are never re-polled.
func (p *PaymentRecord) IsStale(window time.Duration) bool {
	if p.Status != StatusStarted {
		return false
	}
	return time.Since(p.StatusUpdatedAt) > window
}

// IsTerminal reports whether the record reached completed or bounced.
func (p *PaymentRecord) IsTerminal() bool {
	return IsTerminalStatus(p.Status)
}

// ToCanonicalResponse rebuilds the API response from the cached record.
// Status comes from the record column (webhooks advance it); display
// and destination come from the original request, which already holds
// the sanitized values the API promised the caller.
func (p *PaymentRecord) ToCanonicalResponse() CanonicalPaymentResponse {
	resp := CanonicalPaymentResponse{
		ID:        p.PaymentID,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		Metadata:  p.Metadata,
		URL:       p.URL,
	}
	if p.ExternalID != nil {
		resp.ExternalID = *p.ExternalID
	}
	if p.OriginalRequest != nil {
		resp.Display = p.OriginalRequest.Display
		resp.Destination = p.OriginalRequest.Destination
	}
	resp.Destination.ChainID = p.ChainID
	resp.Destination.TxHash = p.TxHash
	if p.PayerAddress != nil {
		src := &Source{PayerAddress: *p.PayerAddress, ChainID: p.ChainID}
		if p.TxHash != nil {
			src.TxHash = *p.TxHash
		}
		resp.Source = src
	}
	return resp
}

// =====================================================
// WEBHOOK LOG ENTITY
// =====================================================
// PaymentWebhookLog records every webhook delivery before processing.
// Audit trail and debugging aid; idempotency itself is enforced by the
// status state machine, not by this table.
type PaymentWebhookLog struct {
	ID              uuid.UUID              `json:"id" db:"id"`
	PaymentRecordID *uuid.UUID             `json:"payment_record_id,omitempty" db:"payment_record_id"`
	Provider        string                 `json:"provider" db:"provider"`
	NativeEvent     *string                `json:"native_event,omitempty" db:"native_event"`
	Body            map[string]interface{} `json:"body" db:"body"`
	IsValid         *bool                  `json:"is_valid,omitempty" db:"is_valid"`
	IsProcessed     bool                   `json:"is_processed" db:"is_processed"`
	ProcessingError *string                `json:"processing_error,omitempty" db:"processing_error"`
	ReceivedAt      time.Time              `json:"received_at" db:"received_at"`
}

// MarkAsInvalid marks the delivery as failing structural or auth checks.
func (w *PaymentWebhookLog) MarkAsInvalid(reason string) {
	isValid := false
	w.IsValid = &isValid
	w.ProcessingError = &reason
}
