package lumen

import (
	"time"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// NATIVE PAYLOAD TYPES
// =====================================================
// Lumen's invoice API is flat snake_case JSON. The decoder fails
// closed: absent fields zero out, timestamps that do not parse as
// RFC3339 are dropped.

type invoicePayload struct {
	InvoiceID   string                 `json:"invoice_id"`
	Status      string                 `json:"status"`
	CreatedAt   string                 `json:"created_at"`
	PayURL      string                 `json:"pay_url"`
	ExternalRef string                 `json:"external_ref"`
	Memo        string                 `json:"memo"`
	Amount      string                 `json:"amount"`
	Currency    string                 `json:"currency"`
	Network     int64                  `json:"network"`
	Account     string                 `json:"account"`
	AssetCode   string                 `json:"asset_code"`
	AssetIssuer string                 `json:"asset_issuer"`
	PayerAcct   string                 `json:"payer_account"`
	TxHash      string                 `json:"tx_hash"`
	Extra       map[string]interface{} `json:"extra"`
}

func (p *invoicePayload) toProviderPayment(raw map[string]interface{}) *model.ProviderPayment {
	out := &model.ProviderPayment{
		Provider:   model.ProviderLumen,
		ID:         p.InvoiceID,
		Status:     p.Status,
		URL:        p.PayURL,
		ExternalID: p.ExternalRef,
		Display: model.Display{
			Intent:      p.Memo,
			AmountUnits: p.Amount,
			Currency:    p.Currency,
		},
		Destination: model.Destination{
			ChainID:            p.Network,
			DestinationAddress: p.Account,
			TokenSymbol:        p.AssetCode,
			TokenAddress:       p.AssetIssuer,
			AmountUnits:        p.Amount,
		},
		Metadata: p.Extra,
		Raw:      raw,
	}

	if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
		out.CreatedAt = t.UTC()
	}
	if p.TxHash != "" {
		txHash := p.TxHash
		out.Destination.TxHash = &txHash
	}
	if p.PayerAcct != "" {
		out.Source = &model.Source{
			PayerAddress: p.PayerAcct,
			TxHash:       p.TxHash,
			ChainID:      p.Network,
			AmountUnits:  p.Amount,
			TokenSymbol:  p.AssetCode,
		}
	}
	return out
}

// =====================================================
// WEBHOOK PAYLOAD
// =====================================================
// Lumen webhook events carry no delivery id, only invoice id plus
// status. Duplicate and out-of-order deliveries are absorbed by the
// payment state machine downstream.

type WebhookPayload struct {
	InvoiceID   string `json:"invoice_id"`
	Status      string `json:"status"`
	PayerAcct   string `json:"payer_account"`
	TxHash      string `json:"tx_hash"`
	Amount      string `json:"amount"`
	AssetCode   string `json:"asset_code"`
	ExternalRef string `json:"external_ref"`
}

// Event converts the delivery into the provider-agnostic shape the
// reconciliation service consumes.
func (w *WebhookPayload) Event(body map[string]interface{}) model.WebhookEvent {
	event := model.WebhookEvent{
		Provider:     model.ProviderLumen,
		PaymentID:    w.InvoiceID,
		NativeEvent:  w.Status,
		NativeStatus: w.Status,
		Body:         body,
	}
	if w.TxHash != "" {
		tx := w.TxHash
		event.TxHash = &tx
	}
	if w.PayerAcct != "" {
		payer := w.PayerAcct
		event.PayerAddress = &payer
	}
	return event
}
