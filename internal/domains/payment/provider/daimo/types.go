package daimo

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// NATIVE PAYLOAD TYPES
// =====================================================
// Typed decoder for Daimo's payment shape. Scalars Daimo is known to
// waffle on (chainId as string or number, createdAt as unix seconds
// in either form) decode through flex types that fail closed to zero
// values instead of erroring.

type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt64(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*f = 0
		return nil
	}
	v, err := n.Int64()
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt64(v)
	return nil
}

type paymentPayload struct {
	ID          string                 `json:"id"`
	Status      string                 `json:"status"`
	CreatedAt   flexInt64              `json:"createdAt"`
	URL         string                 `json:"url"`
	ExternalID  string                 `json:"externalId"`
	Display     displayPayload         `json:"display"`
	Source      *sourcePayload         `json:"source"`
	Destination destinationPayload     `json:"destination"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type displayPayload struct {
	Intent       string `json:"intent"`
	PaymentValue string `json:"paymentValue"`
	Currency     string `json:"currency"`
}

type sourcePayload struct {
	PayerAddress string    `json:"payerAddress"`
	TxHash       string    `json:"txHash"`
	ChainID      flexInt64 `json:"chainId"`
	AmountUnits  string    `json:"amountUnits"`
	TokenSymbol  string    `json:"tokenSymbol"`
}

type destinationPayload struct {
	DestinationAddress string    `json:"destinationAddress"`
	TxHash             string    `json:"txHash"`
	ChainID            flexInt64 `json:"chainId"`
	AmountUnits        string    `json:"amountUnits"`
	TokenSymbol        string    `json:"tokenSymbol"`
	TokenAddress       string    `json:"tokenAddress"`
}

// toProviderPayment converts the decoded native shape plus the
// verbatim raw map into the adapter-agnostic form.
func (p *paymentPayload) toProviderPayment(raw map[string]interface{}) *model.ProviderPayment {
	out := &model.ProviderPayment{
		Provider:   model.ProviderDaimo,
		ID:         p.ID,
		Status:     p.Status,
		URL:        p.URL,
		ExternalID: p.ExternalID,
		Display: model.Display{
			Intent:      p.Display.Intent,
			AmountUnits: p.Display.PaymentValue,
			Currency:    p.Display.Currency,
		},
		Destination: model.Destination{
			ChainID:            int64(p.Destination.ChainID),
			DestinationAddress: p.Destination.DestinationAddress,
			TokenSymbol:        p.Destination.TokenSymbol,
			TokenAddress:       p.Destination.TokenAddress,
			AmountUnits:        p.Destination.AmountUnits,
		},
		Metadata: p.Metadata,
		Raw:      raw,
	}

	if p.CreatedAt > 0 {
		out.CreatedAt = time.Unix(int64(p.CreatedAt), 0).UTC()
	}
	if p.Destination.TxHash != "" {
		txHash := p.Destination.TxHash
		out.Destination.TxHash = &txHash
	}
	if p.Source != nil {
		out.Source = &model.Source{
			PayerAddress: p.Source.PayerAddress,
			TxHash:       p.Source.TxHash,
			ChainID:      int64(p.Source.ChainID),
			AmountUnits:  p.Source.AmountUnits,
			TokenSymbol:  p.Source.TokenSymbol,
		}
	}
	return out
}

// =====================================================
// WEBHOOK PAYLOAD
// =====================================================
// Daimo webhook deliveries carry the event type plus the full payment.

type WebhookPayload struct {
	Type      string          `json:"type"`
	PaymentID string          `json:"paymentId"`
	ChainID   flexInt64       `json:"chainId"`
	TxHash    string          `json:"txHash"`
	Payment   *paymentPayload `json:"payment"`
}

// ProviderPayment returns the embedded payment in adapter-agnostic
// form, or nil when the delivery carried none.
func (w *WebhookPayload) ProviderPayment() *model.ProviderPayment {
	if w.Payment == nil {
		return nil
	}
	return w.Payment.toProviderPayment(nil)
}

// Event converts the delivery into the provider-agnostic shape the
// reconciliation service consumes.
func (w *WebhookPayload) Event(body map[string]interface{}) model.WebhookEvent {
	event := model.WebhookEvent{
		Provider:     model.ProviderDaimo,
		PaymentID:    w.PaymentID,
		NativeEvent:  w.Type,
		NativeStatus: w.NativeStatus(),
		Body:         body,
	}
	if w.TxHash != "" {
		tx := w.TxHash
		event.TxHash = &tx
	}

	// Settlement facts ride on the embedded payment; the top-level
	// txHash wins when both are present.
	if p := w.ProviderPayment(); p != nil && p.Source != nil {
		if event.TxHash == nil && p.Source.TxHash != "" {
			tx := p.Source.TxHash
			event.TxHash = &tx
		}
		if p.Source.PayerAddress != "" {
			payer := p.Source.PayerAddress
			event.PayerAddress = &payer
		}
	}
	return event
}

// NativeStatus maps the webhook event type onto the provider-native
// payment status vocabulary.
func (w *WebhookPayload) NativeStatus() string {
	switch w.Type {
	case "payment_started":
		return NativeStatusStarted
	case "payment_completed":
		return NativeStatusCompleted
	case "payment_bounced":
		return NativeStatusBounced
	default:
		return w.Type
	}
}
