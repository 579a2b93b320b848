package model

import (
	"time"
)

// =====================================================
// CANONICAL REQUEST
// =====================================================
// CanonicalPaymentRequest is the provider-agnostic request shape.
// Raw inbound bodies pass through canonical.Sanitize before they
// become one of these; nothing in here is trusted until then.

type Display struct {
	Intent      string `json:"intent"`
	AmountUnits string `json:"amountUnits"`
	Currency    string `json:"currency"`
}

// Destination identifies where funds land. The token-identification
// variant is chosen by chain classification: contract-first chains
// require TokenAddress, symbol-first chains require TokenSymbol.
// ValidateStructure enforces the variant; the struct carries both.
type Destination struct {
	ChainID            int64   `json:"chainId"`
	DestinationAddress string  `json:"destinationAddress"`
	TokenSymbol        string  `json:"tokenSymbol,omitempty"`
	TokenAddress       string  `json:"tokenAddress,omitempty"`
	AmountUnits        string  `json:"amountUnits"`
	TxHash             *string `json:"txHash,omitempty"`
}

type CanonicalPaymentRequest struct {
	Display     Display                `json:"display"`
	Destination Destination            `json:"destination"`
	ExternalID  string                 `json:"externalId,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// =====================================================
// CANONICAL RESPONSE
// =====================================================

// Source carries payer-side details. Nil until the provider reports
// a payer.
type Source struct {
	PayerAddress string `json:"payerAddress,omitempty"`
	TxHash       string `json:"txHash,omitempty"`
	ChainID      int64  `json:"chainId,omitempty"`
	AmountUnits  string `json:"amountUnits,omitempty"`
	TokenSymbol  string `json:"tokenSymbol,omitempty"`
}

type CanonicalPaymentResponse struct {
	ID          string                 `json:"id"`
	Status      string                 `json:"status"`
	CreatedAt   time.Time              `json:"createdAt"`
	Display     Display                `json:"display"`
	Source      *Source                `json:"source,omitempty"`
	Destination Destination            `json:"destination"`
	ExternalID  string                 `json:"externalId,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	URL         string                 `json:"url,omitempty"`
}

// =====================================================
// PROVIDER PAYMENT (decoded native payload)
// =====================================================
// ProviderPayment is what an adapter hands back after decoding its
// native response with a typed decoder that fails closed: absent or
// malformed fields collapse to zero values, never to errors. Status
// is still the provider-native string; canonical.Normalize maps it.
type ProviderPayment struct {
	Provider    string
	ID          string
	Status      string
	CreatedAt   time.Time
	URL         string
	ExternalID  string
	Display     Display
	Source      *Source
	Destination Destination
	Metadata    map[string]interface{}

	// Raw is the verbatim decoded payload, persisted for audit.
	Raw map[string]interface{}
}
