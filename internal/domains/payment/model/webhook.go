package model

// =====================================================
// WEBHOOK EVENT
// =====================================================
// WebhookEvent is the provider-agnostic view of a verified webhook
// delivery. Adapters build one from their native payload; the
// reconciliation service only ever sees this shape.
type WebhookEvent struct {
	Provider     string
	PaymentID    string
	NativeEvent  string
	NativeStatus string
	TxHash       *string
	PayerAddress *string

	// Body is the decoded delivery, persisted verbatim in the audit log.
	Body map[string]interface{}
}
