package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRecordIsStale(t *testing.T) {
	window := 15 * time.Minute

	tests := []struct {
		name   string
		status string
		age    time.Duration
		want   bool
	}{
		{"started within window", StatusStarted, 14 * time.Minute, false},
		{"started past window", StatusStarted, 16 * time.Minute, true},
		{"unpaid never stale", StatusUnpaid, 2 * time.Hour, false},
		{"completed never stale", StatusCompleted, 2 * time.Hour, false},
		{"bounced never stale", StatusBounced, 2 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := &PaymentRecord{
				Status:          tt.status,
				StatusUpdatedAt: time.Now().Add(-tt.age),
			}
			assert.Equal(t, tt.want, record.IsStale(window))
		})
	}
}

func TestPaymentRecordToCanonicalResponse(t *testing.T) {
	externalID := "order-42"
	txHash := "0xabc123"
	payer := "0xPayerAddress"
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	record := &PaymentRecord{
		ID:        uuid.New(),
		PaymentID: "dp_test1",
		URL:       "https://pay.daimo.com/checkout/dp_test1",
		Amount:    decimal.RequireFromString("25.50"),
		Currency:  "USD",
		Status:    StatusCompleted,
		// destination as echoed to the creator, source of truth for display
		OriginalRequest: &CanonicalPaymentRequest{
			Display: Display{Intent: "Order #42", AmountUnits: "25.50", Currency: "USD"},
			Destination: Destination{
				ChainID:            10,
				DestinationAddress: "0xDest",
				TokenAddress:       "0xToken",
				AmountUnits:        "25.50",
			},
		},
		ExternalID:   &externalID,
		TxHash:       &txHash,
		PayerAddress: &payer,
		ProviderName: ProviderDaimo,
		ChainID:      10,
		Metadata:     map[string]interface{}{"campaign": "spring"},
		CreatedAt:    created,
	}

	resp := record.ToCanonicalResponse()

	assert.Equal(t, "dp_test1", resp.ID)
	assert.Equal(t, StatusCompleted, resp.Status)
	assert.Equal(t, created, resp.CreatedAt)
	assert.Equal(t, "order-42", resp.ExternalID)
	assert.Equal(t, "Order #42", resp.Display.Intent)
	assert.Equal(t, "0xDest", resp.Destination.DestinationAddress)
	assert.Equal(t, int64(10), resp.Destination.ChainID)
	require.NotNil(t, resp.Destination.TxHash)
	assert.Equal(t, "0xabc123", *resp.Destination.TxHash)
	require.NotNil(t, resp.Source)
	assert.Equal(t, "0xPayerAddress", resp.Source.PayerAddress)
	assert.Equal(t, "0xabc123", resp.Source.TxHash)
	assert.Equal(t, "spring", resp.Metadata["campaign"])
}

func TestPaymentRecordToCanonicalResponseNoSettlement(t *testing.T) {
	record := &PaymentRecord{
		PaymentID: "inv_test1",
		Status:    StatusUnpaid,
		ChainID:   10001,
	}

	resp := record.ToCanonicalResponse()

	assert.Nil(t, resp.Source)
	assert.Nil(t, resp.Destination.TxHash)
	assert.Equal(t, int64(10001), resp.Destination.ChainID)
	assert.Empty(t, resp.ExternalID)
}

func TestWebhookLogMarkAsInvalid(t *testing.T) {
	entry := &PaymentWebhookLog{ID: uuid.New(), Provider: ProviderLumen}
	entry.MarkAsInvalid("bad token")

	require.NotNil(t, entry.IsValid)
	assert.False(t, *entry.IsValid)
	require.NotNil(t, entry.ProcessingError)
	assert.Equal(t, "bad token", *entry.ProcessingError)
}
