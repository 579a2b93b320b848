package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrouter-backend/internal/domains/payment/model"
	"payrouter-backend/internal/domains/payment/provider/daimo"
	"payrouter-backend/internal/domains/payment/provider/lumen"
)

type stubWebhookService struct {
	ack *model.WebhookAck
	err error

	processed []model.WebhookEvent
	rejected  []string // rejection reasons
}

func (s *stubWebhookService) Process(ctx context.Context, event model.WebhookEvent) (*model.WebhookAck, error) {
	s.processed = append(s.processed, event)
	return s.ack, s.err
}

func (s *stubWebhookService) RecordRejected(ctx context.Context, providerName string, body map[string]interface{}, reason string) {
	s.rejected = append(s.rejected, reason)
}

func webhookTestRouter(t *testing.T, stub *stubWebhookService) *gin.Engine {
	t.Helper()

	daimoClient, err := daimo.NewClient(daimo.NewConfig(
		"https://pay.daimo.com/api", "key", time.Second, 3, 1, "whsec_test"))
	require.NoError(t, err)
	lumenClient, err := lumen.NewClient(lumen.NewConfig(
		"https://api.lumenpay.io", "key", time.Second, 3, 2, "tok_test"))
	require.NoError(t, err)

	h := NewWebhookHandler(stub, daimoClient, lumenClient)
	r := gin.New()
	r.POST("/webhooks/daimo", h.DaimoWebhook)
	r.POST("/webhooks/lumen", h.LumenWebhook)
	return r
}

func TestDaimoWebhookApplied(t *testing.T) {
	stub := &stubWebhookService{ack: &model.WebhookAck{Success: true}}
	r := webhookTestRouter(t, stub)

	body := bytes.NewBufferString(`{"type": "payment_completed", "paymentId": "dp_9", "txHash": "0xsettled"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/daimo", body)
	req.Header.Set("Authorization", "Basic whsec_test")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stub.processed, 1)
	event := stub.processed[0]
	assert.Equal(t, model.ProviderDaimo, event.Provider)
	assert.Equal(t, "dp_9", event.PaymentID)
	assert.Equal(t, "payment_completed", event.NativeStatus)
	require.NotNil(t, event.TxHash)
	assert.Equal(t, "0xsettled", *event.TxHash)
}

func TestDaimoWebhookBadAuth(t *testing.T) {
	stub := &stubWebhookService{ack: &model.WebhookAck{Success: true}}
	r := webhookTestRouter(t, stub)

	body := bytes.NewBufferString(`{"type": "payment_completed", "paymentId": "dp_9"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/daimo", body)
	req.Header.Set("Authorization", "Basic wrong")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, stub.processed)
	// the rejected delivery still lands in the audit log
	assert.Equal(t, []string{"invalid authorization"}, stub.rejected)
}

func TestDaimoWebhookMalformedBody(t *testing.T) {
	stub := &stubWebhookService{}
	r := webhookTestRouter(t, stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/daimo", bytes.NewBufferString("not json"))
	req.Header.Set("Authorization", "Basic whsec_test")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, stub.processed)
	assert.Len(t, stub.rejected, 1)
}

func TestDaimoWebhookUnknownPaymentStillAcknowledged(t *testing.T) {
	stub := &stubWebhookService{ack: &model.WebhookAck{Success: false, Error: "payment not found"}}
	r := webhookTestRouter(t, stub)

	body := bytes.NewBufferString(`{"type": "payment_started", "paymentId": "dp_unknown"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/daimo", body)
	req.Header.Set("Authorization", "whsec_test")
	r.ServeHTTP(w, req)

	// 200 so the provider stops redelivering
	assert.Equal(t, http.StatusOK, w.Code)

	var ack model.WebhookAck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.False(t, ack.Success)
	assert.Equal(t, "payment not found", ack.Error)
}

func TestDaimoWebhookProcessingFailure(t *testing.T) {
	stub := &stubWebhookService{err: assert.AnError}
	r := webhookTestRouter(t, stub)

	body := bytes.NewBufferString(`{"type": "payment_started", "paymentId": "dp_1"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/daimo", body)
	req.Header.Set("Authorization", "whsec_test")
	r.ServeHTTP(w, req)

	// infrastructure failure: non-2xx so the provider retries later
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLumenWebhookApplied(t *testing.T) {
	stub := &stubWebhookService{ack: &model.WebhookAck{Success: true}}
	r := webhookTestRouter(t, stub)

	body := bytes.NewBufferString(`{"invoice_id": "inv_3", "status": "paid", "payer_account": "GPAYER"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/lumen?token=tok_test", body)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stub.processed, 1)
	event := stub.processed[0]
	assert.Equal(t, model.ProviderLumen, event.Provider)
	assert.Equal(t, "inv_3", event.PaymentID)
	assert.Equal(t, "paid", event.NativeStatus)
	require.NotNil(t, event.PayerAddress)
	assert.Equal(t, "GPAYER", *event.PayerAddress)
}

func TestLumenWebhookBadToken(t *testing.T) {
	stub := &stubWebhookService{}
	r := webhookTestRouter(t, stub)

	body := bytes.NewBufferString(`{"invoice_id": "inv_3", "status": "paid"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/lumen?token=wrong", body)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, stub.processed)
	assert.Equal(t, []string{"invalid token"}, stub.rejected)
}

func TestLumenWebhookMissingToken(t *testing.T) {
	stub := &stubWebhookService{}
	r := webhookTestRouter(t, stub)

	body := bytes.NewBufferString(`{"invoice_id": "inv_3", "status": "paid"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/lumen", body)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookDisabledProvider(t *testing.T) {
	stub := &stubWebhookService{}
	h := NewWebhookHandler(stub, nil, nil)
	r := gin.New()
	r.POST("/webhooks/daimo", h.DaimoWebhook)
	r.POST("/webhooks/lumen", h.LumenWebhook)

	for _, path := range []string{"/webhooks/daimo", "/webhooks/lumen"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{}`))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	assert.Empty(t, stub.processed)
}
