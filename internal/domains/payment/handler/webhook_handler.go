package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"payrouter-backend/internal/domains/payment/model"
	"payrouter-backend/internal/domains/payment/provider/daimo"
	"payrouter-backend/internal/domains/payment/provider/lumen"
	"payrouter-backend/internal/domains/payment/service"
)

// =====================================================
// WEBHOOK HANDLER
// =====================================================
// Auth and decoding are provider-specific and happen here, at the
// edge; the webhook service only ever sees verified events.
//
// Response contract:
// - bad auth or undecodable body: 400, provider should not retry
// - unknown payment: 200 with success=false, stops redelivery
// - applied or absorbed delivery: 200 with success=true
type WebhookHandler struct {
	webhookService service.WebhookService
	daimoClient    *daimo.Client
	lumenClient    *lumen.Client
}

func NewWebhookHandler(
	webhookService service.WebhookService,
	daimoClient *daimo.Client,
	lumenClient *lumen.Client,
) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		daimoClient:    daimoClient,
		lumenClient:    lumenClient,
	}
}

// DaimoWebhook receives Daimo deliveries
// POST /api/v1/webhooks/daimo
// Authenticated by the Authorization header carrying the shared secret.
func (h *WebhookHandler) DaimoWebhook(c *gin.Context) {
	if h.daimoClient == nil {
		c.JSON(http.StatusBadRequest, model.WebhookAck{Success: false, Error: "provider disabled"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.WebhookAck{Success: false, Error: "unreadable body"})
		return
	}

	if !h.daimoClient.VerifyWebhookAuth(c.GetHeader("Authorization")) {
		log.Warn().Str("provider", model.ProviderDaimo).Msg("Webhook auth failed")
		h.webhookService.RecordRejected(c.Request.Context(), model.ProviderDaimo, rawBody(body), "invalid authorization")
		c.JSON(http.StatusBadRequest, model.WebhookAck{Success: false, Error: "invalid authorization"})
		return
	}

	payload, err := daimo.DecodeWebhook(body)
	if err != nil {
		h.webhookService.RecordRejected(c.Request.Context(), model.ProviderDaimo, rawBody(body), err.Error())
		c.JSON(http.StatusBadRequest, model.WebhookAck{Success: false, Error: "malformed payload"})
		return
	}

	ack, err := h.webhookService.Process(c.Request.Context(), payload.Event(rawBody(body)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.WebhookAck{Success: false, Error: "processing failed"})
		return
	}

	c.JSON(http.StatusOK, ack)
}

// LumenWebhook receives Lumen deliveries
// POST /api/v1/webhooks/lumen?token=...
// Authenticated by the shared token in the query string.
func (h *WebhookHandler) LumenWebhook(c *gin.Context) {
	if h.lumenClient == nil {
		c.JSON(http.StatusBadRequest, model.WebhookAck{Success: false, Error: "provider disabled"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.WebhookAck{Success: false, Error: "unreadable body"})
		return
	}

	if !h.lumenClient.VerifyWebhookToken(c.Query("token")) {
		log.Warn().Str("provider", model.ProviderLumen).Msg("Webhook auth failed")
		h.webhookService.RecordRejected(c.Request.Context(), model.ProviderLumen, rawBody(body), "invalid token")
		c.JSON(http.StatusBadRequest, model.WebhookAck{Success: false, Error: "invalid token"})
		return
	}

	payload, err := lumen.DecodeWebhook(body)
	if err != nil {
		h.webhookService.RecordRejected(c.Request.Context(), model.ProviderLumen, rawBody(body), err.Error())
		c.JSON(http.StatusBadRequest, model.WebhookAck{Success: false, Error: "malformed payload"})
		return
	}

	ack, err := h.webhookService.Process(c.Request.Context(), payload.Event(rawBody(body)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.WebhookAck{Success: false, Error: "processing failed"})
		return
	}

	c.JSON(http.StatusOK, ack)
}

// rawBody best-effort decodes the delivery for the audit log. An
// unparseable body is logged as its raw string.
func rawBody(body []byte) map[string]interface{} {
	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return map[string]interface{}{"raw": string(body)}
	}
	return decoded
}
