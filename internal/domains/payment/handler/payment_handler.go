package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"payrouter-backend/internal/domains/payment/canonical"
	"payrouter-backend/internal/domains/payment/model"
	"payrouter-backend/internal/domains/payment/service"
	"payrouter-backend/internal/shared/response"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates new payment handler
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// =====================================================
// PAYMENT ENDPOINTS
// =====================================================

// CreatePayment routes a payment to a provider
// POST /api/v1/payments
//
// The body is taken as an untrusted raw map; sanitization and
// validation happen inside the router, never in the handler.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.BadRequest(c, "Request body must be a JSON object")
		return
	}

	resp, err := h.paymentService.CreatePayment(c.Request.Context(), raw)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetPayment fetches a payment by provider-assigned id
// GET /api/v1/payments/:id?chainId=10
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "Payment id is required")
		return
	}

	var chainHint *int64
	if raw := c.Query("chainId"); raw != "" {
		chainID, err := canonical.ParseChainID(raw)
		if err != nil {
			response.BadRequest(c, "Invalid chainId")
			return
		}
		chainHint = &chainID
	}

	resp, err := h.paymentService.GetPaymentByID(c.Request.Context(), id, chainHint)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPaymentByExternalID fetches a payment by caller external id
// GET /api/v1/payments/external-id/:externalId
func (h *PaymentHandler) GetPaymentByExternalID(c *gin.Context) {
	externalID := c.Param("externalId")
	if externalID == "" {
		response.BadRequest(c, "External id is required")
		return
	}

	resp, err := h.paymentService.GetPaymentByExternalID(c.Request.Context(), externalID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// =====================================================
// ERROR MAPPING
// =====================================================

// writeError maps a domain error onto an HTTP status and emits the
// standard error envelope.
func (h *PaymentHandler) writeError(c *gin.Context, err error) {
	env := canonical.ErrorEnvelope(err, "")
	c.JSON(statusForError(err), env)
}

func statusForError(err error) int {
	var validationErr *model.ValidationError
	var providerErr *model.ProviderError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNoProviderForNetwork):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidWebhookAuth):
		return http.StatusBadRequest
	case errors.As(err, &providerErr):
		// Upstream 4xx passes through; everything else is a bad gateway.
		if providerErr.StatusCode >= 400 && providerErr.StatusCode < 500 {
			return providerErr.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
