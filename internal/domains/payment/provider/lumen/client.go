package lumen

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"payrouter-backend/internal/domains/payment/model"
	"payrouter-backend/internal/domains/payment/provider"
)

// stellarAccountPattern matches a 56-character ed25519 public key
// account id: G followed by 55 base32 characters.
var stellarAccountPattern = regexp.MustCompile(`^G[A-Z2-7]{55}$`)

// =====================================================
// LUMEN CLIENT
// =====================================================
// Symbol-first adapter: Stellar-style networks, token identified by
// asset symbol, payments modeled as invoices upstream.

type Client struct {
	config     *Config
	httpClient *http.Client
	chains     []int64
}

func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Lumen config: %w", err)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		chains:     model.LumenChainIDs,
	}, nil
}

func (c *Client) Name() string             { return model.ProviderLumen }
func (c *Client) SupportedChains() []int64 { return c.chains }
func (c *Client) Priority() int            { return c.config.Priority }
func (c *Client) IDPrefix() string         { return InvoiceIDPrefix }

// =====================================================
// CREATE PAYMENT
// =====================================================

func (c *Client) CreatePayment(ctx context.Context, req model.CanonicalPaymentRequest) (*model.ProviderPayment, error) {
	body := map[string]interface{}{
		"memo":       req.Display.Intent,
		"amount":     req.Destination.AmountUnits,
		"currency":   req.Display.Currency,
		"network":    req.Destination.ChainID,
		"account":    req.Destination.DestinationAddress,
		"asset_code": req.Destination.TokenSymbol,
	}
	if req.Destination.TokenAddress != "" {
		body["asset_issuer"] = req.Destination.TokenAddress
	}
	if req.ExternalID != "" {
		body["external_ref"] = req.ExternalID
	}
	if len(req.Metadata) > 0 {
		body["extra"] = req.Metadata
	}

	return c.doInvoice(ctx, http.MethodPost, "/v1/invoices", body)
}

// =====================================================
// FETCH
// =====================================================

func (c *Client) GetPaymentByID(ctx context.Context, id string) (*model.ProviderPayment, error) {
	return c.doInvoice(ctx, http.MethodGet, "/v1/invoices/"+url.PathEscape(id), nil)
}

// GetPaymentByExternalID is not offered by Lumen's invoice API; the
// router treats this as "try the next adapter".
func (c *Client) GetPaymentByExternalID(ctx context.Context, externalID string) (*model.ProviderPayment, error) {
	return nil, fmt.Errorf("lumen: %w", model.ErrNotSupported)
}

// =====================================================
// HEALTH
// =====================================================

func (c *Client) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/v1/ping", nil)
	if err != nil {
		return false
	}
	if c.config.APIKey != "" {
		req.Header.Set("X-Api-Key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// =====================================================
// VALIDATION
// =====================================================

// Validate runs the shared base rules concatenated with Lumen's own:
// asset symbol present and whitelisted, Stellar account format.
func (c *Client) Validate(req model.CanonicalPaymentRequest) []string {
	return provider.RunRules(req, provider.BaseRules(c.chains), lumenRules())
}

func lumenRules() []provider.Rule {
	return []provider.Rule{
		func(req model.CanonicalPaymentRequest) string {
			if req.Destination.TokenSymbol == "" {
				return "Token symbol is required for Lumen chains"
			}
			return ""
		},
		func(req model.CanonicalPaymentRequest) string {
			if req.Destination.TokenSymbol == "" {
				return ""
			}
			for _, symbol := range TokenWhitelist {
				if symbol == req.Destination.TokenSymbol {
					return ""
				}
			}
			return fmt.Sprintf("Token symbol %q is not supported", req.Destination.TokenSymbol)
		},
		func(req model.CanonicalPaymentRequest) string {
			if !stellarAccountPattern.MatchString(req.Destination.DestinationAddress) {
				return fmt.Sprintf("Invalid Stellar account address %q", req.Destination.DestinationAddress)
			}
			return ""
		},
	}
}

// =====================================================
// WEBHOOK AUTH / DECODE
// =====================================================

// VerifyWebhookToken compares the ?token= query value against the
// pre-shared secret in constant time.
func (c *Client) VerifyWebhookToken(token string) bool {
	if c.config.WebhookToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(c.config.WebhookToken)) == 1
}

// DecodeWebhook decodes a native webhook delivery.
func DecodeWebhook(body []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed Lumen webhook body: %w", err)
	}
	if payload.InvoiceID == "" || payload.Status == "" {
		return nil, fmt.Errorf("Lumen webhook missing invoice_id or status")
	}
	return &payload, nil
}

// =====================================================
// HTTP PLUMBING
// =====================================================

func (c *Client) doInvoice(ctx context.Context, method, path string, body interface{}) (*model.ProviderPayment, error) {
	var reqBody io.Reader
	if body != nil {
		bodyJSON, err := json.Marshal(body)
		if err != nil {
			return nil, model.NewProviderError(model.ProviderLumen, "failed to marshal request", err)
		}
		reqBody = bytes.NewReader(bodyJSON)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, model.NewProviderError(model.ProviderLumen, "failed to build request", err)
	}
	if c.config.APIKey != "" {
		httpReq.Header.Set("X-Api-Key", c.config.APIKey)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, model.NewProviderError(model.ProviderLumen, "request failed", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewProviderError(model.ProviderLumen, "failed to read response", err)
	}

	var raw map[string]interface{}
	json.Unmarshal(respBytes, &raw)

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("lumen: %w", model.ErrPaymentNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
		if m, ok := raw["error"].(string); ok && m != "" {
			msg = m
		}
		return nil, model.NewProviderHTTPError(model.ProviderLumen, resp.StatusCode, msg, raw)
	}

	var payload invoicePayload
	if err := json.Unmarshal(respBytes, &payload); err != nil {
		return nil, model.NewProviderError(model.ProviderLumen, "malformed response body", err)
	}

	return payload.toProviderPayment(raw), nil
}
