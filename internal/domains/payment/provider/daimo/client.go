package daimo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"payrouter-backend/internal/domains/payment/model"
	"payrouter-backend/internal/domains/payment/provider"
)

// =====================================================
// DAIMO CLIENT
// =====================================================
// Contract-first adapter: EVM networks, token identified by contract
// address, payments created and fetched over Daimo's REST API.

type Client struct {
	config     *Config
	httpClient *http.Client
	chains     []int64
}

func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Daimo config: %w", err)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		chains:     model.DaimoChainIDs,
	}, nil
}

func (c *Client) Name() string             { return model.ProviderDaimo }
func (c *Client) SupportedChains() []int64 { return c.chains }
func (c *Client) Priority() int            { return c.config.Priority }
func (c *Client) IDPrefix() string         { return PaymentIDPrefix }

// =====================================================
// CREATE PAYMENT
// =====================================================

func (c *Client) CreatePayment(ctx context.Context, req model.CanonicalPaymentRequest) (*model.ProviderPayment, error) {
	body := map[string]interface{}{
		"display": map[string]interface{}{
			"intent":       req.Display.Intent,
			"paymentValue": req.Display.AmountUnits,
			"currency":     req.Display.Currency,
		},
		"destination": map[string]interface{}{
			"destinationAddress": req.Destination.DestinationAddress,
			"chainId":            strconv.FormatInt(req.Destination.ChainID, 10),
			"amountUnits":        req.Destination.AmountUnits,
			"tokenSymbol":        req.Destination.TokenSymbol,
			"tokenAddress":       req.Destination.TokenAddress,
		},
	}
	if req.ExternalID != "" {
		body["externalId"] = req.ExternalID
	}
	if len(req.Metadata) > 0 {
		body["metadata"] = req.Metadata
	}

	return c.doPayment(ctx, http.MethodPost, "/payment", body)
}

// =====================================================
// FETCH
// =====================================================

func (c *Client) GetPaymentByID(ctx context.Context, id string) (*model.ProviderPayment, error) {
	return c.doPayment(ctx, http.MethodGet, "/payment/"+url.PathEscape(id), nil)
}

func (c *Client) GetPaymentByExternalID(ctx context.Context, externalID string) (*model.ProviderPayment, error) {
	return c.doPayment(ctx, http.MethodGet, "/payment/external-id/"+url.PathEscape(externalID), nil)
}

// =====================================================
// HEALTH
// =====================================================

// IsHealthy probes the API health endpoint. Any failure collapses to
// false.
func (c *Client) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Api-Key", c.config.APIKey)

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

// Validate runs the shared base rules concatenated with Daimo's own:
// contract address required and EVM address formats.
func (c *Client) Validate(req model.CanonicalPaymentRequest) []string {
	return provider.RunRules(req, provider.BaseRules(c.chains), daimoRules())
}

func daimoRules() []provider.Rule {
	return []provider.Rule{
		func(req model.CanonicalPaymentRequest) string {
			if req.Destination.TokenAddress == "" {
				return "Token address is required for Daimo chains"
			}
			return ""
		},
		func(req model.CanonicalPaymentRequest) string {
			if !common.IsHexAddress(req.Destination.DestinationAddress) {
				return fmt.Sprintf("Invalid EVM destination address %q", req.Destination.DestinationAddress)
			}
			return ""
		},
		func(req model.CanonicalPaymentRequest) string {
			if req.Destination.TokenAddress != "" && !common.IsHexAddress(req.Destination.TokenAddress) {
				return fmt.Sprintf("Invalid token contract address %q", req.Destination.TokenAddress)
			}
			return ""
		},
	}
}

// =====================================================
// WEBHOOK AUTH / DECODE
// =====================================================

// VerifyWebhookAuth checks the Authorization-carried shared secret.
func (c *Client) VerifyWebhookAuth(authorization string) bool {
	if c.config.WebhookSecret == "" {
		return false
	}
	return authorization == "Basic "+c.config.WebhookSecret ||
		authorization == c.config.WebhookSecret
}

// DecodeWebhook decodes a native webhook delivery.
func DecodeWebhook(body []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed Daimo webhook body: %w", err)
	}
	if payload.Type == "" || payload.PaymentID == "" {
		return nil, fmt.Errorf("Daimo webhook missing type or paymentId")
	}
	return &payload, nil
}

// =====================================================
// HTTP PLUMBING
// =====================================================

func (c *Client) doPayment(ctx context.Context, method, path string, body interface{}) (*model.ProviderPayment, error) {
	var reqBody io.Reader
	if body != nil {
		bodyJSON, err := json.Marshal(body)
		if err != nil {
			return nil, model.NewProviderError(model.ProviderDaimo, "failed to marshal request", err)
		}
		reqBody = bytes.NewReader(bodyJSON)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, model.NewProviderError(model.ProviderDaimo, "failed to build request", err)
	}
	httpReq.Header.Set("Api-Key", c.config.APIKey)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, model.NewProviderError(model.ProviderDaimo, "request failed", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewProviderError(model.ProviderDaimo, "failed to read response", err)
	}

	var raw map[string]interface{}
	json.Unmarshal(respBytes, &raw)

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("daimo: %w", model.ErrPaymentNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
		if m, ok := raw["message"].(string); ok && m != "" {
			msg = m
		}
		return nil, model.NewProviderHTTPError(model.ProviderDaimo, resp.StatusCode, msg, raw)
	}

	var payload paymentPayload
	if err := json.Unmarshal(respBytes, &payload); err != nil {
		return nil, model.NewProviderError(model.ProviderDaimo, "malformed response body", err)
	}

	return payload.toProviderPayment(raw), nil
}
