package lumen

import (
	"fmt"
	"time"
)

// =====================================================
// LUMEN CONFIGURATION
// =====================================================

type Config struct {
	BaseURL      string        // Lumen invoice API base URL
	APIKey       string        // X-Api-Key header value
	Timeout      time.Duration // per-call HTTP timeout
	Retries      int           // read-path retry attempts
	Priority     int           // routing priority (lower = preferred)
	WebhookToken string        // pre-shared ?token= value for webhook deliveries
}

func NewConfig(baseURL, apiKey string, timeout time.Duration, retries, priority int, webhookToken string) *Config {
	return &Config{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Timeout:      timeout,
		Retries:      retries,
		Priority:     priority,
		WebhookToken: webhookToken,
	}
}

// Validate validates configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("Lumen BaseURL is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

// =====================================================
// LUMEN CONSTANTS
// =====================================================

const (
	// Invoice-id prefix recognized by the router's id convention
	InvoiceIDPrefix = "inv_"

	// Native invoice statuses
	NativeStatusPending    = "pending"
	NativeStatusProcessing = "processing"
	NativeStatusPaid       = "paid"
	NativeStatusFailed     = "failed"
	NativeStatusExpired    = "expired"
)

// TokenWhitelist is the set of asset symbols Lumen settles.
var TokenWhitelist = []string{"XLM", "USDC", "AQUA", "EURC"}
