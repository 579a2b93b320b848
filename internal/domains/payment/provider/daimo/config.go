package daimo

import (
	"fmt"
	"time"
)

// =====================================================
// DAIMO CONFIGURATION
// =====================================================

type Config struct {
	BaseURL       string        // Daimo Pay API base URL
	APIKey        string        // Api-Key header value
	Timeout       time.Duration // per-call HTTP timeout
	Retries       int           // read-path retry attempts
	Priority      int           // routing priority (lower = preferred)
	WebhookSecret string        // shared secret carried in webhook Authorization header
}

func NewConfig(baseURL, apiKey string, timeout time.Duration, retries, priority int, webhookSecret string) *Config {
	return &Config{
		BaseURL:       baseURL,
		APIKey:        apiKey,
		Timeout:       timeout,
		Retries:       retries,
		Priority:      priority,
		WebhookSecret: webhookSecret,
	}
}

// Validate validates configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("Daimo BaseURL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("Daimo APIKey is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

// =====================================================
// DAIMO CONSTANTS
// =====================================================

const (
	// Payment-id prefix recognized by the router's id convention
	PaymentIDPrefix = "dp_"

	// Native payment statuses
	NativeStatusUnpaid    = "payment_unpaid"
	NativeStatusStarted   = "payment_started"
	NativeStatusCompleted = "payment_completed"
	NativeStatusBounced   = "payment_bounced"
)
