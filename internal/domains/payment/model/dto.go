package model

// =====================================================
// PROVIDER STATUS / ROUTING STATS
// =====================================================

type ProviderStatusResponse struct {
	Name            string  `json:"name"`
	Healthy         bool    `json:"healthy"`
	Priority        int     `json:"priority"`
	SupportedChains []int64 `json:"supportedChains"`
}

type RoutingStatsResponse struct {
	TotalProviders   int     `json:"totalProviders"`
	HealthyProviders int     `json:"healthyProviders"`
	SupportedChains  []int64 `json:"supportedChains"`
	TotalChains      int     `json:"totalChains"`
}

// =====================================================
// WEBHOOK ACKNOWLEDGEMENT
// =====================================================
// Providers retry on non-2xx, so handled failures (payment not found)
// acknowledge with success=false instead of an error status.

type WebhookAck struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
