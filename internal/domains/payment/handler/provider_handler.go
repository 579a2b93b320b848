package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"payrouter-backend/internal/domains/payment/model"
	"payrouter-backend/internal/domains/payment/provider"
	"payrouter-backend/internal/infrastructure/cache"
	"payrouter-backend/internal/infrastructure/database"
	"payrouter-backend/internal/shared/response"
)

// =====================================================
// PROVIDER / OPS HANDLER
// =====================================================
type ProviderHandler struct {
	registry *provider.Registry
	db       *database.PostgresDB
	redis    *cache.RedisClient
}

func NewProviderHandler(registry *provider.Registry, db *database.PostgresDB, redis *cache.RedisClient) *ProviderHandler {
	return &ProviderHandler{
		registry: registry,
		db:       db,
		redis:    redis,
	}
}

// ListProviderStatus reports every registered provider with its
// last-known health
// GET /api/v1/providers/status
func (h *ProviderHandler) ListProviderStatus(c *gin.Context) {
	providers := h.registry.All()

	out := make([]model.ProviderStatusResponse, 0, len(providers))
	for _, p := range providers {
		out = append(out, model.ProviderStatusResponse{
			Name:            p.Name(),
			Healthy:         h.registry.LastHealthy(p.Name()),
			Priority:        p.Priority(),
			SupportedChains: p.SupportedChains(),
		})
	}

	response.Success(c, http.StatusOK, out)
}

// RoutingStats reports aggregate routing counts
// GET /api/v1/routing/stats
func (h *ProviderHandler) RoutingStats(c *gin.Context) {
	stats := h.registry.StatsSnapshot()

	response.Success(c, http.StatusOK, model.RoutingStatsResponse{
		TotalProviders:   stats.TotalProviders,
		HealthyProviders: stats.HealthyProviders,
		SupportedChains:  stats.SupportedChains,
		TotalChains:      stats.TotalChains,
	})
}

// Health is the liveness/readiness endpoint
// GET /health
func (h *ProviderHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "redis": "ok"}
	healthy := true

	if err := h.db.HealthCheck(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}
	if err := h.redis.HealthCheck(ctx); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"healthy": healthy, "checks": checks})
}
