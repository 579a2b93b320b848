package job

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"payrouter-backend/internal/domains/payment/provider"
	"payrouter-backend/pkg/cache"
	"payrouter-backend/pkg/logger"
)

// HealthProbeHandler runs the periodic provider health probe and
// mirrors the result into Redis so the API processes see it too.
type HealthProbeHandler struct {
	registry     *provider.Registry
	cache        cache.Cache
	probeTimeout time.Duration
}

func NewHealthProbeHandler(
	registry *provider.Registry,
	cacheClient cache.Cache,
	probeTimeout time.Duration,
) *HealthProbeHandler {
	return &HealthProbeHandler{
		registry:     registry,
		cache:        cacheClient,
		probeTimeout: probeTimeout,
	}
}

type providerHealthDTO struct {
	Provider  string    `json:"provider"`
	Healthy   bool      `json:"healthy"`
	ProbedAt  time.Time `json:"probed_at"`
}

// ProcessTask probes every registered provider.
// 1. Probe each adapter with a bounded timeout.
// 2. Record the result on the registry.
// 3. Mirror each result into Redis key provider:health:{name}.
func (h *HealthProbeHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	healthy := h.registry.HealthyProviders(ctx, h.probeTimeout)

	healthySet := make(map[string]bool, len(healthy))
	for _, p := range healthy {
		healthySet[p.Name()] = true
	}

	for _, p := range h.registry.All() {
		dto := providerHealthDTO{
			Provider: p.Name(),
			Healthy:  healthySet[p.Name()],
			ProbedAt: time.Now().UTC(),
		}

		key := "provider:health:" + p.Name()
		if err := h.cache.Set(ctx, key, dto, 5*time.Minute); err != nil {
			logger.Error("HealthProbe: failed to write health snapshot", err)
		}
	}

	logger.Info("HealthProbe: probe complete", map[string]interface{}{
		"total":   len(h.registry.All()),
		"healthy": len(healthy),
	})
	return nil
}
