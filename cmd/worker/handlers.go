package main

import (
	"github.com/hibiken/asynq"

	paymentJob "payrouter-backend/internal/domains/payment/job"
	"payrouter-backend/internal/shared"
	"payrouter-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	healthProbe *paymentJob.HealthProbeHandler
	staleSweep  *paymentJob.StaleSweepHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container, cfg *Config) *HandlerRegistry {
	return &HandlerRegistry{
		healthProbe: paymentJob.NewHealthProbeHandler(
			c.Registry,
			c.Cache,
			c.Config.Routing.HealthProbeTimeout,
		),
		staleSweep: paymentJob.NewStaleSweepHandler(
			c.PaymentRepo,
			c.PaymentService,
			c.Config.Routing.StaleWindow,
		),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeProbeProviderHealth, h.healthProbe.ProcessTask)
	mux.HandleFunc(shared.TypeSweepStalePayments, h.staleSweep.ProcessTask)
}
