package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	repo "payrouter-backend/internal/domains/payment/repository"
	"payrouter-backend/internal/domains/payment/service"
	"payrouter-backend/internal/shared"
	"payrouter-backend/pkg/logger"
)

// StaleSweepHandler re-queries started payments whose status has not
// moved within the stale window. Webhooks are the primary status
// source; the sweep is the safety net for lost deliveries.
type StaleSweepHandler struct {
	paymentRepo    repo.PaymentRepoInterface
	paymentService service.PaymentService
	staleWindow    time.Duration
}

func NewStaleSweepHandler(
	paymentRepo repo.PaymentRepoInterface,
	paymentService service.PaymentService,
	staleWindow time.Duration,
) *StaleSweepHandler {
	return &StaleSweepHandler{
		paymentRepo:    paymentRepo,
		paymentService: paymentService,
		staleWindow:    staleWindow,
	}
}

const defaultSweepLimit = 100

// ProcessTask refreshes up to payload.Limit stale records.
// Individual refresh failures are logged and skipped so a single
// degraded provider never stalls the whole sweep.
func (h *StaleSweepHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.SweepStalePaymentsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("StaleSweep: failed to unmarshal payload", err)
		return fmt.Errorf("unmarshal SweepStalePayments payload: %w", err)
	}
	if payload.Limit <= 0 {
		payload.Limit = defaultSweepLimit
	}

	records, err := h.paymentRepo.ListStale(ctx, h.staleWindow, payload.Limit)
	if err != nil {
		logger.Error("StaleSweep: failed to list stale payments", err)
		return fmt.Errorf("list stale payments: %w", err)
	}

	refreshed := 0
	for _, record := range records {
		if err := h.paymentService.RefreshStale(ctx, record); err != nil {
			logger.Error(fmt.Sprintf("StaleSweep: refresh failed for %s", record.PaymentID), err)
			continue
		}
		refreshed++
	}

	logger.Info("StaleSweep: sweep complete", map[string]interface{}{
		"candidates": len(records),
		"refreshed":  refreshed,
	})
	return nil
}
