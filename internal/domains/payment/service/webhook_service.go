package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"payrouter-backend/internal/domains/payment/canonical"
	"payrouter-backend/internal/domains/payment/model"
	"payrouter-backend/internal/domains/payment/provider"
	repo "payrouter-backend/internal/domains/payment/repository"
	"payrouter-backend/pkg/cache"
)

// =====================================================
// WEBHOOK SERVICE IMPLEMENTATION
// =====================================================
// Reconciliation is idempotent by construction: the forward-only status
// machine absorbs duplicate and out-of-order deliveries, and a redis
// marker short-circuits exact replays without being load-bearing.
type webhookService struct {
	paymentRepo repo.PaymentRepoInterface
	webhookRepo repo.WebhookRepoInterface
	cache       cache.Cache
	withdraw    WithdrawTrigger
	retry       provider.RetryPolicy
}

func NewWebhookService(
	paymentRepo repo.PaymentRepoInterface,
	webhookRepo repo.WebhookRepoInterface,
	cacheClient cache.Cache,
	withdraw WithdrawTrigger,
	retry provider.RetryPolicy,
) WebhookService {
	return &webhookService{
		paymentRepo: paymentRepo,
		webhookRepo: webhookRepo,
		cache:       cacheClient,
		withdraw:    withdraw,
		retry:       retry,
	}
}

const webhookMarkerTTL = 24 * time.Hour

// Process applies a verified, decoded webhook delivery.
//
// Business Logic Flow:
// 1. Log the delivery (audit trail, before any processing)
// 2. Short-circuit exact replays via the redis marker (best-effort)
// 3. Load the payment record the delivery refers to
// 4. Map the native status onto the canonical vocabulary
// 5. Apply it through the forward-only state machine
// 6. On the transition into completed, trigger the withdraw once
//
// Unknown payments are acknowledged without success so providers stop
// redelivering; only infrastructure failures surface as errors.
func (s *webhookService) Process(ctx context.Context, event model.WebhookEvent) (*model.WebhookAck, error) {
	entry := s.logDelivery(ctx, event)

	status := canonical.NormalizeStatus(event.Provider, event.NativeStatus)

	markerKey := fmt.Sprintf("webhook:%s:%s:%s", event.Provider, event.PaymentID, status)
	if seen, err := s.cache.Exists(ctx, markerKey); err == nil && seen {
		s.markProcessed(ctx, entry)
		return &model.WebhookAck{Success: true, Message: "duplicate delivery"}, nil
	}

	record, err := s.paymentRepo.GetByPaymentID(ctx, event.PaymentID)
	if err != nil {
		if errors.Is(err, model.ErrPaymentNotFound) {
			s.markError(ctx, entry, "payment not found")
			return &model.WebhookAck{Success: false, Error: "payment not found"}, nil
		}
		s.markError(ctx, entry, err.Error())
		return nil, err
	}

	if !model.CanTransition(record.Status, status) {
		log.Info().
			Str("payment_id", record.PaymentID).
			Str("cached_status", record.Status).
			Str("webhook_status", status).
			Msg("Out-of-order webhook ignored")
		s.markProcessed(ctx, entry)
		return &model.WebhookAck{Success: true, Message: "out-of-order delivery ignored"}, nil
	}

	wasTerminal := record.IsTerminal()
	if err := s.paymentRepo.UpdateFromProvider(ctx, record.ID, status, event.Body, event.TxHash, event.PayerAddress); err != nil {
		s.markError(ctx, entry, err.Error())
		return nil, err
	}
	record.Status = status

	if !wasTerminal && status == model.StatusCompleted {
		s.triggerWithdraw(ctx, record)
	}

	if err := s.cache.Set(ctx, markerKey, 1, webhookMarkerTTL); err != nil {
		log.Warn().Err(err).Str("key", markerKey).Msg("Failed to set webhook marker")
	}

	s.markProcessed(ctx, entry)
	return &model.WebhookAck{Success: true}, nil
}

// RecordRejected logs a delivery that failed auth or decoding. The
// caller still answers 400; this only preserves the audit trail.
func (s *webhookService) RecordRejected(ctx context.Context, providerName string, body map[string]interface{}, reason string) {
	entry := &model.PaymentWebhookLog{
		ID:         uuid.New(),
		Provider:   providerName,
		Body:       body,
		ReceivedAt: time.Now(),
	}
	entry.MarkAsInvalid(reason)

	if err := s.webhookRepo.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("provider", providerName).Msg("Failed to log rejected webhook")
	}
}

// =====================================================
// HELPERS
// =====================================================

// triggerWithdraw fires the withdraw with the read-path retry policy.
// Best-effort: a failure is logged and left for manual follow-up, the
// webhook is still acknowledged.
func (s *webhookService) triggerWithdraw(ctx context.Context, record *model.PaymentRecord) {
	var withdrawID string
	_, err := s.retry.DoSideEffect(ctx, func(ctx context.Context) error {
		var err error
		withdrawID, err = s.withdraw.TriggerWithdraw(ctx, record)
		return err
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("payment_id", record.PaymentID).
			Msg("Withdraw trigger failed")
		return
	}

	if err := s.paymentRepo.SetWithdrawID(ctx, record.ID, withdrawID); err != nil {
		log.Error().
			Err(err).
			Str("payment_id", record.PaymentID).
			Str("withdraw_id", withdrawID).
			Msg("Failed to store withdraw id")
	}
}

func (s *webhookService) logDelivery(ctx context.Context, event model.WebhookEvent) *model.PaymentWebhookLog {
	entry := &model.PaymentWebhookLog{
		ID:         uuid.New(),
		Provider:   event.Provider,
		Body:       event.Body,
		ReceivedAt: time.Now(),
	}
	if event.NativeEvent != "" {
		nativeEvent := event.NativeEvent
		entry.NativeEvent = &nativeEvent
	}

	if err := s.webhookRepo.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("provider", event.Provider).Msg("Failed to log webhook delivery")
	}
	return entry
}

func (s *webhookService) markProcessed(ctx context.Context, entry *model.PaymentWebhookLog) {
	if err := s.webhookRepo.MarkAsProcessed(ctx, entry.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to mark webhook as processed")
	}
}

func (s *webhookService) markError(ctx context.Context, entry *model.PaymentWebhookLog, reason string) {
	if err := s.webhookRepo.MarkProcessingError(ctx, entry.ID, reason); err != nil {
		log.Warn().Err(err).Msg("Failed to mark webhook processing error")
	}
}
