package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// WITHDRAW TRIGGER
// =====================================================
// WithdrawTrigger moves settled funds onward once a payment reaches
// completed. The trigger fires at most once per payment; the returned
// id is stored on the record so retried webhooks do not fire it again.
type WithdrawTrigger interface {
	TriggerWithdraw(ctx context.Context, record *model.PaymentRecord) (string, error)
}

// loggingWithdrawTrigger is the default trigger: it mints a withdraw id
// and logs the intent. Deployments with a treasury service swap in
// their own implementation.
type loggingWithdrawTrigger struct{}

func NewLoggingWithdrawTrigger() WithdrawTrigger {
	return &loggingWithdrawTrigger{}
}

func (t *loggingWithdrawTrigger) TriggerWithdraw(ctx context.Context, record *model.PaymentRecord) (string, error) {
	withdrawID := fmt.Sprintf("wd_%s", uuid.New().String())

	log.Info().
		Str("payment_id", record.PaymentID).
		Str("withdraw_id", withdrawID).
		Str("provider", record.ProviderName).
		Str("amount", record.Amount.String()).
		Str("currency", record.Currency).
		Msg("Withdraw triggered")

	return withdrawID, nil
}
