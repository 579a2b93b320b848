package provider

import (
	"context"
	"errors"
	"time"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// RETRY POLICY
// =====================================================
// RetryPolicy is an explicit value passed to call sites instead of a
// wrapped callback. Callers can distinguish "exhausted" (err != nil
// after the final attempt) from "succeeded on attempt N".
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy matches the provider-call defaults: three
// attempts with base*2^attempt backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}
}

// Do runs fn up to MaxAttempts times with exponential backoff between
// failures. A MaxAttempts below one is clamped to one: fn always runs
// at least once. Only safe for calls whose upstream side effect is
// idempotent or safely re-issuable; the Router never wraps create
// calls in this.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) (*model.ProviderPayment, error)) (*model.ProviderPayment, int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, attempt, ctx.Err()
			}
		}

		resp, err := fn(ctx)
		if err == nil {
			return resp, attempt + 1, nil
		}
		if !retryable(err) {
			return nil, attempt + 1, err
		}
		lastErr = err
	}

	return nil, maxAttempts, lastErr
}

// retryable reports whether another attempt could change the answer.
// Definitive upstream responses (the payment does not exist, the
// provider cannot serve the lookup at all) surface immediately instead
// of burning the attempt budget with backoff.
func retryable(err error) bool {
	return !errors.Is(err, model.ErrPaymentNotFound) && !errors.Is(err, model.ErrNotSupported)
}

// DoSideEffect is the error-only variant used for best-effort
// downstream triggers (the withdraw call).
func (p RetryPolicy) DoSideEffect(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	_, attempts, err := p.Do(ctx, func(ctx context.Context) (*model.ProviderPayment, error) {
		return nil, fn(ctx)
	})
	return attempts, err
}
