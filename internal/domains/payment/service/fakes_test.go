package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"payrouter-backend/internal/domains/payment/model"
	"payrouter-backend/internal/domains/payment/router"
)

// =====================================================
// IN-MEMORY FAKES
// =====================================================
// Hand-rolled fakes over generated mocks: the service contracts are
// small and the tests read better asserting on recorded calls.

type fakePaymentRepo struct {
	mu      sync.Mutex
	records map[string]*model.PaymentRecord // keyed by provider payment id

	failCreate bool
	failUpdate bool

	createCalls       int
	updateCalls       int
	withdrawIDByRecID map[uuid.UUID][]string
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		records:           make(map[string]*model.PaymentRecord),
		withdrawIDByRecID: make(map[uuid.UUID][]string),
	}
}

func (f *fakePaymentRepo) Create(ctx context.Context, record *model.PaymentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failCreate {
		return errors.New("fake: insert failed")
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.StatusUpdatedAt = now
	f.records[record.PaymentID] = record
	return nil
}

func (f *fakePaymentRepo) GetByPaymentID(ctx context.Context, paymentID string) (*model.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[paymentID]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("fake: %w", model.ErrPaymentNotFound)
}

func (f *fakePaymentRepo) GetByExternalID(ctx context.Context, externalID string) (*model.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ExternalID != nil && *r.ExternalID == externalID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("fake: %w", model.ErrPaymentNotFound)
}

func (f *fakePaymentRepo) UpdateFromProvider(ctx context.Context, id uuid.UUID, status string, providerResponse map[string]interface{}, txHash, payerAddress *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.failUpdate {
		return errors.New("fake: update failed")
	}
	for _, r := range f.records {
		if r.ID == id {
			if r.Status != status {
				r.StatusUpdatedAt = time.Now()
			}
			r.Status = status
			if providerResponse != nil {
				r.ProviderResponse = providerResponse
			}
			if txHash != nil {
				r.TxHash = txHash
			}
			if payerAddress != nil {
				r.PayerAddress = payerAddress
			}
			return nil
		}
	}
	return model.ErrPaymentNotFound
}

func (f *fakePaymentRepo) SetWithdrawID(ctx context.Context, id uuid.UUID, withdrawID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withdrawIDByRecID[id] = append(f.withdrawIDByRecID[id], withdrawID)
	for _, r := range f.records {
		if r.ID == id && r.WithdrawID == nil {
			w := withdrawID
			r.WithdrawID = &w
		}
	}
	return nil
}

func (f *fakePaymentRepo) ListStale(ctx context.Context, window time.Duration, limit int) ([]*model.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.PaymentRecord
	for _, r := range f.records {
		if r.IsStale(window) && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

// =====================================================

type fakeWebhookRepo struct {
	mu      sync.Mutex
	entries []*model.PaymentWebhookLog

	processed []uuid.UUID
	invalid   map[uuid.UUID]string
	errored   map[uuid.UUID]string
}

func newFakeWebhookRepo() *fakeWebhookRepo {
	return &fakeWebhookRepo{
		invalid: make(map[uuid.UUID]string),
		errored: make(map[uuid.UUID]string),
	}
}

func (f *fakeWebhookRepo) Create(ctx context.Context, entry *model.PaymentWebhookLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeWebhookRepo) MarkAsProcessed(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeWebhookRepo) MarkAsInvalid(ctx context.Context, id uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalid[id] = reason
	return nil
}

func (f *fakeWebhookRepo) MarkProcessingError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errored[id] = errorMsg
	return nil
}

func (f *fakeWebhookRepo) ListByPaymentRecordID(ctx context.Context, recordID uuid.UUID) ([]*model.PaymentWebhookLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.PaymentWebhookLog
	for _, e := range f.entries {
		if e.PaymentRecordID != nil && *e.PaymentRecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

// =====================================================

type fakeCache struct {
	mu    sync.Mutex
	store map[string]interface{}

	failExists bool
	failSet    bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]interface{})}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.store[key]
	return ok, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet {
		return errors.New("fake: redis down")
	}
	f.store[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.store, k)
	}
	return nil
}

func (f *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failExists {
		return false, errors.New("fake: redis down")
	}
	_, ok := f.store[key]
	return ok, nil
}

func (f *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) error { return nil }

func (f *fakeCache) Ping(ctx context.Context) error { return nil }

// =====================================================

type fakeRouter struct {
	mu sync.Mutex

	createResult *router.RouteResult
	createErr    error

	getByIDResult *router.RouteResult
	getByIDErr    error

	getByExtResult *router.RouteResult
	getByExtErr    error

	createCalls   int
	getByIDCalls  int
	getByExtCalls int
	lastChainHint *int64
}

func (f *fakeRouter) RouteCreate(ctx context.Context, raw map[string]interface{}) (*router.RouteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	return f.createResult, f.createErr
}

func (f *fakeRouter) RouteGetByID(ctx context.Context, id string, chainHint *int64) (*router.RouteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getByIDCalls++
	f.lastChainHint = chainHint
	return f.getByIDResult, f.getByIDErr
}

func (f *fakeRouter) RouteGetByExternalID(ctx context.Context, externalID string) (*router.RouteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getByExtCalls++
	return f.getByExtResult, f.getByExtErr
}

// =====================================================

type fakeWithdraw struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeWithdraw) TriggerWithdraw(ctx context.Context, record *model.PaymentRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("wd_fake-%d", f.calls), nil
}
