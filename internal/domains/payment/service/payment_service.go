package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"payrouter-backend/internal/domains/payment/model"
	repo "payrouter-backend/internal/domains/payment/repository"
	"payrouter-backend/internal/domains/payment/router"
)

// =====================================================
// PAYMENT SERVICE IMPLEMENTATION
// =====================================================
type paymentService struct {
	paymentRepo repo.PaymentRepoInterface
	router      router.PaymentRouter
	staleWindow time.Duration
}

func NewPaymentService(
	paymentRepo repo.PaymentRepoInterface,
	paymentRouter router.PaymentRouter,
	staleWindow time.Duration,
) PaymentService {
	if staleWindow <= 0 {
		staleWindow = time.Duration(model.DefaultStaleWindowMinutes) * time.Minute
	}
	return &paymentService{
		paymentRepo: paymentRepo,
		router:      paymentRouter,
		staleWindow: staleWindow,
	}
}

// =====================================================
// CREATE PAYMENT
// =====================================================

// CreatePayment routes the raw request to a provider and caches the
// created payment.
//
// Business Logic Flow:
// 1. Router sanitizes, validates and creates the payment upstream
// 2. Persist the payment record (provider payload + original request)
// 3. Return the canonical response
//
// The cache write is best-effort: the payment already exists upstream,
// so a persistence failure is logged but never surfaced to the caller.
func (s *paymentService) CreatePayment(ctx context.Context, raw map[string]interface{}) (*model.CanonicalPaymentResponse, error) {
	result, err := s.router.RouteCreate(ctx, raw)
	if err != nil {
		return nil, err
	}

	record := buildRecord(result)
	if err := s.paymentRepo.Create(ctx, record); err != nil {
		log.Error().
			Err(err).
			Str("payment_id", result.Response.ID).
			Str("provider", result.Provider).
			Msg("Failed to cache created payment")
	}

	resp := result.Response
	return &resp, nil
}

// =====================================================
// CACHE-FIRST READS
// =====================================================

// GetPaymentByID serves a payment cache-first.
//
// - fresh cache hit: serve the record without touching the provider
// - stale cache hit: re-query the provider; fall back to the stale
//   record when the provider is unreachable
// - cache miss: pass through to the provider, uncached
//
// Only started payments go stale; terminal records are served from
// cache forever.
func (s *paymentService) GetPaymentByID(ctx context.Context, id string, chainHint *int64) (*model.CanonicalPaymentResponse, error) {
	record, err := s.paymentRepo.GetByPaymentID(ctx, id)
	if err == nil {
		return s.serveRecord(ctx, record)
	}

	result, err := s.router.RouteGetByID(ctx, id, chainHint)
	if err != nil {
		return nil, err
	}
	resp := result.Response
	return &resp, nil
}

// GetPaymentByExternalID serves a payment cache-first by the caller's
// external id. Cache misses probe every provider through the router.
func (s *paymentService) GetPaymentByExternalID(ctx context.Context, externalID string) (*model.CanonicalPaymentResponse, error) {
	record, err := s.paymentRepo.GetByExternalID(ctx, externalID)
	if err == nil {
		return s.serveRecord(ctx, record)
	}

	result, err := s.router.RouteGetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	resp := result.Response
	return &resp, nil
}

// serveRecord returns the cached record, refreshing it first when stale.
func (s *paymentService) serveRecord(ctx context.Context, record *model.PaymentRecord) (*model.CanonicalPaymentResponse, error) {
	if record.IsStale(s.staleWindow) {
		if err := s.RefreshStale(ctx, record); err != nil {
			// Degraded provider: the stale record is still the best
			// answer available.
			log.Warn().
				Err(err).
				Str("payment_id", record.PaymentID).
				Str("provider", record.ProviderName).
				Msg("Stale refresh failed, serving cached record")
		}
	}

	resp := record.ToCanonicalResponse()
	return &resp, nil
}

// RefreshStale re-queries the record's provider and applies the result
// in place. Status moves forward only: a provider reporting an earlier
// status than the cache is ignored.
func (s *paymentService) RefreshStale(ctx context.Context, record *model.PaymentRecord) error {
	chainID := record.ChainID
	result, err := s.router.RouteGetByID(ctx, record.PaymentID, &chainID)
	if err != nil {
		return err
	}

	newStatus := result.Response.Status
	if !model.CanTransition(record.Status, newStatus) {
		log.Warn().
			Str("payment_id", record.PaymentID).
			Str("cached_status", record.Status).
			Str("provider_status", newStatus).
			Msg("Provider reported status regression, keeping cached status")
		newStatus = record.Status
	}

	txHash := result.Response.Destination.TxHash
	var payer *string
	if result.Response.Source != nil && result.Response.Source.PayerAddress != "" {
		p := result.Response.Source.PayerAddress
		payer = &p
	}

	if err := s.paymentRepo.UpdateFromProvider(ctx, record.ID, newStatus, result.Raw, txHash, payer); err != nil {
		return err
	}

	if newStatus != record.Status {
		record.StatusUpdatedAt = time.Now()
	}
	record.Status = newStatus
	if txHash != nil {
		record.TxHash = txHash
	}
	if payer != nil {
		record.PayerAddress = payer
	}
	return nil
}

// =====================================================
// RECORD BUILDING
// =====================================================

func buildRecord(result *router.RouteResult) *model.PaymentRecord {
	resp := result.Response

	amount, err := decimal.NewFromString(resp.Display.AmountUnits)
	if err != nil {
		amount = decimal.Zero
	}

	record := &model.PaymentRecord{
		ID:               uuid.New(),
		PaymentID:        resp.ID,
		URL:              resp.URL,
		Amount:           amount,
		Currency:         resp.Display.Currency,
		Status:           resp.Status,
		ProviderName:     result.Provider,
		ChainID:          resp.Destination.ChainID,
		ProviderResponse: result.Raw,
		Metadata:         resp.Metadata,
		OriginalRequest:  result.Request,
	}
	if resp.ExternalID != "" {
		externalID := resp.ExternalID
		record.ExternalID = &externalID
	}
	return record
}
