package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"payrouter-backend/internal/domains/payment/canonical"
	"payrouter-backend/internal/domains/payment/model"
	"payrouter-backend/internal/domains/payment/provider"
)

// =====================================================
// PAYMENT ROUTER
// =====================================================
// The router is the only component that talks to provider adapters on
// behalf of the API. It owns provider selection, request validation
// ordering, retry policy for read paths, and the canonical overwrite of
// destination fields after creation.

// RouteResult carries the normalized payment plus everything the
// service layer needs to persist it.
type RouteResult struct {
	Response model.CanonicalPaymentResponse
	Provider string
	Raw      map[string]interface{}
	Request  *model.CanonicalPaymentRequest
	Attempts int
}

type PaymentRouter interface {
	RouteCreate(ctx context.Context, raw map[string]interface{}) (*RouteResult, error)
	RouteGetByID(ctx context.Context, id string, chainHint *int64) (*RouteResult, error)
	RouteGetByExternalID(ctx context.Context, externalID string) (*RouteResult, error)
}

// Options tunes selection behavior from routing configuration.
type Options struct {
	// EnableFallback lets traffic for a routed but unmapped chain
	// degrade to the default provider instead of being rejected.
	EnableFallback bool

	// Rules is the static routing table. A chain with an enabled rule
	// counts as routed even when the registry mapping for it was
	// overwritten or never seeded.
	Rules []provider.RoutingRule
}

type Router struct {
	registry *provider.Registry
	retry    provider.RetryPolicy
	fallback bool
	rules    []provider.RoutingRule
}

func NewRouter(registry *provider.Registry, retry provider.RetryPolicy, opts Options) *Router {
	return &Router{
		registry: registry,
		retry:    retry,
		fallback: opts.EnableFallback,
		rules:    opts.Rules,
	}
}

// RouteCreate sanitizes and validates the raw body, picks an adapter
// for the destination chain and creates the payment there.
//
// Validation is two-phase and fail-fast: structural checks run before
// any provider is consulted, provider rules run before any network
// call. A request that fails either phase produces zero adapter calls.
func (r *Router) RouteCreate(ctx context.Context, raw map[string]interface{}) (*RouteResult, error) {
	req := canonical.Sanitize(raw)

	if result := canonical.ValidateStructure(req); !result.Valid {
		return nil, model.NewValidationError(result.Errors)
	}

	adapter := r.selectForChain(req.Destination.ChainID)
	if adapter == nil {
		return nil, fmt.Errorf("chain %d: %w", req.Destination.ChainID, model.ErrNoProviderForNetwork)
	}

	if errs := adapter.Validate(req); len(errs) > 0 {
		return nil, model.NewValidationError(errs)
	}

	log.Info().
		Str("provider", adapter.Name()).
		Int64("chain_id", req.Destination.ChainID).
		Str("external_id", req.ExternalID).
		Msg("Routing payment creation")

	payment, err := adapter.CreatePayment(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := canonical.Normalize(payment, adapter.Name())

	// Providers are not trusted to echo destination fields verbatim.
	// The sanitized request is the source of truth for where funds go.
	resp.Destination.DestinationAddress = req.Destination.DestinationAddress
	if req.Destination.TokenAddress != "" {
		resp.Destination.TokenAddress = req.Destination.TokenAddress
	}
	if req.Destination.TokenSymbol != "" {
		resp.Destination.TokenSymbol = req.Destination.TokenSymbol
	}

	return &RouteResult{
		Response: resp,
		Provider: adapter.Name(),
		Raw:      payment.Raw,
		Request:  &req,
		Attempts: 1,
	}, nil
}

// RouteGetByID fetches a payment by provider-assigned id. Adapter
// selection order: explicit chain hint, then id-prefix inference, then
// the default provider.
func (r *Router) RouteGetByID(ctx context.Context, id string, chainHint *int64) (*RouteResult, error) {
	var adapter provider.PaymentProvider
	if chainHint != nil {
		adapter = r.selectForChain(*chainHint)
		if adapter == nil {
			return nil, fmt.Errorf("chain %d: %w", *chainHint, model.ErrNoProviderForNetwork)
		}
	} else if byPrefix := r.registry.ResolveByIDPrefix(id); byPrefix != nil {
		adapter = byPrefix
	} else {
		adapter = r.registry.DefaultProvider()
	}
	if adapter == nil {
		return nil, model.ErrNoProviderForNetwork
	}

	payment, attempts, err := r.retry.Do(ctx, func(ctx context.Context) (*model.ProviderPayment, error) {
		return adapter.GetPaymentByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	resp := canonical.Normalize(payment, adapter.Name())
	return &RouteResult{
		Response: resp,
		Provider: adapter.Name(),
		Raw:      payment.Raw,
		Attempts: attempts,
	}, nil
}

// RouteGetByExternalID probes every registered adapter in registration
// order. Adapters that do not support external-id lookup or simply do
// not know the id are skipped; the first hit wins.
func (r *Router) RouteGetByExternalID(ctx context.Context, externalID string) (*RouteResult, error) {
	adapters := r.registry.All()
	if len(adapters) == 0 {
		return nil, model.ErrNoProviderForNetwork
	}

	var lastErr error
	for _, adapter := range adapters {
		payment, attempts, err := r.retry.Do(ctx, func(ctx context.Context) (*model.ProviderPayment, error) {
			return adapter.GetPaymentByExternalID(ctx, externalID)
		})
		if err != nil {
			if errors.Is(err, model.ErrPaymentNotFound) || errors.Is(err, model.ErrNotSupported) {
				continue
			}
			lastErr = err
			log.Warn().
				Err(err).
				Str("provider", adapter.Name()).
				Str("external_id", externalID).
				Msg("External id probe failed")
			continue
		}

		resp := canonical.Normalize(payment, adapter.Name())
		return &RouteResult{
			Response: resp,
			Provider: adapter.Name(),
			Raw:      payment.Raw,
			Attempts: attempts,
		}, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("external id %s: %w", externalID, model.ErrPaymentNotFound)
}

// selectForChain resolves the registry mapping first. When fallback is
// enabled, routed-but-unmapped chains degrade to the default provider
// instead of rejecting traffic outright; a chain counts as routed when
// it belongs to a recognized network class or carries a routing rule.
func (r *Router) selectForChain(chainID int64) provider.PaymentProvider {
	if adapter := r.registry.SelectForChain(chainID); adapter != nil {
		return adapter
	}
	if !r.fallback {
		return nil
	}
	if model.IsDaimoChain(chainID) || model.IsLumenChain(chainID) || provider.RoutedChain(r.rules, chainID) {
		return r.registry.DefaultProvider()
	}
	return nil
}
