package router

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrouter-backend/internal/domains/payment/model"
	"payrouter-backend/internal/domains/payment/provider"
	"payrouter-backend/internal/domains/payment/provider/mock"
)

func testRetry() provider.RetryPolicy {
	return provider.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}
}

func daimoCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"display": map[string]interface{}{
			"intent":   "Order #1",
			"currency": "USD",
		},
		"destination": map[string]interface{}{
			"chainId":            float64(10),
			"destinationAddress": "0xCallerDest",
			"tokenAddress":       "0xCallerToken",
			"amountUnits":        "5.00",
		},
		"externalId": "order-1",
	}
}

// =====================================================
// CREATE
// =====================================================

func TestRouteCreateOverwritesDestination(t *testing.T) {
	registry := provider.NewRegistry()
	adapter := mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1)
	registry.Register(adapter)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	result, err := r.RouteCreate(context.Background(), daimoCreateBody())

	require.NoError(t, err)
	assert.Equal(t, model.ProviderDaimo, result.Provider)
	assert.Equal(t, 1, adapter.ValidateCalls)
	assert.Equal(t, 1, adapter.CreateCalls)

	// the mock echoes mangled addresses; the sanitized request wins
	assert.Equal(t, "0xCallerDest", result.Response.Destination.DestinationAddress)
	assert.Equal(t, "0xCallerToken", result.Response.Destination.TokenAddress)
	assert.Equal(t, model.StatusUnpaid, result.Response.Status)
	assert.Equal(t, "order-1", result.Response.ExternalID)
	require.NotNil(t, result.Request)
	assert.Equal(t, "0xCallerDest", result.Request.Destination.DestinationAddress)
	assert.NotNil(t, result.Raw)
}

func TestRouteCreateKeepsProviderTokenWhenRequestOmitsIt(t *testing.T) {
	registry := provider.NewRegistry()
	adapter := mock.NewProvider(model.ProviderLumen, model.LumenChainIDs, "inv_", 1)
	registry.Register(adapter)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	body := map[string]interface{}{
		"display": map[string]interface{}{"intent": "Invoice", "currency": "USD"},
		"destination": map[string]interface{}{
			"chainId":            float64(10001),
			"destinationAddress": "GDEST",
			"tokenSymbol":        "USDC",
			"amountUnits":        "5.00",
		},
	}

	result, err := r.RouteCreate(context.Background(), body)

	require.NoError(t, err)
	// request carried no token address, so the provider echo survives
	assert.Equal(t, "0xPROVIDER-TOKEN", result.Response.Destination.TokenAddress)
	assert.Equal(t, "USDC", result.Response.Destination.TokenSymbol)
	assert.Equal(t, "GDEST", result.Response.Destination.DestinationAddress)
}

func TestRouteCreateStructuralFailureSkipsAdapter(t *testing.T) {
	registry := provider.NewRegistry()
	adapter := mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1)
	registry.Register(adapter)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	body := daimoCreateBody()
	delete(body, "destination")

	_, err := r.RouteCreate(context.Background(), body)

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)

	// fail-fast: no adapter was consulted at all
	assert.Equal(t, 0, adapter.ValidateCalls)
	assert.Equal(t, 0, adapter.CreateCalls)
}

func TestRouteCreateAdapterValidationFailure(t *testing.T) {
	registry := provider.NewRegistry()
	adapter := mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1)
	adapter.ValidateErrors = []string{"Invalid EVM destination address"}
	registry.Register(adapter)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	_, err := r.RouteCreate(context.Background(), daimoCreateBody())

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"Invalid EVM destination address"}, validationErr.Errors)
	assert.Equal(t, 0, adapter.CreateCalls)
}

func TestRouteCreateUnsupportedNetwork(t *testing.T) {
	registry := provider.NewRegistry()
	registry.Register(mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1))
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	body := daimoCreateBody()
	body["destination"].(map[string]interface{})["chainId"] = float64(424242)
	body["destination"].(map[string]interface{})["tokenSymbol"] = "XYZ"

	_, err := r.RouteCreate(context.Background(), body)
	assert.ErrorIs(t, err, model.ErrNoProviderForNetwork)
}

func TestRouteCreateFallsBackToDefaultForKnownChainClass(t *testing.T) {
	registry := provider.NewRegistry()
	// adapter only maps Lumen chains, but 8453 is a recognized network
	// class, so routing degrades to the default provider
	adapter := mock.NewProvider(model.ProviderLumen, model.LumenChainIDs, "inv_", 1)
	registry.Register(adapter)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	result, err := r.RouteCreate(context.Background(), daimoCreateBody())

	require.NoError(t, err)
	assert.Equal(t, model.ProviderLumen, result.Provider)
	assert.Equal(t, 1, adapter.CreateCalls)
}

func TestRouteCreateFallbackDisabledRejectsUnmappedChain(t *testing.T) {
	registry := provider.NewRegistry()
	// only Lumen chains are mapped; 10 is a recognized class, but with
	// fallback off the router must not degrade to the default provider
	adapter := mock.NewProvider(model.ProviderLumen, model.LumenChainIDs, "inv_", 1)
	registry.Register(adapter)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: false})

	_, err := r.RouteCreate(context.Background(), daimoCreateBody())

	assert.ErrorIs(t, err, model.ErrNoProviderForNetwork)
	assert.Equal(t, 0, adapter.CreateCalls)
}

func TestRouteCreateFallsBackForRuleRoutedChain(t *testing.T) {
	registry := provider.NewRegistry()
	adapter := mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1)
	registry.Register(adapter)

	// 424242 is no recognized network class, but an enabled routing
	// rule marks it routed, so traffic degrades to the default provider
	r := NewRouter(registry, testRetry(), Options{
		EnableFallback: true,
		Rules:          []provider.RoutingRule{{ChainID: 424242, ProviderName: model.ProviderDaimo, Enabled: true}},
	})

	body := daimoCreateBody()
	body["destination"].(map[string]interface{})["chainId"] = float64(424242)
	body["destination"].(map[string]interface{})["tokenSymbol"] = "XYZ"

	result, err := r.RouteCreate(context.Background(), body)

	require.NoError(t, err)
	assert.Equal(t, model.ProviderDaimo, result.Provider)
	assert.Equal(t, 1, adapter.CreateCalls)
}

func TestRouteCreateProviderFailureSurfaces(t *testing.T) {
	registry := provider.NewRegistry()
	adapter := mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1)
	adapter.FailCreate = true
	registry.Register(adapter)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	_, err := r.RouteCreate(context.Background(), daimoCreateBody())

	var providerErr *model.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, model.ProviderDaimo, providerErr.Provider)

	// creates are never retried
	assert.Equal(t, 1, adapter.CreateCalls)
}

// =====================================================
// GET BY ID
// =====================================================

func TestRouteGetByIDResolvesByPrefix(t *testing.T) {
	registry := provider.NewRegistry()
	daimo := mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1)
	lumen := mock.NewProvider(model.ProviderLumen, model.LumenChainIDs, "inv_", 2)
	registry.Register(daimo)
	registry.Register(lumen)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	lumen.Payments["inv_55"] = &model.ProviderPayment{ID: "inv_55", Status: "paid"}

	result, err := r.RouteGetByID(context.Background(), "inv_55", nil)

	require.NoError(t, err)
	assert.Equal(t, model.ProviderLumen, result.Provider)
	assert.Equal(t, model.StatusCompleted, result.Response.Status)
	assert.Equal(t, 0, daimo.GetByIDCalls)
	assert.Equal(t, 1, lumen.GetByIDCalls)
}

func TestRouteGetByIDChainHintWinsOverPrefix(t *testing.T) {
	registry := provider.NewRegistry()
	daimo := mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1)
	lumen := mock.NewProvider(model.ProviderLumen, model.LumenChainIDs, "inv_", 2)
	registry.Register(daimo)
	registry.Register(lumen)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	lumen.Payments["dp_odd"] = &model.ProviderPayment{ID: "dp_odd", Status: "pending"}

	hint := int64(10001)
	result, err := r.RouteGetByID(context.Background(), "dp_odd", &hint)

	require.NoError(t, err)
	assert.Equal(t, model.ProviderLumen, result.Provider)
	assert.Equal(t, 0, daimo.GetByIDCalls)
}

func TestRouteGetByIDFallsBackToDefaultProvider(t *testing.T) {
	registry := provider.NewRegistry()
	daimo := mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1)
	registry.Register(daimo)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	daimo.Payments["unprefixed-id"] = &model.ProviderPayment{ID: "unprefixed-id", Status: "payment_started"}

	result, err := r.RouteGetByID(context.Background(), "unprefixed-id", nil)

	require.NoError(t, err)
	assert.Equal(t, model.ProviderDaimo, result.Provider)
	assert.Equal(t, model.StatusStarted, result.Response.Status)
}

func TestRouteGetByIDRetriesReads(t *testing.T) {
	registry := provider.NewRegistry()
	daimo := mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1)
	daimo.FailGet = true
	registry.Register(daimo)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	_, err := r.RouteGetByID(context.Background(), "dp_1", nil)

	require.Error(t, err)
	assert.Equal(t, 2, daimo.GetByIDCalls)
}

func TestRouteGetByIDZeroRetryBudgetStillFetches(t *testing.T) {
	registry := provider.NewRegistry()
	daimo := mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1)
	registry.Register(daimo)
	r := NewRouter(registry, provider.RetryPolicy{MaxAttempts: 0}, Options{EnableFallback: true})

	daimo.Payments["dp_7"] = &model.ProviderPayment{ID: "dp_7", Status: "payment_completed"}

	result, err := r.RouteGetByID(context.Background(), "dp_7", nil)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, model.StatusCompleted, result.Response.Status)
	assert.Equal(t, 1, daimo.GetByIDCalls)
}

func TestRouteGetByIDNoProviders(t *testing.T) {
	r := NewRouter(provider.NewRegistry(), testRetry(), Options{EnableFallback: true})
	_, err := r.RouteGetByID(context.Background(), "dp_1", nil)
	assert.ErrorIs(t, err, model.ErrNoProviderForNetwork)
}

// =====================================================
// GET BY EXTERNAL ID
// =====================================================

// extProbeStub wraps the mock and makes external-id lookup unsupported,
// the way the Lumen adapter behaves.
type extProbeStub struct {
	*mock.Provider
	extCalls int
}

func (s *extProbeStub) GetPaymentByExternalID(ctx context.Context, externalID string) (*model.ProviderPayment, error) {
	s.extCalls++
	return nil, fmt.Errorf("stub: %w", model.ErrNotSupported)
}

func TestRouteGetByExternalIDProbesInOrder(t *testing.T) {
	registry := provider.NewRegistry()
	unsupported := &extProbeStub{Provider: mock.NewProvider(model.ProviderLumen, model.LumenChainIDs, "inv_", 2)}
	daimo := mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1)
	registry.Register(unsupported)
	registry.Register(daimo)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	daimo.Payments["dp_9"] = &model.ProviderPayment{ID: "dp_9", Status: "payment_completed", ExternalID: "order-9"}

	result, err := r.RouteGetByExternalID(context.Background(), "order-9")

	require.NoError(t, err)
	assert.Equal(t, model.ProviderDaimo, result.Provider)
	assert.Equal(t, model.StatusCompleted, result.Response.Status)

	// the unsupported adapter was probed once and skipped without retries
	assert.Equal(t, 1, unsupported.extCalls)
}

func TestRouteGetByExternalIDNotFoundAnywhere(t *testing.T) {
	registry := provider.NewRegistry()
	registry.Register(mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1))
	registry.Register(mock.NewProvider(model.ProviderLumen, model.LumenChainIDs, "inv_", 2))
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	_, err := r.RouteGetByExternalID(context.Background(), "order-missing")
	assert.ErrorIs(t, err, model.ErrPaymentNotFound)
}

func TestRouteGetByExternalIDSurfacesInfrastructureError(t *testing.T) {
	registry := provider.NewRegistry()
	broken := mock.NewProvider(model.ProviderDaimo, model.DaimoChainIDs, "dp_", 1)
	broken.FailGet = true
	registry.Register(broken)
	r := NewRouter(registry, testRetry(), Options{EnableFallback: true})

	_, err := r.RouteGetByExternalID(context.Background(), "order-1")

	require.Error(t, err)
	assert.False(t, errors.Is(err, model.ErrPaymentNotFound))
}

func TestRouteGetByExternalIDEmptyRegistry(t *testing.T) {
	r := NewRouter(provider.NewRegistry(), testRetry(), Options{EnableFallback: true})
	_, err := r.RouteGetByExternalID(context.Background(), "order-1")
	assert.ErrorIs(t, err, model.ErrNoProviderForNetwork)
}
