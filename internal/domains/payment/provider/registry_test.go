package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrouter-backend/internal/domains/payment/provider/mock"
)

func TestRegistryRegisterAndSelect(t *testing.T) {
	registry := NewRegistry()
	daimo := mock.NewProvider("daimo", []int64{1, 10}, "dp_", 1)
	lumen := mock.NewProvider("lumen", []int64{10001}, "inv_", 2)

	registry.Register(daimo)
	registry.Register(lumen)

	assert.Equal(t, daimo, registry.SelectForChain(1))
	assert.Equal(t, daimo, registry.SelectForChain(10))
	assert.Equal(t, lumen, registry.SelectForChain(10001))
	assert.Nil(t, registry.SelectForChain(99999))

	got, ok := registry.Get("lumen")
	require.True(t, ok)
	assert.Equal(t, lumen, got)

	_, ok = registry.Get("stripe")
	assert.False(t, ok)
}

func TestRegistryLastRegistrationWinsPerChain(t *testing.T) {
	registry := NewRegistry()
	first := mock.NewProvider("first", []int64{42}, "", 1)
	second := mock.NewProvider("second", []int64{42}, "", 2)

	registry.Register(first)
	registry.Register(second)

	assert.Equal(t, second, registry.SelectForChain(42))
}

func TestRegistryUnregister(t *testing.T) {
	registry := NewRegistry()
	daimo := mock.NewProvider("daimo", []int64{1, 10}, "dp_", 1)
	lumen := mock.NewProvider("lumen", []int64{10001}, "inv_", 2)
	registry.Register(daimo)
	registry.Register(lumen)

	registry.Unregister("daimo")

	assert.Nil(t, registry.SelectForChain(1))
	assert.Nil(t, registry.SelectForChain(10))
	assert.Equal(t, lumen, registry.SelectForChain(10001))
	_, ok := registry.Get("daimo")
	assert.False(t, ok)

	// probing order no longer includes the removed adapter
	all := registry.All()
	require.Len(t, all, 1)
	assert.Equal(t, "lumen", all[0].Name())

	// unregistering something unknown is a no-op
	registry.Unregister("stripe")
	assert.Len(t, registry.All(), 1)
}

func TestRegistryDefaultProvider(t *testing.T) {
	registry := NewRegistry()
	assert.Nil(t, registry.DefaultProvider())

	registry.Register(mock.NewProvider("lumen", []int64{10001}, "inv_", 2))
	registry.Register(mock.NewProvider("daimo", []int64{1}, "dp_", 1))

	// lowest priority value wins
	assert.Equal(t, "daimo", registry.DefaultProvider().Name())
}

func TestRegistrySetDefault(t *testing.T) {
	registry := NewRegistry()
	registry.Register(mock.NewProvider("daimo", []int64{1}, "dp_", 1))
	registry.Register(mock.NewProvider("lumen", []int64{10001}, "inv_", 2))

	// configured default overrides priority
	registry.SetDefault("lumen")
	assert.Equal(t, "lumen", registry.DefaultProvider().Name())

	// a name that never registered falls back to priority
	registry.SetDefault("ghost")
	assert.Equal(t, "daimo", registry.DefaultProvider().Name())

	registry.SetDefault("")
	assert.Equal(t, "daimo", registry.DefaultProvider().Name())
}

func TestRegistryResolveByIDPrefix(t *testing.T) {
	registry := NewRegistry()
	registry.Register(mock.NewProvider("daimo", []int64{1}, "dp_", 1))
	registry.Register(mock.NewProvider("lumen", []int64{10001}, "inv_", 2))
	registry.Register(mock.NewProvider("bare", []int64{7}, "", 3))

	require.NotNil(t, registry.ResolveByIDPrefix("dp_123"))
	assert.Equal(t, "daimo", registry.ResolveByIDPrefix("dp_123").Name())
	assert.Equal(t, "lumen", registry.ResolveByIDPrefix("inv_456").Name())

	// no prefix match, and empty prefixes never match
	assert.Nil(t, registry.ResolveByIDPrefix("pi_789"))
}

func TestRegistrySeedRules(t *testing.T) {
	registry := NewRegistry()
	daimo := mock.NewProvider("daimo", []int64{1}, "dp_", 1)
	lumen := mock.NewProvider("lumen", []int64{10001}, "inv_", 2)
	registry.Register(daimo)
	registry.Register(lumen)

	registry.SeedRules([]RoutingRule{
		{ChainID: 1, ProviderName: "lumen", Enabled: true},       // re-point
		{ChainID: 10001, ProviderName: "daimo", Enabled: false},  // disabled, skipped
		{ChainID: 777, ProviderName: "missing", Enabled: true},   // unregistered, skipped
	})

	assert.Equal(t, lumen, registry.SelectForChain(1))
	assert.Equal(t, lumen, registry.SelectForChain(10001))
	assert.Nil(t, registry.SelectForChain(777))
}

func TestRoutedChain(t *testing.T) {
	rules := []RoutingRule{
		{ChainID: 1, ProviderName: "daimo", Enabled: true},
		{ChainID: 10001, ProviderName: "lumen", Enabled: false},
	}

	assert.True(t, RoutedChain(rules, 1))
	assert.False(t, RoutedChain(rules, 10001))
	assert.False(t, RoutedChain(rules, 99999))
}

func TestRegistryHealthProbing(t *testing.T) {
	registry := NewRegistry()
	healthy := mock.NewProvider("daimo", []int64{1}, "dp_", 1)
	sick := mock.NewProvider("lumen", []int64{10001}, "inv_", 2)
	sick.Healthy = false
	registry.Register(healthy)
	registry.Register(sick)

	// never probed reports false
	assert.False(t, registry.LastHealthy("daimo"))

	result := registry.HealthyProviders(context.Background(), time.Second)

	require.Len(t, result, 1)
	assert.Equal(t, "daimo", result[0].Name())
	assert.True(t, registry.LastHealthy("daimo"))
	assert.False(t, registry.LastHealthy("lumen"))
	assert.Equal(t, 1, healthy.HealthCalls)
	assert.Equal(t, 1, sick.HealthCalls)
}

func TestRegistrySetHealth(t *testing.T) {
	registry := NewRegistry()
	registry.Register(mock.NewProvider("daimo", []int64{1}, "dp_", 1))

	registry.SetHealth("daimo", true)
	assert.True(t, registry.LastHealthy("daimo"))

	// unknown providers are ignored
	registry.SetHealth("stripe", true)
	assert.False(t, registry.LastHealthy("stripe"))
}

func TestRegistryStatsSnapshot(t *testing.T) {
	registry := NewRegistry()
	registry.Register(mock.NewProvider("daimo", []int64{10, 1}, "dp_", 1))
	registry.Register(mock.NewProvider("lumen", []int64{10001}, "inv_", 2))
	registry.SetHealth("daimo", true)

	stats := registry.StatsSnapshot()

	assert.Equal(t, 2, stats.TotalProviders)
	assert.Equal(t, 1, stats.HealthyProviders)
	assert.Equal(t, []int64{1, 10, 10001}, stats.SupportedChains)
	assert.Equal(t, 3, stats.TotalChains)
}
