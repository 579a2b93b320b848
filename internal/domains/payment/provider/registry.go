package provider

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// =====================================================
// ROUTING RULES
// =====================================================

// RoutingRule seeds the registry from static configuration and
// answers "is this network routed at all" independent of whether the
// adapter is currently registered.
type RoutingRule struct {
	ChainID      int64
	ProviderName string
	Enabled      bool
	Priority     int
}

// RoutedChain answers whether a chain has an enabled routing rule,
// independent of adapter registration state.
func RoutedChain(rules []RoutingRule, chainID int64) bool {
	for _, rule := range rules {
		if rule.ChainID == chainID && rule.Enabled {
			return true
		}
	}
	return false
}

// =====================================================
// PROVIDER REGISTRY
// =====================================================
// Registry holds the registered adapters, indexes them by supported
// network, and tracks last-known health. Registration is expected to
// be confined to startup; reads afterwards are lock-cheap.
type Registry struct {
	mu          sync.RWMutex
	providers   map[string]PaymentProvider
	byChain     map[int64]PaymentProvider
	lastHealthy map[string]bool
	order       []string // registration order, for external-id probing
	defaultName string   // configured default; empty falls back to priority
}

func NewRegistry() *Registry {
	return &Registry{
		providers:   make(map[string]PaymentProvider),
		byChain:     make(map[int64]PaymentProvider),
		lastHealthy: make(map[string]bool),
	}
}

// Register inserts an adapter by name and maps every chain it
// supports to it. Re-registering a name overwrites in place; the last
// registration for a chain wins.
func (r *Registry) Register(p PaymentProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; exists {
		log.Warn().Str("provider", name).Msg("Overwriting already-registered provider")
	} else {
		r.order = append(r.order, name)
	}
	r.providers[name] = p

	for _, chainID := range p.SupportedChains() {
		r.byChain[chainID] = p
	}

	log.Info().
		Str("provider", name).
		Ints64("chains", p.SupportedChains()).
		Int("priority", p.Priority()).
		Msg("Provider registered")
}

// Unregister removes the named adapter and every chain mapping still
// pointing to it. Mappings re-pointed by a later registration are
// left alone.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.providers[name]
	if !exists {
		return
	}
	delete(r.providers, name)
	delete(r.lastHealthy, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	for chainID, mapped := range r.byChain {
		if mapped == p {
			delete(r.byChain, chainID)
		}
	}
}

// SeedRules re-points chain mappings per static routing rules.
// Disabled rules and rules naming unregistered providers are skipped.
// Called once after startup registration.
func (r *Registry) SeedRules(rules []RoutingRule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		p, ok := r.providers[rule.ProviderName]
		if !ok {
			log.Warn().
				Str("provider", rule.ProviderName).
				Int64("chain", rule.ChainID).
				Msg("Routing rule names unregistered provider, skipping")
			continue
		}
		r.byChain[rule.ChainID] = p
	}
}

// SelectForChain returns the adapter mapped to the chain, or nil.
// Falling back to the default provider is Router policy, not ours.
func (r *Registry) SelectForChain(chainID int64) PaymentProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byChain[chainID]
}

// Get returns a registered adapter by name.
func (r *Registry) Get(name string) (PaymentProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// SetDefault pins the default provider by name. An empty name, or one
// that never registers, leaves the priority-based default in effect.
func (r *Registry) SetDefault(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultName = name
}

// DefaultProvider returns the configured default adapter when it is
// registered, otherwise the one with the lowest priority value, or nil
// when nothing is registered.
func (r *Registry) DefaultProvider() PaymentProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.providers[r.defaultName]; ok {
		return p
	}

	var best PaymentProvider
	for _, p := range r.providers {
		if best == nil || p.Priority() < best.Priority() {
			best = p
		}
	}
	return best
}

// ResolveByIDPrefix infers the adapter from a payment-id convention.
// Adapters without a distinctive prefix never match here.
func (r *Registry) ResolveByIDPrefix(id string) PaymentProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		p := r.providers[name]
		if prefix := p.IDPrefix(); prefix != "" && strings.HasPrefix(id, prefix) {
			return p
		}
	}
	return nil
}

// All returns every registered adapter in registration order.
func (r *Registry) All() []PaymentProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PaymentProvider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.providers[name])
	}
	return out
}

// =====================================================
// HEALTH
// =====================================================

// HealthyProviders probes every registered adapter with a bounded
// per-probe timeout and returns the ones reporting healthy. Probe
// failures count as unhealthy and never propagate.
func (r *Registry) HealthyProviders(ctx context.Context, probeTimeout time.Duration) []PaymentProvider {
	providers := r.All()

	var healthy []PaymentProvider
	for _, p := range providers {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		ok := p.IsHealthy(probeCtx)
		cancel()

		r.mu.Lock()
		r.lastHealthy[p.Name()] = ok
		r.mu.Unlock()

		if ok {
			healthy = append(healthy, p)
		}
	}
	return healthy
}

// LastHealthy returns the last recorded probe result for a provider.
// Providers never probed report false.
func (r *Registry) LastHealthy(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastHealthy[name]
}

// SetHealth records an externally observed health result (the worker's
// periodic probe writes through here).
func (r *Registry) SetHealth(name string, healthy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; ok {
		r.lastHealthy[name] = healthy
	}
}

// =====================================================
// STATS
// =====================================================

type Stats struct {
	TotalProviders   int
	HealthyProviders int
	SupportedChains  []int64
	TotalChains      int
}

// StatsSnapshot reports registry counts from last-known health, no
// probing involved.
func (r *Registry) StatsSnapshot() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chains := make([]int64, 0, len(r.byChain))
	for chainID := range r.byChain {
		chains = append(chains, chainID)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })

	healthy := 0
	for _, ok := range r.lastHealthy {
		if ok {
			healthy++
		}
	}

	return Stats{
		TotalProviders:   len(r.providers),
		HealthyProviders: healthy,
		SupportedChains:  chains,
		TotalChains:      len(chains),
	}
}
