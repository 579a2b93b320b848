package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// MOCK PROVIDER FOR TESTING
// =====================================================
// Configurable in-memory adapter. Tests flip the Fail* switches and
// inspect the call counters.

type Provider struct {
	mu sync.Mutex

	ProviderName     string
	Chains           []int64
	Prefix           string
	ProviderPriority int

	Healthy        bool
	FailCreate     bool
	FailGet        bool
	ValidateErrors []string

	// Payments served by GetPaymentByID / GetPaymentByExternalID
	Payments map[string]*model.ProviderPayment

	CreateCalls   int
	GetByIDCalls  int
	GetByExtCalls int
	HealthCalls   int
	ValidateCalls int
}

func NewProvider(name string, chains []int64, prefix string, priority int) *Provider {
	return &Provider{
		ProviderName:     name,
		Chains:           chains,
		Prefix:           prefix,
		ProviderPriority: priority,
		Healthy:          true,
		Payments:         make(map[string]*model.ProviderPayment),
	}
}

func (m *Provider) Name() string             { return m.ProviderName }
func (m *Provider) SupportedChains() []int64 { return m.Chains }
func (m *Provider) Priority() int            { return m.ProviderPriority }
func (m *Provider) IDPrefix() string         { return m.Prefix }

func (m *Provider) CreatePayment(ctx context.Context, req model.CanonicalPaymentRequest) (*model.ProviderPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++

	if m.FailCreate {
		return nil, model.NewProviderError(m.ProviderName, "mock create failed", nil)
	}

	id := fmt.Sprintf("%smock-%d", m.Prefix, m.CreateCalls)
	payment := &model.ProviderPayment{
		Provider:   m.ProviderName,
		ID:         id,
		Status:     "payment_unpaid",
		CreatedAt:  time.Now().UTC(),
		URL:        fmt.Sprintf("https://pay.mock/%s", id),
		ExternalID: req.ExternalID,
		Display:    req.Display,
		Destination: model.Destination{
			ChainID: req.Destination.ChainID,
			// Providers are not trusted to echo addresses back; the
			// mock deliberately mangles them so router tests can
			// assert the canonical overwrite.
			DestinationAddress: "0xPROVIDER-ECHO",
			TokenSymbol:        req.Destination.TokenSymbol,
			TokenAddress:       "0xPROVIDER-TOKEN",
			AmountUnits:        req.Destination.AmountUnits,
		},
		Metadata: req.Metadata,
		Raw:      map[string]interface{}{"id": id, "mock": true},
	}
	m.Payments[id] = payment
	return payment, nil
}

func (m *Provider) GetPaymentByID(ctx context.Context, id string) (*model.ProviderPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetByIDCalls++

	if m.FailGet {
		return nil, model.NewProviderError(m.ProviderName, "mock get failed", nil)
	}
	if p, ok := m.Payments[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("mock: %w", model.ErrPaymentNotFound)
}

func (m *Provider) GetPaymentByExternalID(ctx context.Context, externalID string) (*model.ProviderPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetByExtCalls++

	if m.FailGet {
		return nil, model.NewProviderError(m.ProviderName, "mock get failed", nil)
	}
	for _, p := range m.Payments {
		if p.ExternalID == externalID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("mock: %w", model.ErrPaymentNotFound)
}

func (m *Provider) IsHealthy(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HealthCalls++
	return m.Healthy
}

func (m *Provider) Validate(req model.CanonicalPaymentRequest) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidateCalls++
	return m.ValidateErrors
}
