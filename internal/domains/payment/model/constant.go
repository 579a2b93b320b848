package model

// =====================================================
// PAYMENT PROVIDERS
// =====================================================
const (
	ProviderDaimo = "daimo"
	ProviderLumen = "lumen"
)

var ValidProviders = []string{
	ProviderDaimo,
	ProviderLumen,
}

// =====================================================
// CANONICAL PAYMENT STATUS
// =====================================================
// The canonical status enum exposed to API callers. Provider-native
// statuses are mapped onto this set during normalization.
const (
	StatusUnpaid    = "unpaid"
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusBounced   = "bounced"
)

var ValidStatuses = []string{
	StatusUnpaid,
	StatusStarted,
	StatusCompleted,
	StatusBounced,
}

// statusRank orders statuses for forward-only transitions.
// completed and bounced share the terminal rank: once a payment is
// terminal no webhook or refresh may move it anywhere else.
var statusRank = map[string]int{
	StatusUnpaid:    0,
	StatusStarted:   1,
	StatusCompleted: 2,
	StatusBounced:   2,
}

// IsValidStatus reports whether s is a canonical status value.
func IsValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// IsTerminalStatus reports whether s is completed or bounced.
func IsTerminalStatus(s string) bool {
	return s == StatusCompleted || s == StatusBounced
}

// CanTransition reports whether a status write from -> to is allowed.
// Duplicate writes of the same status are allowed (they collapse to
// no-ops at the persistence layer); rank regressions are not.
func CanTransition(from, to string) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	if from == to {
		return true
	}
	if IsTerminalStatus(from) {
		return false
	}
	return toRank >= fromRank
}

// =====================================================
// NETWORK CLASSIFICATION
// =====================================================
// Daimo serves EVM networks where the token is identified by its
// contract address. Lumen serves Stellar-style networks where the
// token is identified by symbol first.
var DaimoChainIDs = []int64{1, 10, 137, 480, 8453, 42161}

var LumenChainIDs = []int64{10001, 10002}

// IsDaimoChain reports whether chainID belongs to the contract-first set.
func IsDaimoChain(chainID int64) bool {
	for _, id := range DaimoChainIDs {
		if id == chainID {
			return true
		}
	}
	return false
}

// IsLumenChain reports whether chainID belongs to the symbol-first set.
func IsLumenChain(chainID int64) bool {
	for _, id := range LumenChainIDs {
		if id == chainID {
			return true
		}
	}
	return false
}

// =====================================================
// INTERNAL ERROR CODES
// =====================================================
const (
	// Routing errors
	ErrCodeValidation         = "PAY001"
	ErrCodeUnsupportedNetwork = "PAY002"
	ErrCodePaymentNotFound    = "PAY003"
	ErrCodeProviderError      = "PAY004"
	ErrCodeNotSupported       = "PAY005"

	// Webhook errors
	ErrCodeWebhookAuth    = "PAY006"
	ErrCodeWebhookPayload = "PAY007"

	// System errors
	ErrCodeInternalError = "PAY008"
)

// =====================================================
// DEFAULTS
// =====================================================
const (
	// Default display values applied during sanitization
	DefaultIntent      = "Payment"
	DefaultCurrency    = "USD"
	DefaultAmountUnits = "0.00"

	// Staleness window for started payments (minutes)
	DefaultStaleWindowMinutes = 15

	// Bounded timeout for a single health probe
	HealthProbeTimeoutSeconds = 5
)
