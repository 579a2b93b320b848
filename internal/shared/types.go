package shared

// Task type names for the background worker.
const (
	TypeProbeProviderHealth = "provider:probe_health"
	TypeSweepStalePayments  = "payment:sweep_stale"
)

// Queue names. Payment work is isolated from future queues so a
// backlog elsewhere never delays reconciliation.
const (
	QueueDefault = "default"
	QueuePayment = "payment"
)

// ProbeProviderHealthPayload is empty on purpose; the probe always
// covers every registered provider.
type ProbeProviderHealthPayload struct{}

// SweepStalePaymentsPayload bounds one sweep run.
type SweepStalePaymentsPayload struct {
	Limit int `json:"limit"`
}
