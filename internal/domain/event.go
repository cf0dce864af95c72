package domain

import "time"

// Event severity levels.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Event outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
)

// AuditEvent is a single record in a tenant's hash chain. Events are
// append-only and immutable once written: every semantic field participates
// in the canonical payload whose SHA-256 digest is stored in Hash, and
// PrevHash links the event to its predecessor in (Seq) order for the same
// tenant.
//
// Seq is a strictly monotonic per-tenant sequence number and is the true
// ordering key of the chain. CreatedAt is retained for range queries and
// display; two events may share a timestamp but never a sequence number.
type AuditEvent struct {
	ID        string
	TenantID  string
	Seq       int64
	CreatedAt time.Time

	// Actor / request context.
	UserID        *string
	UserEmail     *string
	UserRoles     []string
	IPAddress     *string
	UserAgent     *string
	RequestID     *string
	CorrelationID *string
	TraceID       *string

	// Semantics.
	EventType    string
	Severity     string
	Action       string
	Description  *string
	Outcome      *string
	ResourceType *string
	ResourceID   *string
	Metadata     map[string]interface{}
	Compliance   map[string]interface{}
	RiskScore    *float64
	RiskFactors  []string

	// Chain fields. PrevHash is nil for the first event of a tenant.
	// Signature is nil when the event was written in unsigned mode.
	PrevHash  *string
	Hash      string
	Signature *string
}

// EventFilter holds range parameters for querying a tenant's events.
// Nil bounds leave that side of the range open. Bounds are inclusive.
type EventFilter struct {
	TenantID string
	Start    *time.Time
	End      *time.Time
	Page     PageRequest
}
