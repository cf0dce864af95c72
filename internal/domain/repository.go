package domain

import (
	"context"
	"time"
)

// EventRepository provides access to the append-only audit event store.
// Events are keyed by (tenant_id, seq); range queries select on created_at
// with seq as the tie-breaker. The store never updates or deletes events.
type EventRepository interface {
	// Insert appends a fully-chained event. The caller is responsible for
	// Seq, PrevHash, Hash, and Signature; Insert only persists.
	Insert(ctx context.Context, e *AuditEvent) error

	// ListRange returns events for a tenant with created_at in the given
	// inclusive bounds (nil bounds are open), ordered by seq ascending,
	// starting after afterSeq, at most limit rows. Used by the verifier to
	// stream a window in pages without materializing it.
	ListRange(ctx context.Context, tenantID string, start, end *time.Time, afterSeq int64, limit int) ([]AuditEvent, error)

	// LastBefore returns the most recent event for the tenant with
	// created_at strictly before t, or nil if the tenant has no history
	// before t.
	LastBefore(ctx context.Context, tenantID string, t time.Time) (*AuditEvent, error)

	// Last returns the tenant's newest event, or nil if the tenant has no
	// events. Used by ingestion to extend the chain tail.
	Last(ctx context.Context, tenantID string) (*AuditEvent, error)

	// List returns a page of events plus the total count for the filter.
	List(ctx context.Context, filter EventFilter) ([]AuditEvent, int64, error)

	// ListTenants returns every tenant ID present in the store.
	ListTenants(ctx context.Context) ([]string, error)
}

// AttestationRepository persists attestation records. Attestations are
// append-only: create, list, and get only.
type AttestationRepository interface {
	Create(ctx context.Context, a *Attestation) (*Attestation, error)

	// GetByWindow returns the attestation for an exact (tenant, start, end)
	// window, or nil when none exists. Used for scheduler idempotency.
	GetByWindow(ctx context.Context, tenantID string, start, end *time.Time) (*Attestation, error)

	GetByID(ctx context.Context, id string) (*Attestation, error)
	List(ctx context.Context, filter AttestationFilter) ([]Attestation, int64, error)
}
