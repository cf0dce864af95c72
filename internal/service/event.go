package service

import (
	"context"
	"time"

	"auditchain/internal/chain"
	"auditchain/internal/domain"
)

// EventService appends events to a tenant's hash chain and serves range
// queries. Append assumes a single writer (the SQLite write pool is sized
// to one connection), which keeps the read-tail-then-insert sequence
// race-free without explicit locking.
type EventService struct {
	events domain.EventRepository
	signer *chain.Signer
	now    func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(events domain.EventRepository, signer *chain.Signer) *EventService {
	return &EventService{events: events, signer: signer, now: time.Now}
}

// Append chains and persists a new event. The caller provides the semantic
// fields; Append assigns ID, Seq, CreatedAt, PrevHash, Hash, and Signature.
func (s *EventService) Append(ctx context.Context, e *domain.AuditEvent) (*domain.AuditEvent, error) {
	if e == nil {
		return nil, domain.ErrValidation("event is required")
	}
	if e.TenantID == "" {
		return nil, domain.ErrValidation("tenantId is required")
	}
	if e.EventType == "" || e.Action == "" {
		return nil, domain.ErrValidation("eventType and action are required")
	}
	if e.Severity == "" {
		e.Severity = domain.SeverityInfo
	}

	tail, err := s.events.Last(ctx, e.TenantID)
	if err != nil {
		return nil, err
	}

	e.ID = domain.NewID()
	e.CreatedAt = s.now().UTC()
	if tail != nil {
		e.Seq = tail.Seq + 1
		h := tail.Hash
		e.PrevHash = &h
	} else {
		e.Seq = 0
		e.PrevHash = nil
	}

	e.Hash = chain.EventHash(e)
	e.Signature = s.signer.Sign(e.Hash)

	if err := s.events.Insert(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns a page of a tenant's events in chain order.
func (s *EventService) List(ctx context.Context, filter domain.EventFilter) ([]domain.AuditEvent, int64, error) {
	return s.events.List(ctx, filter)
}
