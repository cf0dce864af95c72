// Package testutil provides hand-written mocks for repository and port
// interfaces used across service tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"auditchain/internal/domain"
)

// MockEventRepo implements domain.EventRepository with per-method hooks.
// Unset hooks return zero values.
type MockEventRepo struct {
	InsertFn      func(ctx context.Context, e *domain.AuditEvent) error
	ListRangeFn   func(ctx context.Context, tenantID string, start, end *time.Time, afterSeq int64, limit int) ([]domain.AuditEvent, error)
	LastBeforeFn  func(ctx context.Context, tenantID string, t time.Time) (*domain.AuditEvent, error)
	LastFn        func(ctx context.Context, tenantID string) (*domain.AuditEvent, error)
	ListFn        func(ctx context.Context, filter domain.EventFilter) ([]domain.AuditEvent, int64, error)
	ListTenantsFn func(ctx context.Context) ([]string, error)
}

var _ domain.EventRepository = (*MockEventRepo)(nil)

func (m *MockEventRepo) Insert(ctx context.Context, e *domain.AuditEvent) error {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, e)
	}
	return nil
}

func (m *MockEventRepo) ListRange(ctx context.Context, tenantID string, start, end *time.Time, afterSeq int64, limit int) ([]domain.AuditEvent, error) {
	if m.ListRangeFn != nil {
		return m.ListRangeFn(ctx, tenantID, start, end, afterSeq, limit)
	}
	return nil, nil
}

func (m *MockEventRepo) LastBefore(ctx context.Context, tenantID string, t time.Time) (*domain.AuditEvent, error) {
	if m.LastBeforeFn != nil {
		return m.LastBeforeFn(ctx, tenantID, t)
	}
	return nil, nil
}

func (m *MockEventRepo) Last(ctx context.Context, tenantID string) (*domain.AuditEvent, error) {
	if m.LastFn != nil {
		return m.LastFn(ctx, tenantID)
	}
	return nil, nil
}

func (m *MockEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]domain.AuditEvent, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *MockEventRepo) ListTenants(ctx context.Context) ([]string, error) {
	if m.ListTenantsFn != nil {
		return m.ListTenantsFn(ctx)
	}
	return nil, nil
}

// MockAttestationRepo implements domain.AttestationRepository with
// per-method hooks.
type MockAttestationRepo struct {
	CreateFn      func(ctx context.Context, a *domain.Attestation) (*domain.Attestation, error)
	GetByWindowFn func(ctx context.Context, tenantID string, start, end *time.Time) (*domain.Attestation, error)
	GetByIDFn     func(ctx context.Context, id string) (*domain.Attestation, error)
	ListFn        func(ctx context.Context, filter domain.AttestationFilter) ([]domain.Attestation, int64, error)
}

var _ domain.AttestationRepository = (*MockAttestationRepo)(nil)

func (m *MockAttestationRepo) Create(ctx context.Context, a *domain.Attestation) (*domain.Attestation, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return a, nil
}

func (m *MockAttestationRepo) GetByWindow(ctx context.Context, tenantID string, start, end *time.Time) (*domain.Attestation, error) {
	if m.GetByWindowFn != nil {
		return m.GetByWindowFn(ctx, tenantID, start, end)
	}
	return nil, nil
}

func (m *MockAttestationRepo) GetByID(ctx context.Context, id string) (*domain.Attestation, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound("attestation %s not found", id)
}

func (m *MockAttestationRepo) List(ctx context.Context, filter domain.AttestationFilter) ([]domain.Attestation, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}
	return nil, 0, nil
}

// MockNotifier records published attestations.
type MockNotifier struct {
	mu        sync.Mutex
	Published []*domain.Attestation
}

var _ domain.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) AttestationCreated(_ context.Context, a *domain.Attestation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, a)
}

// Count returns how many attestations were published.
func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Published)
}
