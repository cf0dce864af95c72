package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditchain/internal/chain"
	"auditchain/internal/domain"
	"auditchain/internal/testutil"
)

func TestEventService_AppendFirstEvent(t *testing.T) {
	t.Parallel()

	var inserted *domain.AuditEvent
	repo := &testutil.MockEventRepo{
		InsertFn: func(_ context.Context, e *domain.AuditEvent) error {
			inserted = e
			return nil
		},
	}

	svc := NewEventService(repo, chain.NewSigner("s3cret"))
	e, err := svc.Append(context.Background(), &domain.AuditEvent{
		TenantID:  "t1",
		EventType: "auth.login",
		Action:    "login",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), e.Seq)
	assert.Nil(t, e.PrevHash)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, domain.SeverityInfo, e.Severity, "severity defaults to info")
	assert.Equal(t, chain.EventHash(e), e.Hash)
	require.NotNil(t, e.Signature)
	assert.Same(t, e, inserted)
}

func TestEventService_AppendChainsOntoTail(t *testing.T) {
	t.Parallel()

	tail := domain.AuditEvent{
		ID:       "evt-0",
		TenantID: "t1",
		Seq:      4,
		Hash:     "aaaa",
	}
	repo := &testutil.MockEventRepo{
		LastFn: func(_ context.Context, tenantID string) (*domain.AuditEvent, error) {
			return &tail, nil
		},
	}

	svc := NewEventService(repo, chain.NewSigner(""))
	e, err := svc.Append(context.Background(), &domain.AuditEvent{
		TenantID:  "t1",
		EventType: "config.change",
		Severity:  domain.SeverityWarning,
		Action:    "update",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), e.Seq)
	require.NotNil(t, e.PrevHash)
	assert.Equal(t, "aaaa", *e.PrevHash)
	assert.Equal(t, domain.SeverityWarning, e.Severity)
	assert.Nil(t, e.Signature, "unsigned mode produces no signature")
}

func TestEventService_AppendValidation(t *testing.T) {
	t.Parallel()

	svc := NewEventService(&testutil.MockEventRepo{}, chain.NewSigner(""))

	tests := []struct {
		name  string
		event *domain.AuditEvent
	}{
		{name: "nil event", event: nil},
		{name: "missing tenant", event: &domain.AuditEvent{EventType: "x", Action: "y"}},
		{name: "missing event type", event: &domain.AuditEvent{TenantID: "t1", Action: "y"}},
		{name: "missing action", event: &domain.AuditEvent{TenantID: "t1", EventType: "x"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Append(context.Background(), tt.event)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestEventService_AppendSetsUTCTimestamp(t *testing.T) {
	t.Parallel()

	repo := &testutil.MockEventRepo{}
	svc := NewEventService(repo, chain.NewSigner(""))
	svc.now = func() time.Time {
		return time.Date(2026, 8, 15, 1, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	}

	e, err := svc.Append(context.Background(), &domain.AuditEvent{
		TenantID:  "t1",
		EventType: "auth.login",
		Action:    "login",
	})
	require.NoError(t, err)

	assert.Equal(t, time.UTC, e.CreatedAt.Location())
	assert.Equal(t, 23, e.CreatedAt.Hour())
	assert.Equal(t, 14, e.CreatedAt.Day())
}
