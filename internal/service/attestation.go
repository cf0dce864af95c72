// Package service implements the audit chain application services:
// integrity verification, attestation generation and verification, event
// ingestion, and the daily attestation scheduler.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"auditchain/internal/chain"
	"auditchain/internal/domain"
)

// AttestationService provides chain verification and attestation operations.
type AttestationService struct {
	events       domain.EventRepository
	attestations domain.AttestationRepository
	verifier     *chain.Verifier
	signer       *chain.Signer
	notifier     domain.Notifier
	logger       *slog.Logger
	now          func() time.Time
}

// NewAttestationService creates a new AttestationService. notifier may be
// nil when no consumer is interested in new attestations.
func NewAttestationService(
	events domain.EventRepository,
	attestations domain.AttestationRepository,
	signer *chain.Signer,
	notifier domain.Notifier,
	logger *slog.Logger,
) *AttestationService {
	return &AttestationService{
		events:       events,
		attestations: attestations,
		verifier:     chain.NewVerifier(events, signer),
		signer:       signer,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// VerifyIntegrity walks the tenant's chain over [start, end] and reports
// every broken link, hash mismatch, and bad signature it finds. A report
// with OK=false is a successful diagnosis, not an operation failure.
func (s *AttestationService) VerifyIntegrity(ctx context.Context, tenantID string, start, end *time.Time) (*domain.IntegrityReport, error) {
	return s.verifier.Verify(ctx, tenantID, start, end)
}

// GenerateAttestation runs the verifier over the requested range and wraps
// the result in a signed, canonicalized summary. The returned attestation
// is not persisted; generation is a pure computation over fetched data.
func (s *AttestationService) GenerateAttestation(ctx context.Context, tenantID string, start, end *time.Time) (*domain.Attestation, error) {
	report, err := s.verifier.Verify(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}

	a := &domain.Attestation{
		TenantID:       tenantID,
		Start:          start,
		End:            end,
		AnchorPrevHash: report.AnchorPrevHash,
		LastHash:       report.LastHash,
		OK:             report.OK,
		Count:          report.Totals.Count,
		Version:        domain.AttestationVersion,
		Algorithm:      domain.AttestationAlgorithm,
		GeneratedAt:    s.now().UTC(),
	}
	a.Signature = s.signer.Sign(chain.CanonicalAttestation(a))

	return a, nil
}

// CreateManualAttestation generates and persists an attestation for the
// requested range, then notifies subscribers. Creation is idempotent on the
// exact (tenant, start, end) window: when an identical attestation already
// exists it is returned unchanged instead of duplicated.
func (s *AttestationService) CreateManualAttestation(ctx context.Context, tenantID string, start, end *time.Time) (*domain.Attestation, error) {
	if tenantID == "" {
		return nil, domain.ErrValidation("tenantId is required")
	}

	existing, err := s.attestations.GetByWindow(ctx, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("check existing attestation: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	a, err := s.GenerateAttestation(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}

	created, err := s.attestations.Create(ctx, a)
	if err != nil {
		// Lost a race with a concurrent creation for the same window.
		if _, ok := err.(*domain.ConflictError); ok {
			return s.attestations.GetByWindow(ctx, tenantID, start, end)
		}
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.AttestationCreated(ctx, created)
	}
	return created, nil
}

// ListAttestations returns a filtered, paginated list of attestations.
func (s *AttestationService) ListAttestations(ctx context.Context, filter domain.AttestationFilter) ([]domain.Attestation, int64, error) {
	return s.attestations.List(ctx, filter)
}

// GetAttestation returns an attestation by ID.
func (s *AttestationService) GetAttestation(ctx context.Context, id string) (*domain.Attestation, error) {
	return s.attestations.GetByID(ctx, id)
}

// VerifyAttestation runs the two independent checks on a previously issued
// attestation: that its signature is valid for its canonical string, and
// that a fresh chain walk over its exact window still produces the same
// lastHash and OK status. A valid signature with a mismatched chain means
// the underlying data changed since issuance.
func (s *AttestationService) VerifyAttestation(ctx context.Context, a *domain.Attestation) (*domain.AttestationCheck, error) {
	if a == nil {
		return nil, domain.ErrValidation("attestation is required")
	}

	check := &domain.AttestationCheck{}

	if a.Signature != nil {
		check.ValidSignature = s.signer.Verify(chain.CanonicalAttestation(a), *a.Signature)
	}

	report, err := s.verifier.Verify(ctx, a.TenantID, a.Start, a.End)
	if err != nil {
		return nil, err
	}
	check.MatchesCurrentChain = report.OK == a.OK && strPtrEqual(report.LastHash, a.LastHash)

	return check, nil
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
