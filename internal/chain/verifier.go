package chain

import (
	"context"
	"fmt"
	"time"

	"auditchain/internal/domain"
)

// defaultBatchSize is how many events the verifier fetches per page while
// walking a window. Large windows stream through in pages instead of being
// materialized as one slice.
const defaultBatchSize = 500

// Verifier walks an ordered window of a tenant's events and classifies
// chain deviations. Verification is read-only over an append-only store, so
// it is safe to run concurrently with new writes: those only extend the
// tail beyond the verified window.
type Verifier struct {
	events    domain.EventRepository
	signer    *Signer
	batchSize int
}

// NewVerifier creates a Verifier over the given event store.
func NewVerifier(events domain.EventRepository, signer *Signer) *Verifier {
	return &Verifier{events: events, signer: signer, batchSize: defaultBatchSize}
}

// Verify checks the hash chain for tenantID over [start, end] (inclusive,
// nil bounds open) and returns a report of everything it found. Integrity
// issues are findings inside the report, not errors; the returned error is
// reserved for precondition violations and store failures.
func (v *Verifier) Verify(ctx context.Context, tenantID string, start, end *time.Time) (*domain.IntegrityReport, error) {
	if tenantID == "" {
		return nil, domain.ErrValidation("tenantId is required")
	}

	report := &domain.IntegrityReport{
		TenantID: tenantID,
		Start:    start,
		End:      end,
		Issues:   []domain.IntegrityIssue{},
	}

	// Anchor the window into the historical chain: the hash of the last
	// event strictly before start, or nil when the tenant has no history
	// before the window.
	if start != nil {
		anchor, err := v.events.LastBefore(ctx, tenantID, *start)
		if err != nil {
			return nil, fmt.Errorf("resolve anchor: %w", err)
		}
		if anchor != nil {
			h := anchor.Hash
			report.AnchorPrevHash = &h
		}
	}

	previousHash := report.AnchorPrevHash
	afterSeq := int64(-1)

	for {
		batch, err := v.events.ListRange(ctx, tenantID, start, end, afterSeq, v.batchSize)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			e := &batch[i]
			v.checkEvent(report, e, previousHash)
			// Continue the walk from the event's stored hash even after a
			// detected break, so every subsequent fault is surfaced instead
			// of stopping at the first one.
			h := e.Hash
			previousHash = &h
			report.Totals.Count++
			afterSeq = e.Seq
		}

		if len(batch) < v.batchSize {
			break
		}
	}

	report.OK = len(report.Issues) == 0
	if previousHash != nil {
		report.LastHash = previousHash
	}
	return report, nil
}

// checkEvent classifies a single event against the expected chain state.
func (v *Verifier) checkEvent(report *domain.IntegrityReport, e *domain.AuditEvent, previousHash *string) {
	if !strPtrEqual(e.PrevHash, previousHash) {
		report.Totals.BrokenLinks++
		report.Issues = append(report.Issues, domain.IntegrityIssue{
			EventID:   e.ID,
			CreatedAt: e.CreatedAt,
			Issue:     domain.IssueBrokenLink,
		})
	}

	if EventHash(e) != e.Hash {
		report.Totals.BadHashes++
		report.Issues = append(report.Issues, domain.IntegrityIssue{
			EventID:   e.ID,
			CreatedAt: e.CreatedAt,
			Issue:     domain.IssueHashMismatch,
		})
	}

	if e.Signature != nil {
		switch {
		case !v.signer.Enabled():
			// A signature we cannot check is a finding: the event claims a
			// proof the deployment cannot validate.
			report.Totals.BadSignatures++
			report.Issues = append(report.Issues, domain.IntegrityIssue{
				EventID:   e.ID,
				CreatedAt: e.CreatedAt,
				Issue:     domain.IssueUnverifiableSignature,
			})
		case !v.signer.Verify(e.Hash, *e.Signature):
			report.Totals.BadSignatures++
			report.Issues = append(report.Issues, domain.IntegrityIssue{
				EventID:   e.ID,
				CreatedAt: e.CreatedAt,
				Issue:     domain.IssueBadSignature,
			})
		}
	}
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
