package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"auditchain/internal/domain"
)

var _ domain.AttestationRepository = (*AttestationRepo)(nil)

const attestationColumns = `id, tenant_id, range_start, range_end, anchor_prev_hash, last_hash,
	ok, event_count, version, algorithm, signature, generated_at, created_at`

// AttestationRepo stores attestation records in SQLite. Attestations are
// append-only: no update or delete.
type AttestationRepo struct {
	db *sql.DB
}

// NewAttestationRepo creates a new AttestationRepo.
func NewAttestationRepo(db *sql.DB) *AttestationRepo {
	return &AttestationRepo{db: db}
}

// Create inserts a new attestation.
func (r *AttestationRepo) Create(ctx context.Context, a *domain.Attestation) (*domain.Attestation, error) {
	if a == nil {
		return nil, domain.ErrValidation("attestation is required")
	}
	if a.ID == "" {
		a.ID = domain.NewID()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attestations (id, tenant_id, range_start, range_end, anchor_prev_hash, last_hash,
			ok, event_count, version, algorithm, signature, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID, a.TenantID, nullTime(a.Start), nullTime(a.End),
		nullStr(a.AnchorPrevHash), nullStr(a.LastHash),
		boolToInt(a.OK), a.Count, a.Version, a.Algorithm,
		nullStr(a.Signature), a.GeneratedAt.UTC(),
	)
	if err != nil {
		return nil, mapDBError(err)
	}

	return r.GetByID(ctx, a.ID)
}

// GetByID returns an attestation by ID.
func (r *AttestationRepo) GetByID(ctx context.Context, id string) (*domain.Attestation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+attestationColumns+`
		FROM attestations WHERE id = ?
	`, id)
	return scanAttestation(row)
}

// GetByWindow returns the attestation for an exact (tenant, start, end)
// window, or nil when none exists.
func (r *AttestationRepo) GetByWindow(ctx context.Context, tenantID string, start, end *time.Time) (*domain.Attestation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+attestationColumns+`
		FROM attestations
		WHERE tenant_id = ?
		  AND range_start IS ?
		  AND range_end IS ?
	`, tenantID, nullTime(start), nullTime(end))

	a, err := scanAttestation(row)
	if err != nil {
		if _, ok := err.(*domain.NotFoundError); ok {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// List returns a filtered, paginated list of attestations, newest first.
func (r *AttestationRepo) List(ctx context.Context, filter domain.AttestationFilter) ([]domain.Attestation, int64, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.TenantID != nil {
		where = append(where, "tenant_id = ?")
		args = append(args, *filter.TenantID)
	}
	clause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attestations WHERE `+clause, args...,
	).Scan(&total); err != nil {
		return nil, 0, mapDBError(err)
	}

	args = append(args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+attestationColumns+`
		FROM attestations
		WHERE `+clause+`
		ORDER BY generated_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Attestation
	for rows.Next() {
		a, err := scanAttestation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

func scanAttestation(row rowScanner) (*domain.Attestation, error) {
	var (
		a           domain.Attestation
		start       sql.NullTime
		end         sql.NullTime
		anchor      sql.NullString
		lastHash    sql.NullString
		ok          int64
		signature   sql.NullString
		generatedAt time.Time
		createdAt   time.Time
	)

	err := row.Scan(
		&a.ID, &a.TenantID, &start, &end, &anchor, &lastHash,
		&ok, &a.Count, &a.Version, &a.Algorithm, &signature, &generatedAt, &createdAt,
	)
	if err != nil {
		return nil, mapDBError(err)
	}

	a.Start = timePtr(start)
	a.End = timePtr(end)
	a.AnchorPrevHash = strPtr(anchor)
	a.LastHash = strPtr(lastHash)
	a.OK = ok != 0
	a.Signature = strPtr(signature)
	a.GeneratedAt = generatedAt.UTC()
	a.CreatedAt = createdAt.UTC()

	return &a, nil
}
