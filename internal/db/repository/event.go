package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"auditchain/internal/domain"
)

var _ domain.EventRepository = (*EventRepo)(nil)

const eventColumns = `id, tenant_id, seq, created_at,
	user_id, user_email, user_roles, ip_address, user_agent, request_id, correlation_id, trace_id,
	event_type, severity, action, description, outcome, resource_type, resource_id,
	metadata, compliance, risk_score, risk_factors,
	prev_hash, hash, signature`

// EventRepo stores audit events in SQLite. The table is append-only: the
// repo exposes no update or delete, which is the invariant the chain
// verifier depends on.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo creates a new EventRepo.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Insert appends a fully-chained event.
func (r *EventRepo) Insert(ctx context.Context, e *domain.AuditEvent) error {
	if e == nil {
		return domain.ErrValidation("event is required")
	}

	roles, err := jsonCol(e.UserRoles)
	if err != nil {
		return err
	}
	metadata, err := jsonCol(e.Metadata)
	if err != nil {
		return err
	}
	compliance, err := jsonCol(e.Compliance)
	if err != nil {
		return err
	}
	riskFactors, err := jsonCol(e.RiskFactors)
	if err != nil {
		return err
	}

	var riskScore interface{}
	if e.RiskScore != nil {
		riskScore = *e.RiskScore
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.TenantID, e.Seq, e.CreatedAt.UTC(),
		nullStr(e.UserID), nullStr(e.UserEmail), roles, nullStr(e.IPAddress), nullStr(e.UserAgent),
		nullStr(e.RequestID), nullStr(e.CorrelationID), nullStr(e.TraceID),
		e.EventType, e.Severity, e.Action, nullStr(e.Description), nullStr(e.Outcome),
		nullStr(e.ResourceType), nullStr(e.ResourceID),
		metadata, compliance, riskScore, riskFactors,
		nullStr(e.PrevHash), e.Hash, nullStr(e.Signature),
	)
	return mapDBError(err)
}

// ListRange returns a page of events for the verifier's chain walk, ordered
// by seq ascending, created_at within the inclusive bounds, seq > afterSeq.
func (r *EventRepo) ListRange(ctx context.Context, tenantID string, start, end *time.Time, afterSeq int64, limit int) ([]domain.AuditEvent, error) {
	where, args := rangeWhere(tenantID, start, end)
	where = append(where, "seq > ?")
	args = append(args, afterSeq, limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM audit_events
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY seq ASC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	return scanEvents(rows)
}

// LastBefore returns the most recent event with created_at strictly before t,
// or nil when the tenant has no history before t.
func (r *EventRepo) LastBefore(ctx context.Context, tenantID string, t time.Time) (*domain.AuditEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM audit_events
		WHERE tenant_id = ? AND created_at < ?
		ORDER BY seq DESC
		LIMIT 1
	`, tenantID, t.UTC())

	e, err := scanEvent(row)
	if err != nil {
		if _, ok := err.(*domain.NotFoundError); ok {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// Last returns the tenant's newest event, or nil for an empty chain.
func (r *EventRepo) Last(ctx context.Context, tenantID string) (*domain.AuditEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM audit_events
		WHERE tenant_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, tenantID)

	e, err := scanEvent(row)
	if err != nil {
		if _, ok := err.(*domain.NotFoundError); ok {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// List returns a page of events plus the total count for the filter.
func (r *EventRepo) List(ctx context.Context, filter domain.EventFilter) ([]domain.AuditEvent, int64, error) {
	if filter.TenantID == "" {
		return nil, 0, domain.ErrValidation("tenantId is required")
	}

	where, args := rangeWhere(filter.TenantID, filter.Start, filter.End)
	clause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_events WHERE `+clause, args...,
	).Scan(&total); err != nil {
		return nil, 0, mapDBError(err)
	}

	args = append(args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM audit_events
		WHERE `+clause+`
		ORDER BY seq ASC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListTenants returns every tenant ID present in the store.
func (r *EventRepo) ListTenants(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT tenant_id FROM audit_events ORDER BY tenant_id
	`)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close() //nolint:errcheck

	var tenants []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func rangeWhere(tenantID string, start, end *time.Time) ([]string, []interface{}) {
	where := []string{"tenant_id = ?"}
	args := []interface{}{tenantID}
	if start != nil {
		where = append(where, "created_at >= ?")
		args = append(args, start.UTC())
	}
	if end != nil {
		where = append(where, "created_at <= ?")
		args = append(args, end.UTC())
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.AuditEvent, error) {
	var (
		e           domain.AuditEvent
		createdAt   time.Time
		userID      sql.NullString
		userEmail   sql.NullString
		roles       sql.NullString
		ipAddress   sql.NullString
		userAgent   sql.NullString
		requestID   sql.NullString
		correlation sql.NullString
		traceID     sql.NullString
		description sql.NullString
		outcome     sql.NullString
		resType     sql.NullString
		resID       sql.NullString
		metadata    sql.NullString
		compliance  sql.NullString
		riskScore   sql.NullFloat64
		riskFactors sql.NullString
		prevHash    sql.NullString
		signature   sql.NullString
	)

	err := row.Scan(
		&e.ID, &e.TenantID, &e.Seq, &createdAt,
		&userID, &userEmail, &roles, &ipAddress, &userAgent, &requestID, &correlation, &traceID,
		&e.EventType, &e.Severity, &e.Action, &description, &outcome, &resType, &resID,
		&metadata, &compliance, &riskScore, &riskFactors,
		&prevHash, &e.Hash, &signature,
	)
	if err != nil {
		return nil, mapDBError(err)
	}

	e.CreatedAt = createdAt.UTC()
	e.UserID = strPtr(userID)
	e.UserEmail = strPtr(userEmail)
	e.IPAddress = strPtr(ipAddress)
	e.UserAgent = strPtr(userAgent)
	e.RequestID = strPtr(requestID)
	e.CorrelationID = strPtr(correlation)
	e.TraceID = strPtr(traceID)
	e.Description = strPtr(description)
	e.Outcome = strPtr(outcome)
	e.ResourceType = strPtr(resType)
	e.ResourceID = strPtr(resID)
	e.PrevHash = strPtr(prevHash)
	e.Signature = strPtr(signature)
	if riskScore.Valid {
		v := riskScore.Float64
		e.RiskScore = &v
	}

	if err := scanJSON(roles, &e.UserRoles); err != nil {
		return nil, err
	}
	if err := scanJSON(metadata, &e.Metadata); err != nil {
		return nil, err
	}
	if err := scanJSON(compliance, &e.Compliance); err != nil {
		return nil, err
	}
	if err := scanJSON(riskFactors, &e.RiskFactors); err != nil {
		return nil, err
	}

	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]domain.AuditEvent, error) {
	var events []domain.AuditEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
