package api

import (
	"time"

	"auditchain/internal/domain"
)

// Attestation is the API representation of a persisted attestation.
type Attestation struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenantId"`
	Start          *time.Time `json:"start"`
	End            *time.Time `json:"end"`
	AnchorPrevHash *string    `json:"anchorPrevHash"`
	LastHash       *string    `json:"lastHash"`
	OK             bool       `json:"ok"`
	Count          int64      `json:"count"`
	Version        string     `json:"version"`
	Algorithm      string     `json:"algorithm"`
	Signature      *string    `json:"signature"`
	GeneratedAt    time.Time  `json:"generatedAt"`
}

// Event is the API representation of a chained audit event.
type Event struct {
	ID            string                 `json:"id"`
	TenantID      string                 `json:"tenantId"`
	Seq           int64                  `json:"seq"`
	CreatedAt     time.Time              `json:"createdAt"`
	UserID        *string                `json:"userId"`
	UserEmail     *string                `json:"userEmail"`
	UserRoles     []string               `json:"userRoles"`
	IPAddress     *string                `json:"ipAddress"`
	UserAgent     *string                `json:"userAgent"`
	RequestID     *string                `json:"requestId"`
	CorrelationID *string                `json:"correlationId"`
	TraceID       *string                `json:"traceId"`
	EventType     string                 `json:"eventType"`
	Severity      string                 `json:"severity"`
	Action        string                 `json:"action"`
	Description   *string                `json:"description"`
	Outcome       *string                `json:"outcome"`
	ResourceType  *string                `json:"resourceType"`
	ResourceID    *string                `json:"resourceId"`
	Metadata      map[string]interface{} `json:"metadata"`
	Compliance    map[string]interface{} `json:"compliance"`
	RiskScore     *float64               `json:"riskScore"`
	RiskFactors   []string               `json:"riskFactors"`
	PrevHash      *string                `json:"prevHash"`
	Hash          string                 `json:"hash"`
	Signature     *string                `json:"signature"`
}

func attestationToAPI(a *domain.Attestation) Attestation {
	return Attestation{
		ID:             a.ID,
		TenantID:       a.TenantID,
		Start:          a.Start,
		End:            a.End,
		AnchorPrevHash: a.AnchorPrevHash,
		LastHash:       a.LastHash,
		OK:             a.OK,
		Count:          a.Count,
		Version:        a.Version,
		Algorithm:      a.Algorithm,
		Signature:      a.Signature,
		GeneratedAt:    a.GeneratedAt,
	}
}

func eventToAPI(e *domain.AuditEvent) Event {
	return Event{
		ID:            e.ID,
		TenantID:      e.TenantID,
		Seq:           e.Seq,
		CreatedAt:     e.CreatedAt,
		UserID:        e.UserID,
		UserEmail:     e.UserEmail,
		UserRoles:     e.UserRoles,
		IPAddress:     e.IPAddress,
		UserAgent:     e.UserAgent,
		RequestID:     e.RequestID,
		CorrelationID: e.CorrelationID,
		TraceID:       e.TraceID,
		EventType:     e.EventType,
		Severity:      e.Severity,
		Action:        e.Action,
		Description:   e.Description,
		Outcome:       e.Outcome,
		ResourceType:  e.ResourceType,
		ResourceID:    e.ResourceID,
		Metadata:      e.Metadata,
		Compliance:    e.Compliance,
		RiskScore:     e.RiskScore,
		RiskFactors:   e.RiskFactors,
		PrevHash:      e.PrevHash,
		Hash:          e.Hash,
		Signature:     e.Signature,
	}
}
