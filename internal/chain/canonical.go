// Package chain implements the tamper-evidence core: canonical event
// serialization, SHA-256 hash chaining, HMAC signing, and chain
// verification with issue classification.
package chain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"auditchain/internal/domain"
)

// CanonicalEvent serializes an event's semantic fields (everything except
// Hash and Signature) into a stable, line-oriented byte representation used
// as hashing input. The field order is fixed; optional fields encode as an
// explicit null so that undefined-vs-null can never produce two different
// payloads for logically identical events. Values are JSON-encoded, which
// keeps multi-line strings on a single line and gives maps a sorted,
// deterministic key order.
func CanonicalEvent(e *domain.AuditEvent) []byte {
	var b strings.Builder
	writeField(&b, "tenantId", e.TenantID)
	writeField(&b, "id", e.ID)
	writeField(&b, "seq", e.Seq)
	writeField(&b, "createdAt", canonicalTime(e.CreatedAt))
	writeOptStr(&b, "userId", e.UserID)
	writeOptStr(&b, "userEmail", e.UserEmail)
	writeField(&b, "userRoles", e.UserRoles)
	writeOptStr(&b, "ipAddress", e.IPAddress)
	writeOptStr(&b, "userAgent", e.UserAgent)
	writeOptStr(&b, "requestId", e.RequestID)
	writeOptStr(&b, "correlationId", e.CorrelationID)
	writeOptStr(&b, "traceId", e.TraceID)
	writeField(&b, "eventType", e.EventType)
	writeField(&b, "severity", e.Severity)
	writeField(&b, "action", e.Action)
	writeOptStr(&b, "description", e.Description)
	writeOptStr(&b, "outcome", e.Outcome)
	writeOptStr(&b, "resourceType", e.ResourceType)
	writeOptStr(&b, "resourceId", e.ResourceID)
	writeField(&b, "metadata", e.Metadata)
	writeField(&b, "compliance", e.Compliance)
	if e.RiskScore != nil {
		writeField(&b, "riskScore", *e.RiskScore)
	} else {
		writeNull(&b, "riskScore")
	}
	writeField(&b, "riskFactors", e.RiskFactors)
	writeOptStr(&b, "prevHash", e.PrevHash)
	return []byte(b.String())
}

// CanonicalAttestation serializes an attestation's asserted fields into the
// canonical string that gets signed. Deliberately line-oriented with a fixed
// key order rather than JSON, so the signed bytes cannot drift with a
// serialization library.
func CanonicalAttestation(a *domain.Attestation) string {
	var b strings.Builder
	writeField(&b, "tenantId", a.TenantID)
	writeOptTime(&b, "start", a.Start)
	writeOptTime(&b, "end", a.End)
	writeOptStr(&b, "anchorPrevHash", a.AnchorPrevHash)
	writeOptStr(&b, "lastHash", a.LastHash)
	writeField(&b, "ok", a.OK)
	writeField(&b, "count", a.Count)
	writeField(&b, "generatedAt", canonicalTime(a.GeneratedAt))
	writeField(&b, "version", a.Version)
	writeField(&b, "algorithm", a.Algorithm)
	return b.String()
}

// canonicalTime normalizes a timestamp to UTC RFC3339Nano.
func canonicalTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func writeField(b *strings.Builder, key string, v interface{}) {
	// json.Marshal cannot fail for the field types used here (strings,
	// numbers, bools, string slices, string-keyed maps of JSON values).
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%q", fmt.Sprint(v)))
	}
	b.WriteString(key)
	b.WriteByte('=')
	b.Write(data)
	b.WriteByte('\n')
}

func writeOptStr(b *strings.Builder, key string, v *string) {
	if v == nil {
		writeNull(b, key)
		return
	}
	writeField(b, key, *v)
}

func writeOptTime(b *strings.Builder, key string, t *time.Time) {
	if t == nil {
		writeNull(b, key)
		return
	}
	writeField(b, key, canonicalTime(*t))
}

func writeNull(b *strings.Builder, key string) {
	b.WriteString(key)
	b.WriteString("=null\n")
}
