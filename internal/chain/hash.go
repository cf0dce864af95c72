package chain

import (
	"crypto/sha256"
	"encoding/hex"

	"auditchain/internal/domain"
)

// HashPayload returns the hex-encoded SHA-256 digest of a canonical payload.
func HashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// EventHash computes the chain hash of an event: the digest of its
// canonical payload. The event's own Hash and Signature fields do not
// participate.
func EventHash(e *domain.AuditEvent) string {
	return HashPayload(CanonicalEvent(e))
}
