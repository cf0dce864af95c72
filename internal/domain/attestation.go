package domain

import "time"

// Attestation parameters fixed by the current chain format.
const (
	AttestationVersion   = "1"
	AttestationAlgorithm = "HMAC-SHA256"
)

// Integrity issue classes. These are the three mutually distinguishable
// tamper classes the verifier reports.
const (
	IssueBrokenLink            = "broken prev_hash link"
	IssueHashMismatch          = "hash mismatch"
	IssueBadSignature          = "bad signature"
	IssueUnverifiableSignature = "unverifiable signature: no signing secret configured"
)

// IntegrityIssue is a single finding from a chain walk, tagged with the
// offending event.
type IntegrityIssue struct {
	EventID   string    `json:"eventId"`
	CreatedAt time.Time `json:"createdAt"`
	Issue     string    `json:"issue"`
}

// IntegrityTotals summarizes a chain walk.
type IntegrityTotals struct {
	Count         int64 `json:"count"`
	BrokenLinks   int64 `json:"brokenLinks"`
	BadHashes     int64 `json:"badHashes"`
	BadSignatures int64 `json:"badSignatures"`
}

// IntegrityReport is the result of verifying a tenant's chain over a time
// window. It is computed on demand and never persisted. OK distinguishes a
// clean chain from a diagnosed one; an unclean chain is a successful
// diagnosis, not an operation failure.
type IntegrityReport struct {
	TenantID       string           `json:"tenantId"`
	Start          *time.Time       `json:"start"`
	End            *time.Time       `json:"end"`
	AnchorPrevHash *string          `json:"anchorPrevHash"`
	LastHash       *string          `json:"lastHash"`
	OK             bool             `json:"ok"`
	Totals         IntegrityTotals  `json:"totals"`
	Issues         []IntegrityIssue `json:"issues"`
}

// Attestation is a signed, timestamped summary asserting the integrity
// status of a tenant's chain over a window. Attestations are append-only
// and immutable once created; Signature is nil when generated in unsigned
// mode.
type Attestation struct {
	ID             string
	TenantID       string
	Start          *time.Time
	End            *time.Time
	AnchorPrevHash *string
	LastHash       *string
	OK             bool
	Count          int64
	Version        string
	Algorithm      string
	Signature      *string
	GeneratedAt    time.Time
	CreatedAt      time.Time
}

// AttestationCheck is the result of verifying a stored attestation. The two
// checks are independent: a valid signature does not imply the live chain
// still matches what was attested.
type AttestationCheck struct {
	ValidSignature      bool `json:"validSignature"`
	MatchesCurrentChain bool `json:"matchesCurrentChain"`
}

// AttestationFilter holds filter parameters for listing attestations.
type AttestationFilter struct {
	TenantID *string
	Page     PageRequest
}
