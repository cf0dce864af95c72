package domain

import "context"

// Notifier publishes newly created attestations to interested consumers.
// The concrete transport (in-process fan-out, message queue) is an
// implementation choice; publish failures must not fail the operation that
// produced the attestation.
type Notifier interface {
	AttestationCreated(ctx context.Context, a *Attestation)
}
