package chain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer produces and checks HMAC-SHA256 signatures with a single
// process-wide secret loaded once at startup. An empty secret puts the
// signer in unsigned mode: Sign returns nil and Verify always fails.
// Callers must treat a nil signature as "unsigned", not as an error.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer. secret may be empty (unsigned mode).
func NewSigner(secret string) *Signer {
	if secret == "" {
		return &Signer{}
	}
	return &Signer{secret: []byte(secret)}
}

// Enabled reports whether a signing secret is configured.
func (s *Signer) Enabled() bool {
	return len(s.secret) > 0
}

// Sign returns the hex HMAC-SHA256 of text, or nil in unsigned mode.
func (s *Signer) Sign(text string) *string {
	if !s.Enabled() {
		return nil
	}
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(text))
	sig := hex.EncodeToString(mac.Sum(nil))
	return &sig
}

// Verify recomputes the signature for text and compares it in constant
// time. Returns false in unsigned mode: the absence of a secret cannot
// verify the presence of a proof.
func (s *Signer) Verify(text, signature string) bool {
	expected := s.Sign(text)
	if expected == nil {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(*expected))
}
