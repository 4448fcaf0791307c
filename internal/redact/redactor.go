// Package redact scrubs personally identifiable substrings from text and
// produces content fingerprints for log correlation without retaining
// plaintext.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
)

const hashLength = 16

// Redactor substitutes detected PII with fixed placeholder tokens. It is
// stateless and safe for concurrent use.
type Redactor struct {
	patterns []Pattern
}

// New creates a redactor with the default pattern set.
func New() *Redactor {
	return &Redactor{patterns: DefaultPatterns()}
}

// Redact replaces every PII match with its class placeholder. Redact is
// idempotent: Redact(Redact(x)) == Redact(x).
func (r *Redactor) Redact(text string) string {
	for _, p := range r.patterns {
		text = p.Regex.ReplaceAllString(text, p.Replacement)
	}
	return text
}

// Changed reports whether redaction would alter the text.
func (r *Redactor) Changed(text string) bool {
	return r.Redact(text) != text
}

// Hash returns a deterministic fingerprint of the redacted text: the first
// 16 hex characters of its SHA-256 digest. Equal redacted inputs always
// produce equal digests.
func (r *Redactor) Hash(text string) string {
	sum := sha256.Sum256([]byte(r.Redact(text)))
	return hex.EncodeToString(sum[:])[:hashLength]
}
