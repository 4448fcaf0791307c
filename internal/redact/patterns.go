package redact

import "regexp"

// Pattern defines one PII substitution class.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// DefaultPatterns returns the built-in PII substitution patterns. They are
// applied in slice order; replacements contain no digits, no '@' and no
// assignment operator, so no replacement can re-match a pattern and a second
// pass over already-redacted text is a no-op.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:        "secret",
			Regex:       regexp.MustCompile(`(?i)\b(?:api[_-]?key|secret|token|password|passwd|ssn)\b\s*[:=]\s*[^\s,;]+`),
			Replacement: "[redacted-secret]",
		},
		{
			Name:        "email",
			Regex:       regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
			Replacement: "[redacted-email]",
		},
		{
			Name:        "phone",
			Regex:       regexp.MustCompile(`(?:\+\d{1,3}[-. ]?)?(?:\(\d{3}\)|\d{3})[-. ]\d{3,4}[-. ]\d{4}\b|\b\d{4}[-. ]\d{4}\b`),
			Replacement: "[redacted-phone]",
		},
		{
			Name:        "account",
			Regex:       regexp.MustCompile(`\b\d{8,16}\b`),
			Replacement: "[redacted-account]",
		},
	}
}
