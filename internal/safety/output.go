package safety

import (
	"strings"
	"unicode"

	"github.com/copperline/askgate/internal/redact"
	"github.com/copperline/askgate/internal/types"
)

const minResponseLength = 10

// OutputGate validates and masks backend output before it reaches the
// caller. A block verdict means the original content is discarded entirely.
type OutputGate struct {
	redactor *redact.Redactor
}

func NewOutputGate(r *redact.Redactor) *OutputGate {
	return &OutputGate{redactor: r}
}

// Evaluate redacts PII from the raw output and validates what remains.
// Structural rejection (length, digits-only) is judged on the raw text so a
// degenerate response cannot pass by growing through placeholder
// substitution; the harmful scan runs on the redacted text.
func (g *OutputGate) Evaluate(rawOutput string) types.OutputVerdict {
	redacted := g.redactor.Redact(rawOutput)
	piiFound := redacted != rawOutput

	if len(strings.TrimSpace(rawOutput)) < minResponseLength {
		return types.OutputVerdict{
			Action:   types.OutputBlock,
			Severity: types.SeverityHigh,
			Reason:   "Response too short to be meaningful",
		}
	}
	if digitsOrPunctOnly(rawOutput) {
		return types.OutputVerdict{
			Action:   types.OutputBlock,
			Severity: types.SeverityHigh,
			Reason:   "Response contains only digits or punctuation",
		}
	}
	if harmfulResponse(redacted) {
		return types.OutputVerdict{
			Action:   types.OutputBlock,
			Severity: types.SeverityHigh,
			Reason:   "Response contains potentially harmful content",
		}
	}

	if piiFound {
		return types.OutputVerdict{
			Action:   types.OutputAllowMasked,
			Text:     redacted,
			Severity: types.SeverityMedium,
			Reason:   "PII redacted from response",
		}
	}
	return types.OutputVerdict{
		Action:   types.OutputAllow,
		Text:     redacted,
		Severity: types.SeverityLow,
	}
}

func digitsOrPunctOnly(text string) bool {
	seen := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		seen = true
		if unicode.IsLetter(r) {
			return false
		}
	}
	return seen
}

func harmfulResponse(text string) bool {
	for _, p := range harmfulPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	lower := strings.ToLower(text)
	for _, kw := range responseLeakKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
