// Package safety implements the deterministic content-safety policy: input
// validation and injection scoring, input sanitization, and output masking.
// All decisions are pure functions of pattern and keyword tables; there is no
// learned or adaptive state.
package safety

import (
	"unicode/utf8"

	"github.com/copperline/askgate/internal/config"
	"github.com/copperline/askgate/internal/types"
)

const (
	minQuestionLength = 3
	maxQuestionLength = 2000
)

// Checker evaluates a raw question before any backend call. Implementations
// must be side-effect free and independent of prior calls.
type Checker interface {
	Evaluate(question string) types.SafetyVerdict
}

// NewChecker selects the checker variant from config. Unknown values fall
// back to the full heuristic checker.
func NewChecker(cfg config.SafetyConfig) Checker {
	if cfg.Checker == "basic" {
		return &BasicChecker{}
	}
	return NewHeuristicChecker()
}

// BasicChecker performs length checks only. It is the degraded variant used
// when the full heuristic gate is disabled.
type BasicChecker struct{}

func (b *BasicChecker) Evaluate(question string) types.SafetyVerdict {
	if question == "" {
		return types.SafetyVerdict{Safe: false, Reason: "Empty or invalid input", Confidence: 1.0}
	}
	length := utf8.RuneCountInString(question)
	if length < minQuestionLength {
		return types.SafetyVerdict{Safe: false, Reason: "Question too short", Confidence: 1.0}
	}
	if length > maxQuestionLength {
		return types.SafetyVerdict{Safe: false, Reason: "Question too long", Confidence: 1.0}
	}
	return types.SafetyVerdict{Safe: true, Reason: "Passed basic checks", Confidence: 0.9}
}
