package safety

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/copperline/askgate/internal/types"
)

// HeuristicChecker is the full input safety gate: length and structural
// validation, harmful-pattern scan, and injection-likelihood scoring.
type HeuristicChecker struct{}

func NewHeuristicChecker() *HeuristicChecker {
	return &HeuristicChecker{}
}

// Evaluate runs the checks in order, short-circuiting on the first failure.
func (h *HeuristicChecker) Evaluate(question string) types.SafetyVerdict {
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

	if reason := structuralReject(question); reason != "" {
		return types.SafetyVerdict{Safe: false, Reason: reason, Confidence: 1.0}
	}

	for _, p := range harmfulPatterns {
		if p.MatchString(question) {
			return types.SafetyVerdict{Safe: false, Reason: "Detected potentially harmful content", Confidence: 0.8}
		}
	}

	if score := InjectionScore(question); score > injectionThreshold {
		return types.SafetyVerdict{
			Safe:       false,
			Reason:     fmt.Sprintf("High probability of prompt injection (score: %.2f)", score),
			Confidence: score,
		}
	}

	return types.SafetyVerdict{Safe: true, Reason: "Input appears safe", Confidence: 0.9}
}

// structuralReject returns a non-empty reason when the question is degenerate:
// only digits and light punctuation, only asterisks, only symbols, repetitive
// characters, or too few alphanumerics to mean anything.
func structuralReject(question string) string {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return "Question is empty"
	}

	onlyDigitsPunct := true
	onlyAsterisks := true
	onlySymbols := true
	alnumCount := 0
	distinct := make(map[rune]struct{})

	for _, r := range trimmed {
		if r != ' ' {
			distinct[r] = struct{}{}
		}
		isDigit := unicode.IsDigit(r)
		isLetter := unicode.IsLetter(r)
		if isDigit || isLetter {
			alnumCount++
		}
		if !isDigit && !unicode.IsSpace(r) && r != '-' && r != '.' {
			onlyDigitsPunct = false
		}
		if r != '*' {
			onlyAsterisks = false
		}
		if isDigit || isLetter || unicode.IsSpace(r) {
			onlySymbols = false
		}
	}

	switch {
	case onlyDigitsPunct:
		return "Question contains only numbers or punctuation"
	case onlyAsterisks:
		return "Question contains only asterisks"
	case onlySymbols:
		return "Question contains only symbols"
	case utf8.RuneCountInString(trimmed) >= 5 && len(distinct) <= 2:
		return "Question appears to be repetitive characters"
	case alnumCount < 3:
		return "Question does not contain enough meaningful characters"
	}
	return ""
}

// InjectionScore computes the bounded [0,1] prompt-injection likelihood from
// three independently capped signals. The score is monotonically
// non-decreasing in the number of matching keywords and phrases.
func InjectionScore(question string) float64 {
	lower := strings.ToLower(question)

	keywordHits := 0
	for _, kw := range injectionKeywords {
		if strings.Contains(lower, kw) {
			keywordHits++
		}
	}
	score := capped(float64(keywordHits)*keywordWeight, keywordCap)

	instructionHits := 0
	for _, phrase := range instructionPhrases {
		if strings.Contains(lower, phrase) {
			instructionHits++
		}
	}
	score += capped(float64(instructionHits)*instructionWeight, instructionCap)

	adversarialHits := 0
	for _, phrase := range adversarialPhrases {
		if strings.Contains(lower, phrase) {
			adversarialHits++
		}
	}
	score += capped(float64(adversarialHits)*adversarialWeight, adversarialCap)

	return capped(score, 1.0)
}

func capped(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}
