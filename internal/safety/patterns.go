package safety

import "regexp"

// harmfulPatterns cover jailbreak/injection phrasing, illegal or harmful
// activity, and PII/fraud phrasing. Any match rejects the question outright.
// The set is fixed; altering it changes observable safety behavior.
var harmfulPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(jailbreak|prompt injection|ignore instructions)\b`),
	regexp.MustCompile(`(?i)\b(ignore previous|forget everything|system prompt)\b`),
	regexp.MustCompile(`(?i)\b(act as|pretend to be|roleplay as)\b`),
	regexp.MustCompile(`(?i)\b(hack|crack|exploit|bypass)\b`),
	regexp.MustCompile(`(?i)\b(illegal|unlawful|harmful|dangerous)\b`),
	regexp.MustCompile(`(?i)\b(suicide|self-harm|violence|threat)\b`),
	regexp.MustCompile(`(?i)\b(personal information|private data|confidential)\b`),
	regexp.MustCompile(`(?i)\b(phishing|scam|fraud|malware)\b`),
}

// Injection-likelihood signal tables. Each signal is capped individually
// before summing; the total is capped at 1.0. The weights and caps are
// hand-tuned constants and deliberately not re-derived.
const (
	keywordWeight = 0.2
	keywordCap    = 0.6

	instructionWeight = 0.25
	instructionCap    = 0.4

	adversarialWeight = 0.4
	adversarialCap    = 0.5

	injectionThreshold = 0.5
)

var injectionKeywords = []string{
	"ignore", "forget", "override", "bypass", "jailbreak",
	"system", "admin", "root", "privilege", "elevate",
	"injection", "payload", "exploit", "vulnerability",
}

var instructionPhrases = []string{
	"you must", "you should", "you will", "act as",
	"pretend to", "roleplay as", "developer mode",
	"admin access", "system prompt",
}

var adversarialPhrases = []string{
	"ignore previous", "forget everything", "override",
	"bypass", "jailbreak", "unrestricted", "developer mode",
}

// responseLeakKeywords extend the harmful scan for backend output: a response
// mentioning these is treated as prompt leakage.
var responseLeakKeywords = []string{
	"system prompt", "jailbreak",
}
