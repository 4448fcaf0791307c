package safety

import "regexp"

const controlMarker = "[blocked-control]"

// controlPhrases are rewritten before the question is interpolated into a
// prompt, so accepted-but-suspicious phrasing cannot reach the model intact.
var controlPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(?:all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)reveal\s+(?:your\s+|the\s+)?system\s+prompt`),
	regexp.MustCompile(`(?i)developer\s+mode`),
	regexp.MustCompile(`(?i)act\s+as\s+(?:a\s+|an\s+)?(?:\w+\s+){0,2}?admin(?:istrator)?\b`),
	regexp.MustCompile(`(?i)forget\s+everything`),
}

// codeFence matches a complete triple-backtick block, with an optional
// language tag on the opening fence.
var codeFence = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\n?(.*?)```")

// Sanitizer neutralizes control phrasing and literalizes fenced code in
// input that has already passed the safety gate. Sanitizing a clean question
// is the identity function.
type Sanitizer struct{}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Sanitize rewrites control phrases to a fixed marker and wraps fenced code
// blocks in a literal-code tag so the formatted prompt cannot present user
// code as instructions.
func (s *Sanitizer) Sanitize(text string) string {
	for _, p := range controlPhrases {
		text = p.ReplaceAllString(text, controlMarker)
	}
	text = codeFence.ReplaceAllString(text, "[literal-code]$1[/literal-code]")
	return text
}
