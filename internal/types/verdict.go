package types

// SafetyVerdict is the outcome of the input safety gate. It is produced once
// per question and never mutated.
type SafetyVerdict struct {
	Safe       bool    `json:"safe"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"` // 0.0 to 1.0
}

// OutputAction is the decision taken on a provider's raw output.
type OutputAction string

const (
	OutputAllow       OutputAction = "allow"
	OutputAllowMasked OutputAction = "allow-masked"
	OutputBlock       OutputAction = "block"
)

// OutputSeverity grades how much the output gate had to intervene.
type OutputSeverity string

const (
	SeverityLow    OutputSeverity = "low"
	SeverityMedium OutputSeverity = "medium"
	SeverityHigh   OutputSeverity = "high"
)

// OutputVerdict is the outcome of the output safety gate. When Action is
// OutputBlock the original provider text must never propagate downstream;
// Text then holds nothing useful and callers substitute a refusal payload.
type OutputVerdict struct {
	Action   OutputAction   `json:"action"`
	Text     string         `json:"text"`
	Severity OutputSeverity `json:"severity"`
	Reason   string         `json:"reason,omitempty"`
}
