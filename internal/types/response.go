package types

import "time"

// Category classifies an answered question.
type Category string

const (
	CategoryTechnical Category = "technical"
	CategoryBilling   Category = "billing"
	CategoryGeneral   Category = "general"
	CategoryOther     Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryBilling, CategoryGeneral, CategoryOther:
		return true
	}
	return false
}

// QueryResponse is the caller-facing result of one pipeline run.
type QueryResponse struct {
	Answer        string          `json:"answer"`
	Confidence    float64         `json:"confidence"`
	Actions       []string        `json:"actions"`
	Category      Category        `json:"category"`
	FollowUp      *string         `json:"follow_up"`
	Metrics       ResponseMetrics `json:"metrics"`
	SafetyWarning *string         `json:"safety_warning,omitempty"`
	Error         *string         `json:"error,omitempty"`
}

// ResponseMetrics is the per-request usage view embedded in QueryResponse.
type ResponseMetrics struct {
	PromptTokens     int     `json:"tokens_prompt"`
	CompletionTokens int     `json:"tokens_completion"`
	TotalTokens      int     `json:"total_tokens"`
	LatencyMs        float64 `json:"latency_ms"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	Provider         string  `json:"provider,omitempty"`
	Model            string  `json:"model,omitempty"`
}

// MetricsRecord is one row of the durable usage log. Question text is
// redacted and truncated before it gets here; raw text is never persisted.
type MetricsRecord struct {
	Timestamp        time.Time
	Question         string // redacted, truncated to 100 chars
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	LatencyMs        float64
	EstimatedCostUSD float64
	SafetyPassed     bool
	QuestionHash     string
	OutputHash       string
}
