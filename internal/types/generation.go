package types

// GenerationResult is the canonical result of one provider call. All
// provider-specific response formats are converted to this type.
type GenerationResult struct {
	Success          bool   `json:"success"`
	Content          string `json:"content,omitempty"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	// EstimatedTokens marks the token counts as a character-length
	// approximation rather than counts reported by the backend.
	EstimatedTokens bool   `json:"estimated_tokens,omitempty"`
	Error           string `json:"error,omitempty"`
}

// TotalTokens returns prompt plus completion tokens.
func (g *GenerationResult) TotalTokens() int {
	return g.PromptTokens + g.CompletionTokens
}
