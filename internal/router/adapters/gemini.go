package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/copperline/askgate/internal/config"
	"github.com/copperline/askgate/internal/types"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel   = "gemini-2.5-flash"
)

// GeminiAdapter calls the Gemini generateContent API. Gemini does not report
// usage on this endpoint, so token counts are estimated from character
// length and marked as estimates.
type GeminiAdapter struct {
	cfg    config.ProviderConfig
	client *http.Client
}

func NewGeminiAdapter(cfg config.ProviderConfig) *GeminiAdapter {
	return &GeminiAdapter{cfg: cfg, client: newHTTPClient(cfg)}
}

func (a *GeminiAdapter) Name() string { return "gemini" }

func (a *GeminiAdapter) Model() string {
	if a.cfg.Model != "" {
		return a.cfg.Model
	}
	return geminiDefaultModel
}

func (a *GeminiAdapter) Generate(ctx context.Context, prompt string) (*types.GenerationResult, error) {
	baseURL := a.cfg.BaseURL
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     generationTemperature,
			MaxOutputTokens: generationMaxTokens,
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", baseURL, a.Model(), a.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(raw, &gemResp); err != nil {
		return nil, fmt.Errorf("unmarshal gemini response: %w", err)
	}
	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini response has no candidates")
	}

	content := StripFence(gemResp.Candidates[0].Content.Parts[0].Text)
	return &types.GenerationResult{
		Success:          true,
		Content:          content,
		PromptTokens:     EstimateTokens(prompt),
		CompletionTokens: EstimateTokens(content),
		EstimatedTokens:  true,
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}
