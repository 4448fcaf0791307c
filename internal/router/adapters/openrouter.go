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
	openRouterDefaultBaseURL = "https://openrouter.ai/api/v1"
	openRouterDefaultModel   = "openai/gpt-3.5-turbo"
)

// OpenRouterAdapter calls the OpenRouter chat completions API
// (OpenAI-compatible). Usage reporting varies by routed model: exact counts
// are used when present, otherwise estimated from character length.
type OpenRouterAdapter struct {
	cfg    config.ProviderConfig
	client *http.Client
}

func NewOpenRouterAdapter(cfg config.ProviderConfig) *OpenRouterAdapter {
	return &OpenRouterAdapter{cfg: cfg, client: newHTTPClient(cfg)}
}

func (a *OpenRouterAdapter) Name() string { return "openrouter" }

func (a *OpenRouterAdapter) Model() string {
	if a.cfg.Model != "" {
		return a.cfg.Model
	}
	return openRouterDefaultModel
}

func (a *OpenRouterAdapter) Generate(ctx context.Context, prompt string) (*types.GenerationResult, error) {
	baseURL := a.cfg.BaseURL
	if baseURL == "" {
		baseURL = openRouterDefaultBaseURL
	}

	body := chatCompletionsRequest{
		Model: a.Model(),
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature: generationTemperature,
		MaxTokens:   generationMaxTokens,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal openrouter request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create openrouter request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openrouter response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter returned status %d", resp.StatusCode)
	}

	var orResp chatCompletionsResponse
	if err := json.Unmarshal(raw, &orResp); err != nil {
		return nil, fmt.Errorf("unmarshal openrouter response: %w", err)
	}
	if len(orResp.Choices) == 0 {
		return nil, fmt.Errorf("openrouter response has no choices")
	}

	content := StripFence(orResp.Choices[0].Message.Content)
	result := &types.GenerationResult{
		Success: true,
		Content: content,
	}
	if orResp.Usage.PromptTokens > 0 || orResp.Usage.CompletionTokens > 0 {
		result.PromptTokens = orResp.Usage.PromptTokens
		result.CompletionTokens = orResp.Usage.CompletionTokens
	} else {
		result.PromptTokens = EstimateTokens(prompt)
		result.CompletionTokens = EstimateTokens(content)
		result.EstimatedTokens = true
	}
	return result, nil
}
