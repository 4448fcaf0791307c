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
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIDefaultModel   = "gpt-3.5-turbo"
)

// OpenAIAdapter calls the OpenAI chat completions API. OpenAI reports exact
// prompt/completion token counts, so no estimation is needed.
type OpenAIAdapter struct {
	cfg    config.ProviderConfig
	client *http.Client
}

func NewOpenAIAdapter(cfg config.ProviderConfig) *OpenAIAdapter {
	return &OpenAIAdapter{cfg: cfg, client: newHTTPClient(cfg)}
}

func (a *OpenAIAdapter) Name() string { return "openai" }

func (a *OpenAIAdapter) Model() string {
	if a.cfg.Model != "" {
		return a.cfg.Model
	}
	return openAIDefaultModel
}

func (a *OpenAIAdapter) Generate(ctx context.Context, prompt string) (*types.GenerationResult, error) {
	baseURL := a.cfg.BaseURL
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
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
		return nil, fmt.Errorf("marshal openai request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create openai request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai returned status %d", resp.StatusCode)
	}

	var oaiResp chatCompletionsResponse
	if err := json.Unmarshal(raw, &oaiResp); err != nil {
		return nil, fmt.Errorf("unmarshal openai response: %w", err)
	}
	if len(oaiResp.Choices) == 0 {
		return nil, fmt.Errorf("openai response has no choices")
	}

	return &types.GenerationResult{
		Success:          true,
		Content:          StripFence(oaiResp.Choices[0].Message.Content),
		PromptTokens:     oaiResp.Usage.PromptTokens,
		CompletionTokens: oaiResp.Usage.CompletionTokens,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
