package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/copperline/askgate/internal/config"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"a", 1},
		{"abcd", 2},             // ceil(4/3.5) = 2
		{strings.Repeat("x", 35), 10}, // 35/3.5 exactly
		{strings.Repeat("x", 36), 11},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := StripFence(tt.input); got != tt.want {
			t.Errorf("StripFence(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestOpenAIAdapter_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req chatCompletionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": `{"answer":"ok"}`}},
			},
			"usage": map[string]any{"prompt_tokens": 42, "completion_tokens": 7, "total_tokens": 49},
		})
	}))
	defer srv.Close()

	a := NewOpenAIAdapter(config.ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})
	result, err := a.Generate(context.Background(), "How do I reset my password?")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success")
	}
	if result.PromptTokens != 42 || result.CompletionTokens != 7 {
		t.Errorf("expected exact usage 42/7, got %d/%d", result.PromptTokens, result.CompletionTokens)
	}
	if result.EstimatedTokens {
		t.Error("openai counts must not be marked as estimated")
	}
}

func TestGeminiAdapter_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "```json\n{\"answer\":\"ok\"}\n```"},
				}}},
			},
		})
	}))
	defer srv.Close()

	a := NewGeminiAdapter(config.ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})
	result, err := a.Generate(context.Background(), "How do I reset my password?")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.Contains(result.Content, "```") {
		t.Errorf("fence not stripped: %q", result.Content)
	}
	if !result.EstimatedTokens {
		t.Error("gemini counts must be marked as estimated")
	}
	if result.PromptTokens < 1 || result.CompletionTokens < 1 {
		t.Errorf("estimated counts must be at least 1, got %d/%d", result.PromptTokens, result.CompletionTokens)
	}
}

func TestOpenRouterAdapter_UsageFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": `{"answer":"ok"}`}},
			},
		})
	}))
	defer srv.Close()

	a := NewOpenRouterAdapter(config.ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})
	result, err := a.Generate(context.Background(), "hello there friend")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !result.EstimatedTokens {
		t.Error("missing usage should fall back to estimated counts")
	}
}

func TestAdapter_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewOpenAIAdapter(config.ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})
	if _, err := a.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestAdapter_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	a := NewOpenAIAdapter(config.ProviderConfig{APIKey: "test-key", BaseURL: srv.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Generate(ctx, "hello"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
