// Package adapters holds the HTTP clients for each generative backend. Every
// adapter converts its provider's wire format to the canonical
// types.GenerationResult.
package adapters

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/copperline/askgate/internal/config"
	"github.com/copperline/askgate/internal/types"
)

// ProviderAdapter is the injected generation capability: one prompt in, one
// canonical result out. Implementations must honor ctx cancellation.
type ProviderAdapter interface {
	Name() string
	Model() string
	Generate(ctx context.Context, prompt string) (*types.GenerationResult, error)
}

// Generation parameters shared by every backend call.
const (
	generationTemperature = 0.3
	generationMaxTokens   = 500

	systemInstruction = "You are a helpful assistant that responds only with valid JSON."
)

// charsPerToken drives the token estimate for backends that do not report
// usage. The counts derived from it are approximations and are flagged as
// such on the result; they must never be presented as exact.
const charsPerToken = 3.5

// EstimateTokens approximates a token count from character length.
func EstimateTokens(text string) int {
	n := int(math.Ceil(float64(len(text)) / charsPerToken))
	if n < 1 {
		n = 1
	}
	return n
}

// StripFence removes a leading/trailing markdown code fence from backend
// content. Some backends wrap JSON answers in ```json fences; that is
// formatting noise, not a safety concern.
func StripFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = content[len("```json"):]
	}
	if strings.HasPrefix(content, "```") {
		content = content[len("```"):]
	}
	if strings.HasSuffix(content, "```") {
		content = content[:len(content)-len("```")]
	}
	return strings.TrimSpace(content)
}

func newHTTPClient(cfg config.ProviderConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxConns := cfg.MaxConcurrent
	if maxConns == 0 {
		maxConns = 10
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        maxConns,
			MaxIdleConnsPerHost: maxConns,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}
