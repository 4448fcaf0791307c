// Package cost maps provider token usage to an estimated USD amount.
package cost

import "github.com/copperline/askgate/internal/config"

// Rate is a per-million-token price pair in USD.
type Rate struct {
	Prompt     float64
	Completion float64
}

// defaultRates carries the built-in pricing table. Unknown providers fall
// back to defaultRate.
var defaultRates = map[string]Rate{
	"openai":     {Prompt: 1.25, Completion: 10.00},
	"gemini":     {Prompt: 1.25, Completion: 10.00},
	"openrouter": {Prompt: 1.25, Completion: 10.00},
}

var defaultRate = Rate{Prompt: 1.25, Completion: 10.00}

const tokensPerMillion = 1_000_000

// Calculator is a pure pricing function: no I/O, read-only after
// construction, safe for concurrent use.
type Calculator struct {
	rates map[string]Rate
}

// NewCalculator builds the pricing table from built-in defaults, overridden
// by any per-provider pricing in config.
func NewCalculator(providers *config.ProvidersConfig) *Calculator {
	rates := make(map[string]Rate, len(defaultRates))
	for name, r := range defaultRates {
		rates[name] = r
	}
	if providers != nil {
		for name, p := range providers.Providers {
			if p.Pricing != nil {
				rates[name] = Rate{Prompt: p.Pricing.Prompt, Completion: p.Pricing.Completion}
			}
		}
	}
	return &Calculator{rates: rates}
}

// Estimate returns the cost in USD for the given token counts. The result is
// non-negative and monotonically non-decreasing in either count.
func (c *Calculator) Estimate(provider string, promptTokens, completionTokens int) float64 {
	if promptTokens < 0 {
		promptTokens = 0
	}
	if completionTokens < 0 {
		completionTokens = 0
	}
	rate, ok := c.rates[provider]
	if !ok {
		rate = defaultRate
	}
	promptCost := float64(promptTokens) * rate.Prompt / tokensPerMillion
	completionCost := float64(completionTokens) * rate.Completion / tokensPerMillion
	return promptCost + completionCost
}
