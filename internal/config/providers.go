package config

import "time"

type ProvidersConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// ProviderConfig describes one generative backend. A provider with an empty
// APIKey is treated as not configured and skipped at registry build time.
type ProviderConfig struct {
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url,omitempty"`
	Model         string        `yaml:"model,omitempty"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	Pricing       *PriceEntry   `yaml:"pricing,omitempty"`
}

// PriceEntry is a per-million-token rate pair in USD.
type PriceEntry struct {
	Prompt     float64 `yaml:"prompt"`
	Completion float64 `yaml:"completion"`
}

// Configured reports whether credentials are present for the provider.
func (p ProviderConfig) Configured() bool {
	return p.APIKey != ""
}
