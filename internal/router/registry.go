// Package router selects a generative backend and fails over to at most one
// fallback when the first call does not succeed.
package router

import (
	"sync"

	"github.com/copperline/askgate/internal/config"
	"github.com/copperline/askgate/internal/router/adapters"
)

// Registry holds the constructible provider adapters in priority order. It
// is built once from config and read-only afterward; reconfiguration builds
// a new registry, never mutates descriptors in place.
type Registry struct {
	mu       sync.RWMutex
	priority []string
	adapters map[string]adapters.ProviderAdapter
}

func NewRegistry(priority []string) *Registry {
	return &Registry{
		priority: priority,
		adapters: make(map[string]adapters.ProviderAdapter),
	}
}

func (r *Registry) Register(name string, adapter adapters.ProviderAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = adapter
}

func (r *Registry) Get(name string) (adapters.ProviderAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns the configured provider names in priority order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for _, name := range r.priority {
		if _, ok := r.adapters[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Current returns the first configured provider in priority order, keyed by
// its configured name.
func (r *Registry) Current() (string, adapters.ProviderAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.priority {
		if a, ok := r.adapters[name]; ok {
			return name, a, true
		}
	}
	return "", nil, false
}

// Fallback returns the next configured provider in priority order after the
// one that just failed.
func (r *Registry) Fallback(excluding string) (string, adapters.ProviderAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := false
	for _, name := range r.priority {
		if name == excluding {
			seen = true
			continue
		}
		if !seen {
			continue
		}
		if a, ok := r.adapters[name]; ok {
			return name, a, true
		}
	}
	return "", nil, false
}

// Swap replaces this registry's contents with another's. Used on config
// reload so handlers holding the registry pointer see the new providers.
func (r *Registry) Swap(from *Registry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	from.mu.RLock()
	defer from.mu.RUnlock()
	r.priority = from.priority
	r.adapters = from.adapters
}

// BuildFromConfig builds the registry from the provider config. Providers
// without credentials are skipped; unknown names in the priority list are
// ignored.
func BuildFromConfig(routing config.RoutingConfig, provCfg *config.ProvidersConfig) *Registry {
	registry := NewRegistry(routing.Priority)
	if provCfg == nil {
		return registry
	}
	for name, cfg := range provCfg.Providers {
		if !cfg.Configured() {
			continue
		}
		var adapter adapters.ProviderAdapter
		switch name {
		case "openai":
			adapter = adapters.NewOpenAIAdapter(cfg)
		case "gemini":
			adapter = adapters.NewGeminiAdapter(cfg)
		case "openrouter":
			adapter = adapters.NewOpenRouterAdapter(cfg)
		default:
			// Unknown providers are assumed OpenAI-compatible.
			adapter = adapters.NewOpenAIAdapter(cfg)
		}
		registry.Register(name, adapter)
	}
	return registry
}
