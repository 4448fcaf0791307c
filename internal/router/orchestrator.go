package router

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/copperline/askgate/internal/router/adapters"
	"github.com/copperline/askgate/internal/types"
)

var (
	// ErrNoProvider means no provider in the priority list has credentials.
	ErrNoProvider = errors.New("no provider configured")
	// ErrAllProvidersFailed means the current provider and its single
	// fallback both failed.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// Attempt is the outcome of one successful provider call.
type Attempt struct {
	Provider  string
	Model     string
	Result    *types.GenerationResult
	LatencyMs float64
	// FellBack is set when the result came from the fallback provider.
	FellBack bool
}

// Orchestrator dispatches a prompt to the current provider and, on failure,
// to exactly one fallback. It never cycles further: bounded retries keep
// worst-case latency at two provider calls.
type Orchestrator struct {
	registry *Registry
	health   *HealthTracker
	logger   *slog.Logger
}

func NewOrchestrator(registry *Registry, health *HealthTracker, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{registry: registry, health: health, logger: logger}
}

// Execute runs the prompt against at most two providers. A context deadline
// aborts the in-flight call and counts as a provider failure, eligible for
// the same single fallback.
func (o *Orchestrator) Execute(ctx context.Context, prompt string) (*Attempt, error) {
	name, adapter, ok := o.registry.Current()
	if !ok {
		return nil, ErrNoProvider
	}

	attempt, err := o.call(ctx, name, adapter, prompt)
	if err == nil {
		return attempt, nil
	}

	o.logger.Warn("provider call failed, trying fallback",
		"provider", name,
		"error", err,
	)

	fbName, fbAdapter, ok := o.registry.Fallback(name)
	if !ok {
		return nil, ErrAllProvidersFailed
	}

	attempt, err = o.call(ctx, fbName, fbAdapter, prompt)
	if err != nil {
		o.logger.Error("fallback provider failed",
			"provider", fbName,
			"error", err,
		)
		return nil, ErrAllProvidersFailed
	}
	attempt.FellBack = true
	return attempt, nil
}

func (o *Orchestrator) call(ctx context.Context, name string, adapter adapters.ProviderAdapter, prompt string) (*Attempt, error) {
	start := time.Now()
	result, err := adapter.Generate(ctx, prompt)
	latency := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		o.health.RecordFailure(name, err)
		return nil, err
	}
	if !result.Success {
		o.health.RecordFailure(name, errors.New(result.Error))
		return nil, errors.New(result.Error)
	}

	o.health.RecordSuccess(name)
	return &Attempt{
		Provider:  name,
		Model:     adapter.Model(),
		Result:    result,
		LatencyMs: latency,
	}, nil
}
