package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/copperline/askgate/internal/types"
)

type stubAdapter struct {
	name    string
	model   string
	result  *types.GenerationResult
	err     error
	calls   int
}

func (s *stubAdapter) Name() string  { return s.name }
func (s *stubAdapter) Model() string { return s.model }

func (s *stubAdapter) Generate(_ context.Context, _ string) (*types.GenerationResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func okResult() *types.GenerationResult {
	return &types.GenerationResult{
		Success:          true,
		Content:          `{"answer":"ok"}`,
		PromptTokens:     10,
		CompletionTokens: 5,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(reg *Registry) *Orchestrator {
	return NewOrchestrator(reg, NewHealthTracker(), discardLogger())
}

func TestExecute_PrimarySucceeds(t *testing.T) {
	reg := NewRegistry([]string{"openrouter", "gemini", "openai"})
	primary := &stubAdapter{name: "openrouter", model: "openai/gpt-3.5-turbo", result: okResult()}
	secondary := &stubAdapter{name: "gemini", model: "gemini-2.5-flash", result: okResult()}
	reg.Register("openrouter", primary)
	reg.Register("gemini", secondary)

	o := newTestOrchestrator(reg)
	attempt, err := o.Execute(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if attempt.Provider != "openrouter" {
		t.Errorf("expected openrouter, got %s", attempt.Provider)
	}
	if attempt.FellBack {
		t.Error("no fallback expected")
	}
	if secondary.calls != 0 {
		t.Errorf("fallback provider was called %d times", secondary.calls)
	}
}

func TestExecute_FallbackSucceeds(t *testing.T) {
	reg := NewRegistry([]string{"openrouter", "gemini", "openai"})
	primary := &stubAdapter{name: "openrouter", err: errors.New("boom")}
	secondary := &stubAdapter{name: "gemini", model: "gemini-2.5-flash", result: okResult()}
	reg.Register("openrouter", primary)
	reg.Register("gemini", secondary)

	o := newTestOrchestrator(reg)
	attempt, err := o.Execute(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if attempt.Provider != "gemini" {
		t.Errorf("expected fallback provider gemini, got %s", attempt.Provider)
	}
	if !attempt.FellBack {
		t.Error("expected FellBack to be set")
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("expected one call each, got %d/%d", primary.calls, secondary.calls)
	}
}

func TestExecute_AtMostTwoAttempts(t *testing.T) {
	reg := NewRegistry([]string{"openrouter", "gemini", "openai"})
	first := &stubAdapter{name: "openrouter", err: errors.New("boom")}
	second := &stubAdapter{name: "gemini", err: errors.New("boom")}
	third := &stubAdapter{name: "openai", result: okResult()}
	reg.Register("openrouter", first)
	reg.Register("gemini", second)
	reg.Register("openai", third)

	o := newTestOrchestrator(reg)
	_, err := o.Execute(context.Background(), "prompt")
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("expected ErrAllProvidersFailed, got %v", err)
	}
	// The third provider must never be contacted.
	if third.calls != 0 {
		t.Errorf("third provider was called %d times", third.calls)
	}
}

func TestExecute_NoProviderConfigured(t *testing.T) {
	reg := NewRegistry([]string{"openrouter", "gemini", "openai"})
	o := newTestOrchestrator(reg)
	_, err := o.Execute(context.Background(), "prompt")
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestExecute_UnsuccessfulResultTriggersFallback(t *testing.T) {
	reg := NewRegistry([]string{"gemini", "openai"})
	primary := &stubAdapter{name: "gemini", result: &types.GenerationResult{Success: false, Error: "quota"}}
	secondary := &stubAdapter{name: "openai", model: "gpt-3.5-turbo", result: okResult()}
	reg.Register("gemini", primary)
	reg.Register("openai", secondary)

	o := newTestOrchestrator(reg)
	attempt, err := o.Execute(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if attempt.Provider != "openai" {
		t.Errorf("expected openai, got %s", attempt.Provider)
	}
}

func TestRegistry_PriorityOrder(t *testing.T) {
	reg := NewRegistry([]string{"openrouter", "gemini", "openai"})
	reg.Register("openai", &stubAdapter{name: "openai"})
	reg.Register("gemini", &stubAdapter{name: "gemini"})

	name, _, ok := reg.Current()
	if !ok || name != "gemini" {
		t.Fatalf("expected gemini as current, got %q (ok=%v)", name, ok)
	}

	fbName, _, ok := reg.Fallback("gemini")
	if !ok || fbName != "openai" {
		t.Fatalf("expected openai as fallback, got %q (ok=%v)", fbName, ok)
	}

	if _, _, ok := reg.Fallback("openai"); ok {
		t.Error("expected no fallback after last provider")
	}
}

func TestHealthTracker(t *testing.T) {
	ht := NewHealthTracker()
	ht.RecordSuccess("openai")
	ht.RecordSuccess("openai")
	ht.RecordFailure("gemini", errors.New("timeout"))

	snap := ht.Snapshot()
	if snap["openai"].Successes != 2 {
		t.Errorf("expected 2 successes, got %d", snap["openai"].Successes)
	}
	if snap["gemini"].Failures != 1 {
		t.Errorf("expected 1 failure, got %d", snap["gemini"].Failures)
	}
	if snap["gemini"].LastError != "timeout" {
		t.Errorf("expected last error recorded, got %q", snap["gemini"].LastError)
	}
}
