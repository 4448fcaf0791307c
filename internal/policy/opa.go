// Package policy is an optional Rego-based admission gate evaluated before
// the pipeline runs. It sees only question metadata, never raw question text.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/open-policy-agent/opa/rego"

	"github.com/copperline/askgate/internal/config"
)

// Input is the data sent to OPA for evaluation.
type Input struct {
	Caller   Caller   `json:"caller"`
	Question Question `json:"question"`
	Time     TimeInfo `json:"time"`
}

// Caller identifies the requester. KeyPrefix is empty when auth is disabled.
type Caller struct {
	KeyPrefix string `json:"key_prefix"`
	Remote    string `json:"remote"`
}

// Question carries metadata about the submitted question.
type Question struct {
	Length int    `json:"length"`
	Hash   string `json:"hash"`
}

type TimeInfo struct {
	Hour int    `json:"hour"`
	Day  string `json:"day"`
}

const policyQuery = "[data.askgate.policy.allow, data.askgate.policy.reason]"

// Evaluator runs compiled Rego policies. When no policies are loaded it fails
// closed.
type Evaluator struct {
	mu       sync.RWMutex
	prepared *rego.PreparedEvalQuery
	cfg      config.PolicyConfig
	logger   *slog.Logger
}

// NewEvaluator creates a policy evaluator. Call Load to compile policies.
func NewEvaluator(cfg config.PolicyConfig, logger *slog.Logger) *Evaluator {
	return &Evaluator{cfg: cfg, logger: logger}
}

func (e *Evaluator) Enabled() bool { return e.cfg.Enabled }

// Load compiles Rego modules from the bundle path.
func (e *Evaluator) Load() error {
	modules, err := LoadRegoFiles(e.cfg.BundlePath)
	if err != nil {
		return fmt.Errorf("load rego files: %w", err)
	}
	if len(modules) == 0 {
		e.logger.Warn("no rego files found", "path", e.cfg.BundlePath)
		return nil
	}
	if err := e.LoadFromModules(modules); err != nil {
		return err
	}
	e.logger.Info("opa policies loaded", "modules", len(modules))
	return nil
}

// LoadFromModules compiles policies from provided module sources.
func (e *Evaluator) LoadFromModules(modules map[string]string) error {
	opts := []func(*rego.Rego){rego.Query(policyQuery)}
	for name, src := range modules {
		opts = append(opts, rego.Module(name, src))
	}

	prepared, err := rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return fmt.Errorf("prepare rego: %w", err)
	}

	e.mu.Lock()
	e.prepared = &prepared
	e.mu.Unlock()
	return nil
}

// Evaluate runs the policy against the given input. The boolean is false
// whenever the request must not proceed, including evaluation errors.
func (e *Evaluator) Evaluate(ctx context.Context, input Input) (bool, string, error) {
	e.mu.RLock()
	prepared := e.prepared
	e.mu.RUnlock()

	if prepared == nil {
		return false, "no policies loaded", nil
	}

	timeout := e.cfg.EvaluationTimeout
	if timeout == 0 {
		timeout = 100 * time.Millisecond
	}

	evalCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := prepared.Eval(evalCtx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Sprintf("policy evaluation error: %v", err), err
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, "no policy result", nil
	}

	// Result is [allow, reason]
	arr, ok := results[0].Expressions[0].Value.([]interface{})
	if !ok || len(arr) < 2 {
		return false, "unexpected policy result format", nil
	}

	allowed, _ := arr[0].(bool)
	reason, _ := arr[1].(string)

	return allowed, reason, nil
}

// NewInput builds the evaluation input for one request.
func NewInput(keyPrefix, remote, questionHash string, questionLength int) Input {
	now := time.Now().UTC()
	return Input{
		Caller:   Caller{KeyPrefix: keyPrefix, Remote: remote},
		Question: Question{Length: questionLength, Hash: questionHash},
		Time:     TimeInfo{Hour: now.Hour(), Day: now.Weekday().String()},
	}
}
