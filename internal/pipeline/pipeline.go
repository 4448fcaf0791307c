// Package pipeline coordinates the fixed question-processing sequence: input
// safety gate, sanitization, prompt formatting, provider orchestration,
// output safety gate, response parsing, and usage recording.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/copperline/askgate/internal/cost"
	"github.com/copperline/askgate/internal/metrics"
	"github.com/copperline/askgate/internal/prompt"
	"github.com/copperline/askgate/internal/redact"
	"github.com/copperline/askgate/internal/router"
	"github.com/copperline/askgate/internal/safety"
	"github.com/copperline/askgate/internal/telemetry"
	"github.com/copperline/askgate/internal/types"
)

const (
	refusalAnswer     = "I cannot process this request"
	parseErrorAnswer  = "Error parsing response"
	providerErrorText = "All providers failed to process the request"
	noProviderText    = "No provider configured"

	// Redacted question text is truncated to this many runes before it is
	// written to the durable log.
	maxLoggedQuestion = 100
)

var (
	refusalActions    = []string{"Please rephrase your question"}
	parseErrorActions = []string{"Please try again"}
)

// Outcome labels used for telemetry.
const (
	outcomeRejected   = "rejected"
	outcomeDelivered  = "delivered"
	outcomeBlocked    = "blocked"
	outcomeFailed     = "failed"
	outcomeParseError = "parse_error"
)

// Pipeline is the single entry point the front ends call. All collaborators
// are read-only after construction; concurrent Process calls share no
// per-call state.
type Pipeline struct {
	checker      safety.Checker
	sanitizer    *safety.Sanitizer
	redactor     *redact.Redactor
	outputGate   *safety.OutputGate
	prompts      *prompt.Store
	orchestrator *router.Orchestrator
	costs        *cost.Calculator
	recorder     metrics.Recorder
	telemetry    *telemetry.Metrics
	logger       *slog.Logger
}

// Deps carries the pipeline's collaborators. Telemetry may be nil.
type Deps struct {
	Checker      safety.Checker
	Sanitizer    *safety.Sanitizer
	Redactor     *redact.Redactor
	OutputGate   *safety.OutputGate
	Prompts      *prompt.Store
	Orchestrator *router.Orchestrator
	Costs        *cost.Calculator
	Recorder     metrics.Recorder
	Telemetry    *telemetry.Metrics
	Logger       *slog.Logger
}

func New(deps Deps) *Pipeline {
	return &Pipeline{
		checker:      deps.Checker,
		sanitizer:    deps.Sanitizer,
		redactor:     deps.Redactor,
		outputGate:   deps.OutputGate,
		prompts:      deps.Prompts,
		orchestrator: deps.Orchestrator,
		costs:        deps.Costs,
		recorder:     deps.Recorder,
		telemetry:    deps.Telemetry,
		logger:       deps.Logger,
	}
}

// providerPayload is the JSON shape the model is instructed to produce.
type providerPayload struct {
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Actions    []string `json:"actions"`
	Category   string   `json:"category"`
	FollowUp   *string  `json:"follow_up"`
}

// Process runs one question through the full sequence and always returns a
// populated response. The error is non-nil only when no provider answered
// (router.ErrNoProvider, router.ErrAllProvidersFailed) so front ends can map
// transport status; the response alongside it is still the caller-facing
// payload. A rejected question contacts no provider and logs no usage record;
// every other terminal state logs exactly one.
func (p *Pipeline) Process(ctx context.Context, question string) (types.QueryResponse, error) {
	start := time.Now()

	verdict := p.checker.Evaluate(question)
	if !verdict.Safe {
		p.logger.Info("question rejected",
			"reason", verdict.Reason,
			"question_hash", p.redactor.Hash(question),
		)
		p.recordSafetyAction("input", "reject")
		p.recordQuery(telemetry.QueryLabels{Outcome: outcomeRejected, DurationMs: sinceMs(start)})

		warning := verdict.Reason
		return types.QueryResponse{
			Answer:        refusalAnswer,
			Confidence:    1.0,
			Actions:       refusalActions,
			Category:      types.CategoryOther,
			SafetyWarning: &warning,
			Metrics:       types.ResponseMetrics{LatencyMs: sinceMs(start)},
		}, nil
	}
	p.recordSafetyAction("input", "allow")

	sanitized := p.sanitizer.Sanitize(question)
	formatted := p.prompts.Format(sanitized)

	attempt, err := p.orchestrator.Execute(ctx, formatted)
	if err != nil {
		return p.failAll(ctx, question, err, start), err
	}
	if attempt.FellBack {
		p.recordFallback(attempt.Provider)
	}

	result := attempt.Result
	costUSD := p.costs.Estimate(attempt.Provider, result.PromptTokens, result.CompletionTokens)
	latency := sinceMs(start)

	outVerdict := p.outputGate.Evaluate(result.Content)
	if outVerdict.Action == types.OutputBlock {
		return p.blockOutput(ctx, question, attempt, costUSD, latency, outVerdict), nil
	}
	p.recordSafetyAction("output", string(outVerdict.Action))

	resp := p.parseResponse(outVerdict.Text)
	outcome := outcomeDelivered
	if resp.Error != nil {
		outcome = outcomeParseError
	}
	if outVerdict.Action == types.OutputAllowMasked {
		warning := outVerdict.Reason
		resp.SafetyWarning = &warning
	}

	resp.Metrics = types.ResponseMetrics{
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens(),
		LatencyMs:        latency,
		EstimatedCostUSD: costUSD,
		Provider:         attempt.Provider,
		Model:            attempt.Model,
	}

	p.record(ctx, types.MetricsRecord{
		Timestamp:        time.Now().UTC(),
		Question:         p.loggedQuestion(question),
		Provider:         attempt.Provider,
		Model:            attempt.Model,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens(),
		LatencyMs:        latency,
		EstimatedCostUSD: costUSD,
		SafetyPassed:     true,
		QuestionHash:     p.redactor.Hash(question),
		OutputHash:       p.redactor.Hash(resp.Answer),
	})
	p.recordQuery(telemetry.QueryLabels{
		Provider:         attempt.Provider,
		Model:            attempt.Model,
		Outcome:          outcome,
		DurationMs:       latency,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		CostUSD:          costUSD,
	})

	p.logger.Info("question answered",
		"provider", attempt.Provider,
		"model", attempt.Model,
		"outcome", outcome,
		"fell_back", attempt.FellBack,
		"latency_ms", latency,
		"total_tokens", result.TotalTokens(),
	)
	return resp, nil
}

// parseResponse decodes the model payload. Malformed content degrades to a
// low-confidence error payload instead of failing the request.
func (p *Pipeline) parseResponse(content string) types.QueryResponse {
	var payload providerPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &payload); err != nil {
		p.logger.Warn("provider returned unparseable payload", "error", err)
		msg := "Provider returned a malformed response"
		return types.QueryResponse{
			Answer:     parseErrorAnswer,
			Confidence: 0,
			Actions:    parseErrorActions,
			Category:   types.CategoryOther,
			Error:      &msg,
		}
	}

	category := types.Category(payload.Category)
	if !category.Valid() {
		category = types.CategoryOther
	}
	confidence := payload.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return types.QueryResponse{
		Answer:     payload.Answer,
		Confidence: confidence,
		Actions:    payload.Actions,
		Category:   category,
		FollowUp:   payload.FollowUp,
	}
}

// blockOutput discards the model content and substitutes the fixed refusal
// payload. The usage record still reflects the tokens and cost spent.
func (p *Pipeline) blockOutput(ctx context.Context, question string, attempt *router.Attempt, costUSD, latency float64, outVerdict types.OutputVerdict) types.QueryResponse {
	p.logger.Warn("output blocked",
		"provider", attempt.Provider,
		"reason", outVerdict.Reason,
		"severity", string(outVerdict.Severity),
	)
	p.recordSafetyAction("output", "block")

	result := attempt.Result
	p.record(ctx, types.MetricsRecord{
		Timestamp:        time.Now().UTC(),
		Question:         p.loggedQuestion(question),
		Provider:         attempt.Provider,
		Model:            attempt.Model,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens(),
		LatencyMs:        latency,
		EstimatedCostUSD: costUSD,
		SafetyPassed:     false,
		QuestionHash:     p.redactor.Hash(question),
		OutputHash:       p.redactor.Hash(refusalAnswer),
	})
	p.recordQuery(telemetry.QueryLabels{
		Provider:         attempt.Provider,
		Model:            attempt.Model,
		Outcome:          outcomeBlocked,
		DurationMs:       latency,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		CostUSD:          costUSD,
	})

	warning := outVerdict.Reason
	return types.QueryResponse{
		Answer:        refusalAnswer,
		Confidence:    1.0,
		Actions:       refusalActions,
		Category:      types.CategoryOther,
		SafetyWarning: &warning,
		Metrics: types.ResponseMetrics{
			PromptTokens:     result.PromptTokens,
			CompletionTokens: result.CompletionTokens,
			TotalTokens:      result.TotalTokens(),
			LatencyMs:        latency,
			EstimatedCostUSD: costUSD,
			Provider:         attempt.Provider,
			Model:            attempt.Model,
		},
	}
}

// failAll produces the terminal payload when no provider answered. Raw
// provider error text stays in the logs; the caller sees a short message.
func (p *Pipeline) failAll(ctx context.Context, question string, err error, start time.Time) types.QueryResponse {
	latency := sinceMs(start)
	msg := providerErrorText
	if err == router.ErrNoProvider {
		msg = noProviderText
	}
	p.logger.Error("no provider answered", "error", err, "latency_ms", latency)

	p.record(ctx, types.MetricsRecord{
		Timestamp:    time.Now().UTC(),
		Question:     p.loggedQuestion(question),
		LatencyMs:    latency,
		SafetyPassed: true,
		QuestionHash: p.redactor.Hash(question),
	})
	p.recordQuery(telemetry.QueryLabels{Outcome: outcomeFailed, DurationMs: latency})

	return types.QueryResponse{
		Answer:     "",
		Confidence: 0,
		Category:   types.CategoryOther,
		Error:      &msg,
		Metrics:    types.ResponseMetrics{LatencyMs: latency},
	}
}

func (p *Pipeline) loggedQuestion(question string) string {
	redacted := p.redactor.Redact(question)
	runes := []rune(redacted)
	if len(runes) > maxLoggedQuestion {
		return string(runes[:maxLoggedQuestion])
	}
	return redacted
}

func (p *Pipeline) record(ctx context.Context, rec types.MetricsRecord) {
	if err := p.recorder.Record(ctx, rec); err != nil {
		p.logger.Error("failed to append usage record", "error", err)
	}
}

func (p *Pipeline) recordQuery(labels telemetry.QueryLabels) {
	if p.telemetry != nil {
		p.telemetry.RecordQuery(labels)
	}
}

func (p *Pipeline) recordSafetyAction(gate, action string) {
	if p.telemetry != nil {
		p.telemetry.RecordSafetyAction(gate, action)
	}
}

func (p *Pipeline) recordFallback(to string) {
	if p.telemetry != nil {
		p.telemetry.RecordFallback(to)
	}
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
