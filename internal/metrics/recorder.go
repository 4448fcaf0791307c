// Package metrics persists the append-only usage log. Every record reaching
// this package has already been redacted and hashed; raw question or
// response text is never written.
package metrics

import (
	"context"

	"github.com/copperline/askgate/internal/types"
)

// Columns is the fixed durable schema, in order. Both backends write exactly
// these fields.
var Columns = []string{
	"timestamp", "question", "provider", "model",
	"tokens_prompt", "tokens_completion", "total_tokens",
	"latency_ms", "estimated_cost_usd", "safety_check_passed",
	"question_hash", "output_hash",
}

// Recorder appends usage records to a durable log. Implementations never
// rewrite or delete prior records and must serialize concurrent appends.
type Recorder interface {
	Record(ctx context.Context, rec types.MetricsRecord) error
	Close() error
}

// NopRecorder discards records. Used when no durable log is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, types.MetricsRecord) error { return nil }
func (NopRecorder) Close() error                                      { return nil }
