package metrics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/copperline/askgate/internal/types"
)

const insertQuery = `
INSERT INTO query_log (
	timestamp, question, provider, model,
	tokens_prompt, tokens_completion, total_tokens,
	latency_ms, estimated_cost_usd, safety_check_passed,
	question_hash, output_hash
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// PostgresRecorder appends records to the query_log table. The table is
// insert-only; schema management lives in cmd/migrate. The pool serializes
// writes, so no extra locking is needed here.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

func NewPostgresRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{pool: pool}
}

func (r *PostgresRecorder) Record(ctx context.Context, rec types.MetricsRecord) error {
	_, err := r.pool.Exec(ctx, insertQuery,
		rec.Timestamp,
		rec.Question,
		rec.Provider,
		rec.Model,
		rec.PromptTokens,
		rec.CompletionTokens,
		rec.TotalTokens,
		rec.LatencyMs,
		rec.EstimatedCostUSD,
		rec.SafetyPassed,
		rec.QuestionHash,
		rec.OutputHash,
	)
	if err != nil {
		return fmt.Errorf("insert query_log row: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Close() error {
	r.pool.Close()
	return nil
}
