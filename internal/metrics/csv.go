package metrics

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/copperline/askgate/internal/types"
)

// CSVRecorder appends records to a flat CSV file. A mutex enforces the
// single-writer discipline so concurrent pipeline calls cannot interleave
// rows.
type CSVRecorder struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewCSVRecorder opens (or creates) the log file and writes the column
// header exactly once: if the file already has content, the header is not
// rewritten.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create metrics dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open metrics log %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat metrics log: %w", err)
	}
	if info.Size() == 0 {
		w := csv.NewWriter(file)
		if err := w.Write(Columns); err != nil {
			file.Close()
			return nil, fmt.Errorf("write metrics header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("flush metrics header: %w", err)
		}
	}

	return &CSVRecorder{path: path, file: file}, nil
}

// Record appends one row. The write is flushed before returning so a crash
// cannot truncate a previously acknowledged record.
func (r *CSVRecorder) Record(_ context.Context, rec types.MetricsRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := csv.NewWriter(r.file)
	row := []string{
		rec.Timestamp.Format(time.RFC3339),
		rec.Question,
		rec.Provider,
		rec.Model,
		strconv.Itoa(rec.PromptTokens),
		strconv.Itoa(rec.CompletionTokens),
		strconv.Itoa(rec.TotalTokens),
		strconv.FormatFloat(rec.LatencyMs, 'f', 2, 64),
		strconv.FormatFloat(rec.EstimatedCostUSD, 'f', 6, 64),
		strconv.FormatBool(rec.SafetyPassed),
		rec.QuestionHash,
		rec.OutputHash,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write metrics row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush metrics row: %w", err)
	}
	return nil
}

func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}
