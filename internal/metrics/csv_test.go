package metrics

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/copperline/askgate/internal/types"
)

func testRecord() types.MetricsRecord {
	return types.MetricsRecord{
		Timestamp:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Question:         "How do I reset my password?",
		Provider:         "openrouter",
		Model:            "openai/gpt-3.5-turbo",
		PromptTokens:     100,
		CompletionTokens: 50,
		TotalTokens:      150,
		LatencyMs:        1250.5,
		EstimatedCostUSD: 0.000625,
		SafetyPassed:     true,
		QuestionHash:     "abcdef0123456789",
		OutputHash:       "0123456789abcdef",
	}
}

func TestCSVRecorder_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")

	r, err := NewCSVRecorder(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Record(context.Background(), testRecord()); err != nil {
		t.Fatal(err)
	}
	r.Close()

	// Reopen: the header must not be rewritten.
	r2, err := NewCSVRecorder(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := r2.Record(context.Background(), testRecord()); err != nil {
		t.Fatal(err)
	}
	r2.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "timestamp,question"); got != 1 {
		t.Errorf("expected exactly one header, found %d", got)
	}

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 { // header + 2 records
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, col := range Columns {
		if rows[0][i] != col {
			t.Errorf("header column %d: got %q, want %q", i, rows[0][i], col)
		}
	}
}

func TestCSVRecorder_RowContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	r, err := NewCSVRecorder(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.Record(context.Background(), testRecord()); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	row := rows[1]
	if row[2] != "openrouter" {
		t.Errorf("provider column: got %q", row[2])
	}
	if row[4] != "100" || row[5] != "50" || row[6] != "150" {
		t.Errorf("token columns wrong: %v", row[4:7])
	}
	if row[8] != "0.000625" {
		t.Errorf("cost column: got %q", row[8])
	}
	if row[9] != "true" {
		t.Errorf("safety column: got %q", row[9])
	}
}

func TestCSVRecorder_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	r, err := NewCSVRecorder(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Record(context.Background(), testRecord()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	data, _ := os.ReadFile(path)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("interleaved writes corrupted the log: %v", err)
	}
	if len(rows) != n+1 {
		t.Errorf("expected %d rows, got %d", n+1, len(rows))
	}
}

func TestCSVRecorder_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "metrics.csv")
	r, err := NewCSVRecorder(path)
	if err != nil {
		t.Fatalf("expected directory to be created: %v", err)
	}
	r.Close()
}
