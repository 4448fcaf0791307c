// Command askgate-cli runs the query pipeline interactively from a terminal,
// without the HTTP server. One question per line; "exit" or "quit" to leave.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/copperline/askgate/internal/config"
	"github.com/copperline/askgate/internal/cost"
	"github.com/copperline/askgate/internal/metrics"
	"github.com/copperline/askgate/internal/pipeline"
	"github.com/copperline/askgate/internal/prompt"
	"github.com/copperline/askgate/internal/redact"
	"github.com/copperline/askgate/internal/router"
	"github.com/copperline/askgate/internal/safety"
	"github.com/copperline/askgate/internal/types"
)

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	question := flag.String("question", "", "ask a single question and exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := loader.Config()

	recorder, err := buildRecorder(cfg.Metrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open usage log: %v\n", err)
		os.Exit(1)
	}
	defer recorder.Close()

	registry := router.BuildFromConfig(cfg.Routing, loader.Providers())
	if len(registry.Names()) == 0 {
		fmt.Fprintln(os.Stderr, "no provider has credentials; set an API key in providers.yaml")
		os.Exit(1)
	}

	redactor := redact.New()
	pipe := pipeline.New(pipeline.Deps{
		Checker:      safety.NewChecker(cfg.Safety),
		Sanitizer:    safety.NewSanitizer(),
		Redactor:     redactor,
		OutputGate:   safety.NewOutputGate(redactor),
		Prompts:      prompt.Load(cfg.Prompt, logger),
		Orchestrator: router.NewOrchestrator(registry, router.NewHealthTracker(), logger),
		Costs:        cost.NewCalculator(loader.Providers()),
		Recorder:     recorder,
		Logger:       logger,
	})

	ask := func(q string) {
		ctx := context.Background()
		if cfg.Routing.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Routing.RequestTimeout)
			defer cancel()
		}
		resp, err := pipe.Process(ctx, q)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		printResponse(resp)
	}

	if *question != "" {
		ask(*question)
		return
	}

	fmt.Printf("askgate (providers: %s)\n", strings.Join(registry.Names(), ", "))
	fmt.Println("Ask a question, or type 'exit' to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		ask(line)
	}
}

func buildRecorder(cfg config.MetricsConfig) (metrics.Recorder, error) {
	if cfg.Backend == "csv" {
		return metrics.NewCSVRecorder(cfg.Path)
	}
	// The CLI never opens database pools; anything else falls back to nop.
	return metrics.NopRecorder{}, nil
}

func printResponse(resp types.QueryResponse) {
	fmt.Println()
	fmt.Printf("Answer:     %s\n", resp.Answer)
	fmt.Printf("Confidence: %.2f\n", resp.Confidence)
	fmt.Printf("Category:   %s\n", resp.Category)
	if len(resp.Actions) > 0 {
		fmt.Printf("Actions:    %s\n", strings.Join(resp.Actions, "; "))
	}
	if resp.FollowUp != nil && *resp.FollowUp != "" {
		fmt.Printf("Follow-up:  %s\n", *resp.FollowUp)
	}
	if resp.SafetyWarning != nil {
		fmt.Printf("Warning:    %s\n", *resp.SafetyWarning)
	}
	if resp.Error != nil {
		fmt.Printf("Error:      %s\n", *resp.Error)
	}
	if resp.Metrics.Provider != "" {
		fmt.Printf("[%s/%s  tokens=%d  latency=%.0fms  cost=$%.6f]\n",
			resp.Metrics.Provider,
			resp.Metrics.Model,
			resp.Metrics.TotalTokens,
			resp.Metrics.LatencyMs,
			resp.Metrics.EstimatedCostUSD,
		)
	}
	fmt.Println()
}
