package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/copperline/askgate/internal/auth"
	"github.com/copperline/askgate/internal/config"
	"github.com/copperline/askgate/internal/cost"
	"github.com/copperline/askgate/internal/gateway"
	"github.com/copperline/askgate/internal/metrics"
	"github.com/copperline/askgate/internal/pipeline"
	"github.com/copperline/askgate/internal/policy"
	"github.com/copperline/askgate/internal/prompt"
	"github.com/copperline/askgate/internal/ratelimit"
	"github.com/copperline/askgate/internal/redact"
	"github.com/copperline/askgate/internal/router"
	"github.com/copperline/askgate/internal/safety"
	"github.com/copperline/askgate/internal/telemetry"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	flag.Parse()

	bootstrap := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	loader := config.NewLoader(*configDir, bootstrap)
	if err := loader.Load(); err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg := loader.Config()

	logger := newLogger(cfg.Telemetry)
	slog.SetDefault(logger)

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	// Durable usage log
	recorder, dbPool, err := buildRecorder(cfg.Metrics, logger)
	if err != nil {
		logger.Error("failed to open usage log", "error", err)
		os.Exit(1)
	}
	defer recorder.Close()
	if dbPool != nil {
		if err := dbPool.Ping(context.Background()); err != nil {
			logger.Warn("database not reachable, usage records will fail", "error", err)
		} else {
			logger.Info("database connected")
		}
	}

	// Redis backs the rate limiter; without it the limiter fails open.
	var rdb *redis.Client
	if cfg.RateLimit.Enabled && cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis not reachable, rate limiting fails open", "error", err)
			rdb = nil
		} else {
			logger.Info("redis connected")
		}
	}

	// Provider registry, rebuilt on config reload
	registry := router.BuildFromConfig(cfg.Routing, loader.Providers())
	loader.OnReload(func() {
		reloaded := loader.Config()
		registry.Swap(router.BuildFromConfig(reloaded.Routing, loader.Providers()))
		logger.Info("provider registry reloaded", "providers", registry.Names())
	})
	if len(registry.Names()) == 0 {
		logger.Warn("no provider has credentials, queries will fail until one is configured")
	}

	healthTracker := router.NewHealthTracker()
	promMetrics := telemetry.NewMetrics()
	redactor := redact.New()
	prompts := prompt.Load(cfg.Prompt, logger)

	var policies *policy.Evaluator
	if cfg.Policy.Enabled {
		policies = policy.NewEvaluator(cfg.Policy, logger)
		if err := policies.Load(); err != nil {
			logger.Error("failed to load policies", "error", err)
			os.Exit(1)
		}
	}

	pipe := pipeline.New(pipeline.Deps{
		Checker:      safety.NewChecker(cfg.Safety),
		Sanitizer:    safety.NewSanitizer(),
		Redactor:     redactor,
		OutputGate:   safety.NewOutputGate(redactor),
		Prompts:      prompts,
		Orchestrator: router.NewOrchestrator(registry, healthTracker, logger),
		Costs:        cost.NewCalculator(loader.Providers()),
		Recorder:     recorder,
		Telemetry:    promMetrics,
		Logger:       logger,
	})

	handler := gateway.NewHandler(pipe, registry, healthTracker, prompts, redactor, policies, logger)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)

	r.Get("/", handler.Root)
	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth, logger))
		r.Use(ratelimit.Middleware(ratelimit.NewLimiter(rdb), cfg.RateLimit, logger))
		if cfg.Routing.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.Routing.RequestTimeout))
		}
		r.Post("/v1/query", handler.Query)
		r.Get("/v1/prompts", handler.ListPrompts)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("askgate starting", "addr", addr, "version", version, "providers", registry.Names())
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("askgate stopped")
}

func newLogger(cfg config.TelemetryConfig) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// buildRecorder opens the configured usage-log backend. The pool is returned
// so main can ping it; it is owned by the recorder.
func buildRecorder(cfg config.MetricsConfig, logger *slog.Logger) (metrics.Recorder, *pgxpool.Pool, error) {
	switch cfg.Backend {
	case "postgres":
		pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return metrics.NewPostgresRecorder(pool), pool, nil
	case "csv":
		rec, err := metrics.NewCSVRecorder(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return rec, nil, nil
	default:
		logger.Warn("no usage log backend configured, records will be discarded")
		return metrics.NopRecorder{}, nil, nil
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

func generateRequestID() string {
	now := time.Now()
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("req_%d_%s", now.UnixMilli(), hex.EncodeToString(b))
}
