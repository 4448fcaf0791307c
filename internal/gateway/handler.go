// Package gateway exposes the pipeline over HTTP.
package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/copperline/askgate/internal/auth"
	"github.com/copperline/askgate/internal/httputil"
	"github.com/copperline/askgate/internal/pipeline"
	"github.com/copperline/askgate/internal/policy"
	"github.com/copperline/askgate/internal/prompt"
	"github.com/copperline/askgate/internal/redact"
	"github.com/copperline/askgate/internal/router"
)

// maxBodyBytes bounds the request body; questions are capped at 2000 chars
// well below this.
const maxBodyBytes = 64 * 1024

// Handler holds dependencies for the HTTP handlers.
type Handler struct {
	pipeline      *pipeline.Pipeline
	registry      *router.Registry
	healthTracker *router.HealthTracker
	prompts       *prompt.Store
	redactor      *redact.Redactor
	policies      *policy.Evaluator
	logger        *slog.Logger
}

func NewHandler(p *pipeline.Pipeline, registry *router.Registry, healthTracker *router.HealthTracker, prompts *prompt.Store, redactor *redact.Redactor, policies *policy.Evaluator, logger *slog.Logger) *Handler {
	return &Handler{
		pipeline:      p,
		registry:      registry,
		healthTracker: healthTracker,
		prompts:       prompts,
		redactor:      redactor,
		policies:      policies,
		logger:        logger,
	}
}

type queryRequest struct {
	Question string `json:"question"`
}

// Query handles POST /v1/query
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var req queryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}
	if req.Question == "" {
		httputil.WriteBadRequestError(w, reqID, "question is required")
		return
	}

	if h.policies != nil && h.policies.Enabled() {
		keyPrefix := ""
		if info, ok := auth.AuthFromContext(r.Context()); ok {
			keyPrefix = info.Prefix
		}
		input := policy.NewInput(keyPrefix, r.RemoteAddr, h.redactor.Hash(req.Question), len(req.Question))
		allowed, reason, err := h.policies.Evaluate(r.Context(), input)
		if err != nil {
			h.logger.Error("policy evaluation failed", "request_id", reqID, "error", err)
		}
		if !allowed {
			h.logger.Warn("request denied by policy", "request_id", reqID, "reason", reason)
			httputil.WritePolicyDeniedError(w, reqID, "Request denied by policy: "+reason)
			return
		}
	}

	resp, err := h.pipeline.Process(r.Context(), req.Question)
	if err != nil {
		msg := "Unable to process the question right now"
		if errors.Is(err, router.ErrNoProvider) {
			msg = "No provider configured"
		}
		httputil.WriteServiceUnavailableError(w, reqID, msg)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type healthResponse struct {
	Status    string                          `json:"status"`
	Providers []string                        `json:"providers"`
	Stats     map[string]router.ProviderStats `json:"stats,omitempty"`
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Providers: h.registry.Names(),
		Stats:     h.healthTracker.Snapshot(),
	}
	if len(resp.Providers) == 0 {
		resp.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type promptsResponse struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
}

// ListPrompts handles GET /v1/prompts
func (h *Handler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(promptsResponse{
		Active:    h.prompts.Active(),
		Available: h.prompts.List(),
	})
}

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "askgate",
		"query":   "POST /v1/query",
		"health":  "GET /health",
	})
}
