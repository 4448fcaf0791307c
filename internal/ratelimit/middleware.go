package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/copperline/askgate/internal/auth"
	"github.com/copperline/askgate/internal/config"
	"github.com/copperline/askgate/internal/httputil"
)

const (
	headerRateLimitRequests          = "X-RateLimit-Limit-Requests"
	headerRateLimitRemainingRequests = "X-RateLimit-Remaining-Requests"
	headerRateLimitReset             = "X-RateLimit-Reset-Requests"
	headerRetryAfter                 = "Retry-After"
)

// Middleware returns chi middleware that enforces a per-caller request rate.
// The bucket key is the authenticated key hash when present, otherwise the
// remote address.
func Middleware(limiter *Limiter, cfg config.RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}
			reqID := w.Header().Get("X-Request-ID")

			result, _ := limiter.Check(r.Context(), bucketKey(r), cfg.RequestsPerMinute, time.Minute)

			w.Header().Set(headerRateLimitRequests, strconv.FormatInt(cfg.RequestsPerMinute, 10))
			w.Header().Set(headerRateLimitRemainingRequests, strconv.FormatInt(result.Remaining, 10))
			w.Header().Set(headerRateLimitReset, result.ResetAt.Format(time.RFC3339))

			if !result.Allowed {
				logger.Warn("rate limit exceeded",
					"request_id", reqID,
					"limit", cfg.RequestsPerMinute,
				)
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(result.RetryAfter.Seconds())))
				httputil.WriteRateLimitError(w, reqID, "Rate limit exceeded, please retry later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bucketKey(r *http.Request) string {
	if info, ok := auth.AuthFromContext(r.Context()); ok {
		return "key:" + info.KeyHash
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "addr:" + r.RemoteAddr
	}
	return "addr:" + host
}
