package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/copperline/askgate/internal/config"
	"github.com/copperline/askgate/internal/httputil"
)

// Middleware returns chi middleware that authenticates requests via Bearer
// token against the configured key hashes. When auth is disabled requests
// pass through unchanged.
func Middleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	hashes := make(map[string]struct{}, len(cfg.KeyHashes))
	for _, h := range cfg.KeyHashes {
		hashes[strings.ToLower(h)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}
			reqID := w.Header().Get("X-Request-ID")

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteAuthError(w, reqID, "Missing Authorization header. Use: Authorization: Bearer <api-key>")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				httputil.WriteAuthError(w, reqID, "Invalid Authorization format. Use: Authorization: Bearer <api-key>")
				return
			}
			if token == "" {
				httputil.WriteAuthError(w, reqID, "Empty API key")
				return
			}

			keyHash := HashKey(token)
			if _, ok := hashes[keyHash]; !ok {
				logger.Warn("auth failed: key not recognized", "key_prefix", KeyPrefix(token))
				httputil.WriteAuthError(w, reqID, "Invalid API key")
				return
			}

			ctx := ContextWithAuth(r.Context(), &AuthInfo{
				KeyHash: keyHash,
				Prefix:  KeyPrefix(token),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
