package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"account-gateway/internal/identity"
	"account-gateway/internal/platform/metrics"
	"account-gateway/pkg/requestcontext"
)

// RequireAuth extracts the bearer credential, verifies it, and injects the
// resulting principal into the request context. No mutation handler runs
// without it: a missing header is a 401, a rejected token a 403, both with
// the gateway's error envelope.
func RequireAuth(verifier identity.Verifier, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				m.AuthFailures.Inc()
				logger.WarnContext(ctx, "missing bearer credential",
					"request_id", requestcontext.RequestID(ctx),
					"method", r.Method,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Missing Authorization header"}`))
				return
			}

			principal, err := verifier.Verify(ctx, token)
			if err != nil {
				m.AuthFailures.Inc()
				logger.WarnContext(ctx, "rejected bearer credential",
					"request_id", requestcontext.RequestID(ctx),
					"method", r.Method,
					"path", r.URL.Path,
					"token_length", len(token),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"Invalid or expired token"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, principal)))
		})
	}
}
