package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"campusdrive/internal/auth"
	"campusdrive/internal/httputil"
)

// AuthMiddleware verifies the bearer token and stores the actor in the
// request context. Paths in public skip verification.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger, public ...string) func(http.Handler) http.Handler {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if open[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "authorization token required")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			actor := claims.Actor()
			if actor.AccountID == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "token has no subject")
				return
			}
			next.ServeHTTP(w, httputil.WithActor(r, actor))
		})
	}
}

// extractToken reads the Authorization header, falling back to the token
// query parameter for WebSocket upgrades that cannot set headers
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return r.URL.Query().Get("token")
}
