package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"taskly/internal/auth"
	"taskly/internal/httputil"
)

// publicPaths lists exact request paths that skip token verification.
var publicPaths = map[string]bool{
	"/api/users/register": true,
	"/api/users/login":    true,
	"/health":             true,
}

// Auth middleware validates the Bearer token and stores the caller's
// user ID in the request context for downstream handlers.
func Auth(verifier auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "Authorization header must use Bearer scheme")
				return
			}

			claims, err := verifier.VerifyToken(tokenString)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.UserID()))
		})
	}
}
