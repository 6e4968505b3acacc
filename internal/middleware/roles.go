package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/httputil"
	"taskly/internal/service/sharing"
)

// RouteGuard wraps route handlers with membership-based authorization.
// Routes declare which roles suffice and which path parameters carry the
// shareable resource identifiers; the guard decides per request.
type RouteGuard struct {
	guard  *sharing.Guard
	logger *slog.Logger
}

// NewRouteGuard creates a RouteGuard backed by the given decision engine.
func NewRouteGuard(guard *sharing.Guard, logger *slog.Logger) *RouteGuard {
	return &RouteGuard{
		guard:  guard,
		logger: logger,
	}
}

// Require returns a wrapper that authorizes the caller before invoking the
// handler. annotationParam and groupParam name the path parameters holding
// the resource identifiers; pass "" for parameters the route does not have.
func (rg *RouteGuard) Require(roles []models.Role, annotationParam, groupParam string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			callerID := httputil.GetUserID(r)
			if callerID == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			var annotationID, groupID string
			if annotationParam != "" {
				annotationID = r.PathValue(annotationParam)
			}
			if groupParam != "" {
				groupID = r.PathValue(groupParam)
			}

			if err := rg.guard.Authorize(r.Context(), callerID, roles, annotationID, groupID); err != nil {
				rg.respondDenied(w, r, err)
				return
			}

			next(w, r)
		}
	}
}

func (rg *RouteGuard) respondDenied(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	// The store reports missing resources as a wrapped sentinel.
	if errors.Is(err, domain.ErrNotFound) {
		httputil.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	rg.logger.Error("authorization check failed",
		"path", r.URL.Path,
		"error", err,
	)
	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}
