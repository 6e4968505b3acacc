package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"taskly/internal/domain"
	"taskly/internal/httputil"
)

// respondError translates service errors into HTTP responses. Errors
// implementing domain.HTTPError map to their status code; anything else
// is logged and reported as a 500 without leaking internals.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		extras := map[string]interface{}{}
		if conflictErr.ResourceType != "" {
			extras["resource_type"] = conflictErr.ResourceType
		}
		if conflictErr.ResourceID != "" {
			extras["resource_id"] = conflictErr.ResourceID
		}
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), extras)
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	// Repositories wrap sentinels rather than typed errors.
	if status, ok := statusFromSentinel(err); ok {
		httputil.RespondError(w, status, err.Error())
		return
	}

	logger.Error("request failed", "error", err)
	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}

// statusFromSentinel classifies errors carried as wrapped sentinels.
func statusFromSentinel(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, true
	}
	return 0, false
}
