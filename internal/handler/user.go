package handler

import (
	"log/slog"
	"net/http"

	"taskly/internal/httputil"
	"taskly/internal/service"
)

// UserHandler handles account HTTP requests
type UserHandler struct {
	userService *service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Register creates a new account
// POST /api/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, user)
}

// Login authenticates and returns a token
// POST /api/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Me returns the authenticated user's profile
// GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// Update applies a partial update to the authenticated user's profile
// PATCH /api/users/me
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Update(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// Delete removes the authenticated user's account and owned data
// DELETE /api/users/me
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.Delete(r.Context(), httputil.GetUserID(r)); err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
