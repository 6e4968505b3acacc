package handler

import (
	"log/slog"
	"net/http"

	"taskly/internal/httputil"
	"taskly/internal/service"
)

// GroupHandler handles group HTTP requests
type GroupHandler struct {
	groupService *service.GroupService
	logger       *slog.Logger
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *service.GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
		logger:       logger,
	}
}

// Create creates a new group
// POST /api/groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateGroupRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.groupService.Create(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, group)
}

// List returns a page of groups the caller owns or is a member of
// GET /api/groups?p=1
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.List(r.Context(), httputil.GetUserID(r), httputil.Page(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, groups)
}

// Search matches the caller's groups by name
// GET /api/groups/search?q=...
func (h *GroupHandler) Search(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.Search(r.Context(), httputil.GetUserID(r), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, groups)
}

// Get returns a single group
// GET /api/groups/{groupId}
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	group, err := h.groupService.Get(r.Context(), r.PathValue("groupId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, group)
}

// Update applies a partial update to a group
// PATCH /api/groups/{groupId}
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateGroupRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.groupService.Update(r.Context(), r.PathValue("groupId"), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, group)
}

// Delete removes a group and detaches its annotations
// DELETE /api/groups/{groupId}
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.groupService.Delete(r.Context(), httputil.GetUserID(r), r.PathValue("groupId")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMembers grants users access to a group
// POST /api/groups/{groupId}/members
func (h *GroupHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
	var req service.AddMembersRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.groupService.AddMembers(r.Context(), r.PathValue("groupId"), httputil.GetUserID(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// UpdateMemberRole changes a member's role on a group
// PATCH /api/groups/{groupId}/members
func (h *GroupHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateMemberRoleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.groupService.UpdateMemberRole(r.Context(), r.PathValue("groupId"), httputil.GetUserID(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// RemoveMember revokes a member's access to a group
// DELETE /api/groups/{groupId}/members/{userId}
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	result, err := h.groupService.RemoveMember(r.Context(), r.PathValue("groupId"), httputil.GetUserID(r), r.PathValue("userId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
