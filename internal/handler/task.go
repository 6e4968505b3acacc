package handler

import (
	"log/slog"
	"net/http"

	"taskly/internal/httputil"
	"taskly/internal/service"
)

// TaskHandler handles task HTTP requests
type TaskHandler struct {
	taskService *service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// Create creates a new task
// POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTaskRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.taskService.Create(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, task)
}

// List returns a page of the caller's tasks
// GET /api/tasks?p=1
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.List(r.Context(), httputil.GetUserID(r), httputil.Page(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tasks)
}

// Search matches the caller's tasks by name, category or date
// GET /api/tasks/search?q=...
func (h *TaskHandler) Search(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.Search(r.Context(), httputil.GetUserID(r), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tasks)
}

// RefreshStatuses reclassifies all of the caller's non-completed tasks
// against the current day
// PATCH /api/tasks/update-status
func (h *TaskHandler) RefreshStatuses(w http.ResponseWriter, r *http.Request) {
	updated, err := h.taskService.RefreshStatuses(r.Context(), httputil.GetUserID(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

// Get returns a single task
// GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskService.Get(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, task)
}

// Update applies a partial update to a task
// PATCH /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateTaskRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.taskService.Update(r.Context(), httputil.GetUserID(r), r.PathValue("id"), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, task)
}

// Delete removes a task
// DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.taskService.Delete(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
