package handler

import (
	"io"
	"log/slog"
	"net/http"

	"taskly/internal/config"
	"taskly/internal/httputil"
	"taskly/internal/service"
)

// AnnotationHandler handles annotation HTTP requests, including
// membership, group links and attachments
type AnnotationHandler struct {
	annotationService *service.AnnotationService
	logger            *slog.Logger
}

// NewAnnotationHandler creates a new annotation handler
func NewAnnotationHandler(annotationService *service.AnnotationService, logger *slog.Logger) *AnnotationHandler {
	return &AnnotationHandler{
		annotationService: annotationService,
		logger:            logger,
	}
}

// Create creates a new ungrouped annotation
// POST /api/annotations
func (h *AnnotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAnnotationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	annotation, err := h.annotationService.Create(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, annotation)
}

// CreateInGroup creates a new annotation linked to a group
// POST /api/groups/{groupId}/annotations
func (h *AnnotationHandler) CreateInGroup(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAnnotationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	annotation, err := h.annotationService.CreateInGroup(r.Context(), httputil.GetUserID(r), r.PathValue("groupId"), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, annotation)
}

// List returns a page of annotations the caller owns or is a member of
// GET /api/annotations?p=1
func (h *AnnotationHandler) List(w http.ResponseWriter, r *http.Request) {
	annotations, err := h.annotationService.List(r.Context(), httputil.GetUserID(r), httputil.Page(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, annotations)
}

// ListByGroup returns the annotations attached to a group
// GET /api/groups/{groupId}/annotations
func (h *AnnotationHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	annotations, err := h.annotationService.ListByGroup(r.Context(), r.PathValue("groupId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, annotations)
}

// Search matches the caller's annotations by title or category
// GET /api/annotations/search?q=...
func (h *AnnotationHandler) Search(w http.ResponseWriter, r *http.Request) {
	annotations, err := h.annotationService.Search(r.Context(), httputil.GetUserID(r), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, annotations)
}

// Get returns a single annotation
// GET /api/annotations/{annotationId}
func (h *AnnotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	annotation, err := h.annotationService.Get(r.Context(), r.PathValue("annotationId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, annotation)
}

// Update applies a partial update to an annotation
// PATCH /api/annotations/{annotationId}
func (h *AnnotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateAnnotationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	annotation, err := h.annotationService.Update(r.Context(), r.PathValue("annotationId"), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, annotation)
}

// Delete removes an annotation and its attachments
// DELETE /api/annotations/{annotationId}
func (h *AnnotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.annotationService.Delete(r.Context(), httputil.GetUserID(r), r.PathValue("annotationId")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMembers grants users access to an annotation
// POST /api/annotations/{annotationId}/members
func (h *AnnotationHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
	var req service.AddMembersRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.annotationService.AddMembers(r.Context(), r.PathValue("annotationId"), httputil.GetUserID(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// UpdateMemberRole changes a member's role on an annotation
// PATCH /api/annotations/{annotationId}/members
func (h *AnnotationHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateMemberRoleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.annotationService.UpdateMemberRole(r.Context(), r.PathValue("annotationId"), httputil.GetUserID(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// RemoveMember revokes a member's access to an annotation
// DELETE /api/annotations/{annotationId}/members/{userId}
func (h *AnnotationHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	result, err := h.annotationService.RemoveMember(r.Context(), r.PathValue("annotationId"), httputil.GetUserID(r), r.PathValue("userId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// AttachGroup links an annotation to a group
// POST /api/annotations/{annotationId}/groups/{groupId}
func (h *AnnotationHandler) AttachGroup(w http.ResponseWriter, r *http.Request) {
	result, err := h.annotationService.AttachGroup(r.Context(), r.PathValue("annotationId"), r.PathValue("groupId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// DetachGroup unlinks an annotation from a group
// DELETE /api/annotations/{annotationId}/groups/{groupId}
func (h *AnnotationHandler) DetachGroup(w http.ResponseWriter, r *http.Request) {
	result, err := h.annotationService.DetachGroup(r.Context(), r.PathValue("annotationId"), r.PathValue("groupId"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// UploadAttachment stores a file on an annotation
// POST /api/annotations/{annotationId}/attachments
func (h *AnnotationHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	// The multipart form is capped slightly above the file limit so the
	// service can report an oversize file instead of a generic parse error.
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize+1<<20)

	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")

	meta, err := h.annotationService.UploadAttachment(r.Context(), r.PathValue("annotationId"), header.Filename, contentType, data)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, meta)
}

// GetAttachment streams a stored file
// GET /api/annotations/{annotationId}/attachments/{name}
func (h *AnnotationHandler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	meta, data, err := h.annotationService.GetAttachment(r.Context(), r.PathValue("annotationId"), r.PathValue("name"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+meta.Name+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// DeleteAttachment removes a stored file
// DELETE /api/annotations/{annotationId}/attachments/{name}
func (h *AnnotationHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	if err := h.annotationService.DeleteAttachment(r.Context(), r.PathValue("annotationId"), r.PathValue("name")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
