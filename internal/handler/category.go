package handler

import (
	"log/slog"
	"net/http"

	"taskly/internal/httputil"
	"taskly/internal/service"
)

// CategoryHandler handles category and subcategory HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
	subService      *service.SubCategoryService
	logger          *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(
	categoryService *service.CategoryService,
	subService *service.SubCategoryService,
	logger *slog.Logger,
) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		subService:      subService,
		logger:          logger,
	}
}

// Create creates a new category
// POST /api/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCategoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Create(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, category)
}

// List returns all of the caller's categories
// GET /api/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context(), httputil.GetUserID(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, categories)
}

// Get returns a single category
// GET /api/categories/{id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.categoryService.Get(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, category)
}

// Update applies a partial update to a category
// PATCH /api/categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateCategoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Update(r.Context(), httputil.GetUserID(r), r.PathValue("id"), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, category)
}

// Delete removes a category
// DELETE /api/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categoryService.Delete(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateSub creates a new subcategory
// POST /api/subcategories
func (h *CategoryHandler) CreateSub(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSubCategoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.subService.Create(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, sub)
}

// ListSubs returns the caller's subcategories, optionally filtered by
// parent category
// GET /api/subcategories?category_id=...
func (h *CategoryHandler) ListSubs(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var err error
	var subs interface{}
	if categoryID := r.URL.Query().Get("category_id"); categoryID != "" {
		subs, err = h.subService.ListByCategory(r.Context(), userID, categoryID)
	} else {
		subs, err = h.subService.List(r.Context(), userID)
	}
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, subs)
}

// GetSub returns a single subcategory
// GET /api/subcategories/{id}
func (h *CategoryHandler) GetSub(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subService.Get(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sub)
}

// UpdateSub applies a partial update to a subcategory
// PATCH /api/subcategories/{id}
func (h *CategoryHandler) UpdateSub(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSubCategoryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.subService.Update(r.Context(), httputil.GetUserID(r), r.PathValue("id"), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sub)
}

// DeleteSub removes a subcategory
// DELETE /api/subcategories/{id}
func (h *CategoryHandler) DeleteSub(w http.ResponseWriter, r *http.Request) {
	if err := h.subService.Delete(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
