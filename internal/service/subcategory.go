package service

import (
	"context"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"taskly/internal/config"
	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/domain/repositories"
)

// CreateSubCategoryRequest is the payload for subcategory creation. The
// parent category is referenced by name, matching the task payload shape.
type CreateSubCategoryRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
}

// Validate checks the create subcategory request fields.
func (r CreateSubCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&r.Category, validation.Required),
	)
}

// UpdateSubCategoryRequest is the payload for partial subcategory updates.
type UpdateSubCategoryRequest struct {
	Name  *string `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

// SubCategoryService handles per-user subcategories.
type SubCategoryService struct {
	subRepo      repositories.SubCategoryRepository
	categoryRepo repositories.CategoryRepository
	logger       *slog.Logger
}

// NewSubCategoryService creates a new subcategory service.
func NewSubCategoryService(
	subRepo repositories.SubCategoryRepository,
	categoryRepo repositories.CategoryRepository,
	logger *slog.Logger,
) *SubCategoryService {
	return &SubCategoryService{
		subRepo:      subRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// Create stores a new subcategory under an existing category of the user.
func (s *SubCategoryService) Create(ctx context.Context, userID string, req *CreateSubCategoryRequest) (*models.SubCategory, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	parent, err := s.categoryRepo.GetByName(ctx, userID, req.Category)
	if err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Message: "category not found"}
		}
		return nil, err
	}

	existing, err := s.subRepo.GetByName(ctx, userID, req.Name)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ConflictError{
			Message:      "a subcategory with this name already exists",
			ResourceType: "subcategory",
			ResourceID:   existing.ID,
		}
	}

	now := time.Now()
	sub := &models.SubCategory{
		ID:           uuid.New().String(),
		UserID:       userID,
		CategoryID:   parent.ID,
		CategoryName: parent.Name,
		Name:         req.Name,
		Icon:         req.Icon,
		Color:        req.Color,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subcategory created", "subcategory_id", sub.ID, "user_id", userID)

	return sub, nil
}

// List returns all of the user's subcategories.
func (s *SubCategoryService) List(ctx context.Context, userID string) ([]models.SubCategory, error) {
	return s.subRepo.List(ctx, userID)
}

// ListByCategory returns the user's subcategories under one category.
func (s *SubCategoryService) ListByCategory(ctx context.Context, userID, categoryID string) ([]models.SubCategory, error) {
	return s.subRepo.ListByCategory(ctx, userID, categoryID)
}

// Get returns a subcategory, enforcing that the caller owns it.
func (s *SubCategoryService) Get(ctx context.Context, userID, id string) (*models.SubCategory, error) {
	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, &domain.ForbiddenError{Message: "you do not have access to this subcategory"}
	}
	return sub, nil
}

// Update applies a partial update to the caller's subcategory.
func (s *SubCategoryService) Update(ctx context.Context, userID, id string, req *UpdateSubCategoryRequest) (*models.SubCategory, error) {
	sub, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != sub.Name {
		existing, err := s.subRepo.GetByName(ctx, userID, *req.Name)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		if existing != nil {
			return nil, &domain.ConflictError{
				Message:      "a subcategory with this name already exists",
				ResourceType: "subcategory",
				ResourceID:   existing.ID,
			}
		}
		sub.Name = *req.Name
	}
	if req.Icon != nil {
		sub.Icon = *req.Icon
	}
	if req.Color != nil {
		sub.Color = *req.Color
	}

	sub.UpdatedAt = time.Now()

	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

// Delete removes the caller's subcategory.
func (s *SubCategoryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	if err := s.subRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("subcategory deleted", "subcategory_id", id, "user_id", userID)

	return nil
}
