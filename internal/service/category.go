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

// CreateCategoryRequest is the payload for category creation.
type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Validate checks the create category request fields.
func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
	)
}

// UpdateCategoryRequest is the payload for partial category updates.
type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

// CategoryService handles per-user task categories.
type CategoryService struct {
	categoryRepo repositories.CategoryRepository
	logger       *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repositories.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// Create stores a new category. Names are unique per user.
func (s *CategoryService) Create(ctx context.Context, userID string, req *CreateCategoryRequest) (*models.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	existing, err := s.categoryRepo.GetByName(ctx, userID, req.Name)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ConflictError{
			Message:      "a category with this name already exists",
			ResourceType: "category",
			ResourceID:   existing.ID,
		}
	}

	now := time.Now()
	category := &models.Category{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      req.Name,
		Icon:      req.Icon,
		Color:     req.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created", "category_id", category.ID, "user_id", userID)

	return category, nil
}

// List returns all of the user's categories.
func (s *CategoryService) List(ctx context.Context, userID string) ([]models.Category, error) {
	return s.categoryRepo.List(ctx, userID)
}

// Get returns a category, enforcing that the caller owns it.
func (s *CategoryService) Get(ctx context.Context, userID, id string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, &domain.ForbiddenError{Message: "you do not have access to this category"}
	}
	return category, nil
}

// Update applies a partial update to the caller's category.
func (s *CategoryService) Update(ctx context.Context, userID, id string, req *UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != category.Name {
		existing, err := s.categoryRepo.GetByName(ctx, userID, *req.Name)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		if existing != nil {
			return nil, &domain.ConflictError{
				Message:      "a category with this name already exists",
				ResourceType: "category",
				ResourceID:   existing.ID,
			}
		}
		category.Name = *req.Name
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.Color != nil {
		category.Color = *req.Color
	}

	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// Delete removes the caller's category. Tasks keep their category string.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("category deleted", "category_id", id, "user_id", userID)

	return nil
}
