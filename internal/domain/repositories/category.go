package repositories

import (
	"context"

	"taskly/internal/domain/models"
)

// CategoryRepository persists per-user task categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	// CreateBatch inserts several categories at once (default set on signup).
	CreateBatch(ctx context.Context, categories []models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, userID, name string) (*models.Category, error)
	List(ctx context.Context, userID string) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
	// DeleteAllForUser removes every category the user owns. Used when an
	// account is deleted.
	DeleteAllForUser(ctx context.Context, userID string) error
}

// SubCategoryRepository persists per-user subcategories.
type SubCategoryRepository interface {
	Create(ctx context.Context, sub *models.SubCategory) error
	GetByID(ctx context.Context, id string) (*models.SubCategory, error)
	GetByName(ctx context.Context, userID, name string) (*models.SubCategory, error)
	List(ctx context.Context, userID string) ([]models.SubCategory, error)
	ListByCategory(ctx context.Context, userID, categoryID string) ([]models.SubCategory, error)
	Update(ctx context.Context, sub *models.SubCategory) error
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}
