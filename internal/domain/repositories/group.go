package repositories

import (
	"context"

	"taskly/internal/domain/models"
)

// GroupRepository persists groups.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (*models.Group, error)
	GetByName(ctx context.Context, ownerID, name string) (*models.Group, error)
	ListForUser(ctx context.Context, userID string, page, pageSize int) ([]models.Group, error)
	Search(ctx context.Context, userID, query string) ([]models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error
}
