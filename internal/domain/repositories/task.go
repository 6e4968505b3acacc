package repositories

import (
	"context"
	"time"

	"taskly/internal/domain/models"
)

// TaskRepository persists tasks. All reads are scoped to the owning user.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context, userID string, page, pageSize int) ([]models.Task, error)
	// Search matches name/category/subcategory case-insensitively; when
	// the query parses as a date it also matches tasks on that day.
	Search(ctx context.Context, userID, query string) ([]models.Task, error)
	// FindDuplicate returns the task with the same name, category and day
	// for the user, or nil.
	FindDuplicate(ctx context.Context, userID, name, category string, date time.Time) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
	// RefreshStatuses re-derives the day-based status of every one of the
	// user's tasks except COMPLETED ones. dayStart is the start of the
	// current day; it returns the number of rows written.
	RefreshStatuses(ctx context.Context, userID string, dayStart time.Time) (int64, error)
	// DeleteAllForUser removes every task the user owns.
	DeleteAllForUser(ctx context.Context, userID string) error
}
