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

// CreateTaskRequest is the payload for task creation.
type CreateTaskRequest struct {
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	SubCategory string    `json:"sub_category"`
	Priority    string    `json:"priority"`
	Date        time.Time `json:"date"`
	Subtasks    []string  `json:"subtasks"`
}

// Validate checks the create task request fields.
func (r CreateTaskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&r.Category, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&r.Date, validation.Required),
	)
}

// UpdateTaskRequest is the payload for partial task updates. Nil fields
// are left unchanged.
type UpdateTaskRequest struct {
	Name        *string            `json:"name"`
	Category    *string            `json:"category"`
	SubCategory *string            `json:"sub_category"`
	Priority    *string            `json:"priority"`
	Date        *time.Time         `json:"date"`
	Status      *models.TaskStatus `json:"status"`
	Subtasks    []models.Subtask   `json:"subtasks"`
}

// TaskService handles single-owner todo items.
type TaskService struct {
	taskRepo repositories.TaskRepository
	logger   *slog.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(taskRepo repositories.TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// deriveStatus classifies a task date relative to the current day.
// Past dates are PENDING (overdue), today's date is TODAY, and later
// dates are FUTURE.
func deriveStatus(date, now time.Time) models.TaskStatus {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}

	taskDay := day(date.In(now.Location()))
	today := day(now)

	switch {
	case taskDay.Before(today):
		return models.TaskStatusPending
	case taskDay.After(today):
		return models.TaskStatusFuture
	default:
		return models.TaskStatusToday
	}
}

// Create validates and stores a new task for the user. A task with the
// same name, category and day already existing for the user is a conflict.
func (s *TaskService) Create(ctx context.Context, userID string, req *CreateTaskRequest) (*models.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	dup, err := s.taskRepo.FindDuplicate(ctx, userID, req.Name, req.Category, req.Date)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if dup != nil {
		return nil, &domain.ConflictError{
			Message:      "a task with this name, category and date already exists",
			ResourceType: "task",
			ResourceID:   dup.ID,
		}
	}

	now := time.Now()

	subtasks := make([]models.Subtask, 0, len(req.Subtasks))
	for _, text := range req.Subtasks {
		subtasks = append(subtasks, models.Subtask{
			ID:     uuid.New().String(),
			Task:   text,
			Status: models.SubtaskPending,
		})
	}

	task := &models.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        req.Name,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Priority:    req.Priority,
		Date:        req.Date,
		Status:      deriveStatus(req.Date, now),
		Subtasks:    subtasks,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task created", "task_id", task.ID, "user_id", userID, "status", task.Status)

	return task, nil
}

// Get returns a task, enforcing that the caller owns it.
func (s *TaskService) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, &domain.ForbiddenError{Message: "you do not have access to this task"}
	}
	return task, nil
}

// List returns a page of the user's tasks.
func (s *TaskService) List(ctx context.Context, userID string, page int) ([]models.Task, error) {
	return s.taskRepo.List(ctx, userID, page, config.TaskPageSize)
}

// Search matches the user's tasks by name, category, subcategory or date.
func (s *TaskService) Search(ctx context.Context, userID, query string) ([]models.Task, error) {
	if query == "" {
		return nil, &domain.ValidationError{Message: "search query is required"}
	}
	return s.taskRepo.Search(ctx, userID, query)
}

// Update applies a partial update to the caller's task. Changing the date
// re-derives the status unless the request also sets one.
func (s *TaskService) Update(ctx context.Context, userID, id string, req *UpdateTaskRequest) (*models.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" || len(*req.Name) > config.MaxNameLength {
			return nil, &domain.ValidationError{Message: "name must be between 1 and 255 characters"}
		}
		task.Name = *req.Name
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.SubCategory != nil {
		task.SubCategory = *req.SubCategory
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Date != nil {
		task.Date = *req.Date
		task.Status = deriveStatus(*req.Date, time.Now())
	}
	if req.Status != nil {
		switch *req.Status {
		case models.TaskStatusToday, models.TaskStatusPending, models.TaskStatusFuture, models.TaskStatusCompleted:
			task.Status = *req.Status
		default:
			return nil, &domain.ValidationError{Message: "invalid task status"}
		}
	}
	if req.Subtasks != nil {
		for i := range req.Subtasks {
			if req.Subtasks[i].ID == "" {
				req.Subtasks[i].ID = uuid.New().String()
			}
			if req.Subtasks[i].Status == "" {
				req.Subtasks[i].Status = models.SubtaskPending
			}
		}
		task.Subtasks = req.Subtasks
	}

	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("task updated", "task_id", task.ID, "user_id", userID)

	return task, nil
}

// RefreshStatuses re-derives TODAY/PENDING/FUTURE for every non-completed
// task the user owns. Statuses drift as days pass, so clients call this on
// startup to bring the whole list back in line with the current day.
func (s *TaskService) RefreshStatuses(ctx context.Context, userID string) (int64, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	updated, err := s.taskRepo.RefreshStatuses(ctx, userID, dayStart)
	if err != nil {
		return 0, err
	}

	s.logger.Info("task statuses refreshed", "user_id", userID, "updated", updated)

	return updated, nil
}

// Delete removes the caller's task.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("task deleted", "task_id", id, "user_id", userID)

	return nil
}
