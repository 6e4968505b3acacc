package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
)

// memTaskRepo is an in-memory TaskRepository for service tests.
type memTaskRepo struct {
	tasks map[string]*models.Task
}

func newMemTaskRepo(tasks ...*models.Task) *memTaskRepo {
	r := &memTaskRepo{tasks: make(map[string]*models.Task)}
	for _, task := range tasks {
		r.tasks[task.ID] = task
	}
	return r
}

func (r *memTaskRepo) Create(_ context.Context, task *models.Task) error {
	r.tasks[task.ID] = task
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id string) (*models.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	clone := *task
	return &clone, nil
}

func (r *memTaskRepo) List(_ context.Context, userID string, page, pageSize int) ([]models.Task, error) {
	return nil, nil
}

func (r *memTaskRepo) Search(_ context.Context, userID, query string) ([]models.Task, error) {
	return nil, nil
}

func (r *memTaskRepo) FindDuplicate(_ context.Context, userID, name, category string, date time.Time) (*models.Task, error) {
	return nil, nil
}

func (r *memTaskRepo) Update(_ context.Context, task *models.Task) error {
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, id string) error {
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) DeleteAllForUser(_ context.Context, userID string) error {
	for id, task := range r.tasks {
		if task.UserID == userID {
			delete(r.tasks, id)
		}
	}
	return nil
}

func (r *memTaskRepo) RefreshStatuses(_ context.Context, userID string, dayStart time.Time) (int64, error) {
	var updated int64
	for _, task := range r.tasks {
		if task.UserID != userID || task.Status == models.TaskStatusCompleted {
			continue
		}
		switch {
		case task.Date.Before(dayStart):
			task.Status = models.TaskStatusPending
		case !task.Date.Before(dayStart.AddDate(0, 0, 1)):
			task.Status = models.TaskStatusFuture
		default:
			task.Status = models.TaskStatusToday
		}
		updated++
	}
	return updated, nil
}

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		want models.TaskStatus
	}{
		{
			name: "same day is today",
			date: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			want: models.TaskStatusToday,
		},
		{
			name: "later hour on the same day is today",
			date: time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC),
			want: models.TaskStatusToday,
		},
		{
			name: "yesterday is pending",
			date: time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC),
			want: models.TaskStatusPending,
		},
		{
			name: "distant past is pending",
			date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			want: models.TaskStatusPending,
		},
		{
			name: "tomorrow is future",
			date: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
			want: models.TaskStatusFuture,
		},
		{
			name: "distant future is future",
			date: time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
			want: models.TaskStatusFuture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveStatus(tt.date, now); got != tt.want {
				t.Errorf("deriveStatus(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestRefreshStatuses(t *testing.T) {
	now := time.Now()
	day := func(offset int) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, now.Location()).AddDate(0, 0, offset)
	}

	stale := &models.Task{ID: "t1", UserID: "u1", Date: day(-3), Status: models.TaskStatusToday}
	current := &models.Task{ID: "t2", UserID: "u1", Date: day(0), Status: models.TaskStatusFuture}
	upcoming := &models.Task{ID: "t3", UserID: "u1", Date: day(2), Status: models.TaskStatusFuture}
	done := &models.Task{ID: "t4", UserID: "u1", Date: day(-1), Status: models.TaskStatusCompleted}
	other := &models.Task{ID: "t5", UserID: "u2", Date: day(-1), Status: models.TaskStatusToday}

	repo := newMemTaskRepo(stale, current, upcoming, done, other)
	svc := NewTaskService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	updated, err := svc.RefreshStatuses(context.Background(), "u1")
	if err != nil {
		t.Fatalf("RefreshStatuses() error = %v", err)
	}
	if updated != 3 {
		t.Errorf("updated = %d, want 3", updated)
	}

	want := map[string]models.TaskStatus{
		"t1": models.TaskStatusPending,
		"t2": models.TaskStatusToday,
		"t3": models.TaskStatusFuture,
		"t4": models.TaskStatusCompleted,
		"t5": models.TaskStatusToday,
	}
	for id, status := range want {
		if got := repo.tasks[id].Status; got != status {
			t.Errorf("task %s status = %v, want %v", id, got, status)
		}
	}
}

func TestCreateTaskRequestValidate(t *testing.T) {
	valid := CreateTaskRequest{
		Name:     "write report",
		Category: "Trabalho",
		Date:     time.Now(),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request failed validation: %v", err)
	}

	missingName := valid
	missingName.Name = ""
	if err := missingName.Validate(); err == nil {
		t.Error("request without name passed validation")
	}

	missingDate := valid
	missingDate.Date = time.Time{}
	if err := missingDate.Validate(); err == nil {
		t.Error("request without date passed validation")
	}
}
