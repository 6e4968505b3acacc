package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/domain/repositories"
)

// TaskRepository implements repositories.TaskRepository on Postgres.
// Subtasks are embedded as a jsonb column; they have no life of their own.
type TaskRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(config *RepositoryConfig) repositories.TaskRepository {
	return &TaskRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const taskColumns = "id, user_id, name, category, sub_category, priority, date, status, subtasks, created_at, updated_at"

func scanTask(row pgx.Row) (*models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Name,
		&task.Category,
		&task.SubCategory,
		&task.Priority,
		&task.Date,
		&task.Status,
		&task.Subtasks,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if task.Subtasks == nil {
		task.Subtasks = []models.Subtask{}
	}
	return &task, nil
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, name, category, sub_category, priority, date, status, subtasks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, r.tables.Tasks)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Name,
		task.Category,
		task.SubCategory,
		task.Priority,
		task.Date,
		task.Status,
		task.Subtasks,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, taskColumns, r.tables.Tasks)

	task, err := scanTask(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	return task, nil
}

// List retrieves a page of the user's tasks ordered by date.
func (r *TaskRepository) List(ctx context.Context, userID string, page, pageSize int) ([]models.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY date ASC
		LIMIT $2 OFFSET $3
	`, taskColumns, r.tables.Tasks)

	offset := (page - 1) * pageSize
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// Search matches name, category or subcategory case-insensitively. When
// the query parses as a date, tasks on that day also match.
func (r *TaskRepository) Search(ctx context.Context, userID, query string) ([]models.Task, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		  AND (name ILIKE '%%' || $2 || '%%'
		    OR category ILIKE '%%' || $2 || '%%'
		    OR sub_category ILIKE '%%' || $2 || '%%')
		ORDER BY date ASC
	`, taskColumns, r.tables.Tasks)
	args := []interface{}{userID, query}

	if day, err := time.Parse("2006-01-02", query); err == nil {
		sql = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE user_id = $1
			  AND (name ILIKE '%%' || $2 || '%%'
			    OR category ILIKE '%%' || $2 || '%%'
			    OR sub_category ILIKE '%%' || $2 || '%%'
			    OR (date >= $3 AND date < $4))
			ORDER BY date ASC
		`, taskColumns, r.tables.Tasks)
		args = append(args, day, day.AddDate(0, 0, 1))
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// FindDuplicate returns the task with the same name, category and day, or nil.
func (r *TaskRepository) FindDuplicate(ctx context.Context, userID, name, category string, date time.Time) (*models.Task, error) {
	day := date.Truncate(24 * time.Hour)
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1 AND name = $2 AND category = $3
		  AND date >= $4 AND date < $5
		LIMIT 1
	`, taskColumns, r.tables.Tasks)

	task, err := scanTask(GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID, name, category, day, day.AddDate(0, 0, 1)))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find duplicate task: %w", err)
	}

	return task, nil
}

// Update replaces the task's mutable fields.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, category = $3, sub_category = $4, priority = $5,
		    date = $6, status = $7, subtasks = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Tasks)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		task.ID,
		task.Name,
		task.Category,
		task.SubCategory,
		task.Priority,
		task.Date,
		task.Status,
		task.Subtasks,
	).Scan(&task.UpdatedAt)

	if err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("task %s: %w", task.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

// RefreshStatuses reclassifies all non-completed tasks of a user against
// the given day boundary in a single statement.
func (r *TaskRepository) RefreshStatuses(ctx context.Context, userID string, dayStart time.Time) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = CASE
		        WHEN date < $2 THEN $4
		        WHEN date >= $3 THEN $5
		        ELSE $6
		    END,
		    updated_at = now()
		WHERE user_id = $1 AND status <> $7
	`, r.tables.Tasks)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		userID,
		dayStart,
		dayStart.AddDate(0, 0, 1),
		models.TaskStatusPending,
		models.TaskStatusFuture,
		models.TaskStatusToday,
		models.TaskStatusCompleted,
	)
	if err != nil {
		return 0, fmt.Errorf("refresh task statuses: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Tasks)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteAllForUser removes every task the user owns.
func (r *TaskRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, r.tables.Tasks)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("delete tasks for user: %w", err)
	}

	return nil
}

func collectTasks(rows pgx.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}
