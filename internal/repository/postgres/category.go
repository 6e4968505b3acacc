package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/domain/repositories"
)

// CategoryRepository implements repositories.CategoryRepository on Postgres.
type CategoryRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(config *RepositoryConfig) repositories.CategoryRepository {
	return &CategoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const categoryColumns = "id, user_id, name, icon, color, created_at, updated_at"

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, name, icon, color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, r.tables.Categories)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		category.ID,
		category.UserID,
		category.Name,
		category.Icon,
		category.Color,
	).Scan(&category.CreatedAt, &category.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("category %q already exists", category.Name),
				ResourceType: "category",
			}
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

// CreateBatch inserts several categories in one round of statements.
// Callers wrap this in a transaction when atomicity matters.
func (r *CategoryRepository) CreateBatch(ctx context.Context, categories []models.Category) error {
	for i := range categories {
		if err := r.Create(ctx, &categories[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a category by ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, categoryColumns, r.tables.Categories)

	category, err := scanCategory(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return category, nil
}

// GetByName retrieves a user's category by name, or nil when absent.
func (r *CategoryRepository) GetByName(ctx context.Context, userID, name string) (*models.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 AND name = $2`, categoryColumns, r.tables.Categories)

	category, err := scanCategory(GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID, name))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category by name: %w", err)
	}

	return category, nil
}

// List retrieves all of a user's categories.
func (r *CategoryRepository) List(ctx context.Context, userID string) ([]models.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, categoryColumns, r.tables.Categories)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// Update replaces the category's mutable fields.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, icon = $3, color = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Categories)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		category.ID,
		category.Name,
		category.Icon,
		category.Color,
	).Scan(&category.UpdatedAt)

	if err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("category %s: %w", category.ID, domain.ErrNotFound)
		}
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("category %q already exists", category.Name),
				ResourceType: "category",
			}
		}
		return fmt.Errorf("update category: %w", err)
	}

	return nil
}

// Delete removes a category.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Categories)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if isPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      "category still has subcategories",
				ResourceType: "category",
				ResourceID:   id,
			}
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteAllForUser removes every category the user owns.
func (r *CategoryRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, r.tables.Categories)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("delete categories for user: %w", err)
	}

	return nil
}
