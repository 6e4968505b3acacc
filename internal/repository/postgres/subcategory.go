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

// SubCategoryRepository implements repositories.SubCategoryRepository.
type SubCategoryRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSubCategoryRepository creates a new subcategory repository.
func NewSubCategoryRepository(config *RepositoryConfig) repositories.SubCategoryRepository {
	return &SubCategoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const subCategoryColumns = "id, user_id, category_id, category_name, name, icon, color, created_at, updated_at"

func scanSubCategory(row pgx.Row) (*models.SubCategory, error) {
	var s models.SubCategory
	err := row.Scan(&s.ID, &s.UserID, &s.CategoryID, &s.CategoryName, &s.Name, &s.Icon, &s.Color, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new subcategory.
func (r *SubCategoryRepository) Create(ctx context.Context, sub *models.SubCategory) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, category_id, category_name, name, icon, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, r.tables.SubCategories)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		sub.ID,
		sub.UserID,
		sub.CategoryID,
		sub.CategoryName,
		sub.Name,
		sub.Icon,
		sub.Color,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("subcategory %q already exists", sub.Name),
				ResourceType: "subcategory",
			}
		}
		if isPgForeignKeyError(err) {
			return fmt.Errorf("category %s: %w", sub.CategoryID, domain.ErrNotFound)
		}
		return fmt.Errorf("create subcategory: %w", err)
	}

	return nil
}

// GetByID retrieves a subcategory by ID.
func (r *SubCategoryRepository) GetByID(ctx context.Context, id string) (*models.SubCategory, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, subCategoryColumns, r.tables.SubCategories)

	sub, err := scanSubCategory(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("subcategory %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get subcategory: %w", err)
	}

	return sub, nil
}

// GetByName retrieves a user's subcategory by name, or nil when absent.
func (r *SubCategoryRepository) GetByName(ctx context.Context, userID, name string) (*models.SubCategory, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 AND name = $2`, subCategoryColumns, r.tables.SubCategories)

	sub, err := scanSubCategory(GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID, name))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subcategory by name: %w", err)
	}

	return sub, nil
}

// List retrieves all of a user's subcategories.
func (r *SubCategoryRepository) List(ctx context.Context, userID string) ([]models.SubCategory, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, subCategoryColumns, r.tables.SubCategories)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	return collectSubCategories(rows)
}

// ListByCategory retrieves the subcategories under one category.
func (r *SubCategoryRepository) ListByCategory(ctx context.Context, userID, categoryID string) ([]models.SubCategory, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1 AND category_id = $2
		ORDER BY created_at ASC
	`, subCategoryColumns, r.tables.SubCategories)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories by category: %w", err)
	}
	defer rows.Close()

	return collectSubCategories(rows)
}

// Update replaces the subcategory's mutable fields.
func (r *SubCategoryRepository) Update(ctx context.Context, sub *models.SubCategory) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, icon = $3, color = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.SubCategories)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		sub.ID,
		sub.Name,
		sub.Icon,
		sub.Color,
	).Scan(&sub.UpdatedAt)

	if err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("subcategory %s: %w", sub.ID, domain.ErrNotFound)
		}
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("subcategory %q already exists", sub.Name),
				ResourceType: "subcategory",
			}
		}
		return fmt.Errorf("update subcategory: %w", err)
	}

	return nil
}

// Delete removes a subcategory.
func (r *SubCategoryRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.SubCategories)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete subcategory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subcategory %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func collectSubCategories(rows pgx.Rows) ([]models.SubCategory, error) {
	var subs []models.SubCategory
	for rows.Next() {
		sub, err := scanSubCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subcategories: %w", err)
	}
	return subs, nil
}

// DeleteAllForUser removes every subcategory the user owns.
func (r *SubCategoryRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, r.tables.SubCategories)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("delete subcategories for user: %w", err)
	}

	return nil
}
