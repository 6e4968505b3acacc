package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/domain/repositories"
)

// UserRepository implements repositories.UserRepository on Postgres.
type UserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserRepository creates a new user repository.
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &UserRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, r.tables.Users)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "a user with this email already exists",
				ResourceType: "user",
			}
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Users)

	var user models.User
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// Update replaces the user's profile fields.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, email = $3, password_hash = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Users)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
	).Scan(&user.UpdatedAt)

	if err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
		}
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "a user with this email already exists",
				ResourceType: "user",
			}
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

// Delete removes a user account.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Users)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM %s
		WHERE email = $1
	`, r.tables.Users)

	var user models.User
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}
