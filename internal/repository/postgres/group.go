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

// GroupRepository implements repositories.GroupRepository on Postgres.
type GroupRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(config *RepositoryConfig) repositories.GroupRepository {
	return &GroupRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const groupColumns = "id, owner_id, name, description, members, created_at, updated_at"

func scanGroup(row pgx.Row) (*models.Group, error) {
	var g models.Group
	err := row.Scan(
		&g.ID,
		&g.OwnerID,
		&g.Name,
		&g.Description,
		&g.Members,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if g.Members == nil {
		g.Members = []models.Membership{}
	}
	return &g, nil
}

// Create inserts a new group.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, name, description, members)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, r.tables.Groups)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		group.ID,
		group.OwnerID,
		group.Name,
		group.Description,
		group.Members,
	).Scan(&group.CreatedAt, &group.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("group %q already exists", group.Name),
				ResourceType: "group",
			}
		}
		return fmt.Errorf("create group: %w", err)
	}

	return nil
}

// GetByID retrieves a group by ID.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, groupColumns, r.tables.Groups)

	group, err := scanGroup(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("group %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get group: %w", err)
	}

	return group, nil
}

// GetByName retrieves an owner's group by name, or nil when absent.
func (r *GroupRepository) GetByName(ctx context.Context, ownerID, name string) (*models.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE owner_id = $1 AND name = $2`, groupColumns, r.tables.Groups)

	group, err := scanGroup(GetExecutor(ctx, r.pool).QueryRow(ctx, query, ownerID, name))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get group by name: %w", err)
	}

	return group, nil
}

// ListForUser retrieves a page of groups the user owns or is a member of,
// newest first.
func (r *GroupRepository) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]models.Group, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 OR members @> $2::jsonb
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, groupColumns, r.tables.Groups)

	offset := (page - 1) * pageSize
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID, memberFilter(userID), pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	return collectGroups(rows)
}

// Search matches group names the user owns, case-insensitively.
func (r *GroupRepository) Search(ctx context.Context, userID, query string) ([]models.Group, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND name ILIKE '%%' || $2 || '%%'
		ORDER BY created_at DESC
	`, groupColumns, r.tables.Groups)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, sql, userID, query)
	if err != nil {
		return nil, fmt.Errorf("search groups: %w", err)
	}
	defer rows.Close()

	return collectGroups(rows)
}

// Update replaces the group's payload fields. The member list is mutated
// through the membership store.
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, description = $3, members = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Groups)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		group.ID,
		group.Name,
		group.Description,
		group.Members,
	).Scan(&group.UpdatedAt)

	if err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("group %s: %w", group.ID, domain.ErrNotFound)
		}
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("group %q already exists", group.Name),
				ResourceType: "group",
			}
		}
		return fmt.Errorf("update group: %w", err)
	}

	return nil
}

// Delete removes a group. Link cleanup on annotations is the service's job.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Groups)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("group %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func collectGroups(rows pgx.Rows) ([]models.Group, error) {
	var groups []models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, *group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}
