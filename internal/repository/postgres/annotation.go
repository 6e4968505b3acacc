package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/domain/repositories"
)

// AnnotationRepository implements repositories.AnnotationRepository.
// Member lists and attachment metadata are jsonb columns; group links are
// a text[] column. Each mutation is a single-statement field replace.
type AnnotationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAnnotationRepository creates a new annotation repository.
func NewAnnotationRepository(config *RepositoryConfig) repositories.AnnotationRepository {
	return &AnnotationRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const annotationColumns = "id, owner_id, title, content, category, members, group_ids, attachments, created_at, updated_at"

func scanAnnotation(row pgx.Row) (*models.Annotation, error) {
	var a models.Annotation
	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.Title,
		&a.Content,
		&a.Category,
		&a.Members,
		&a.GroupIDs,
		&a.Attachments,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if a.Members == nil {
		a.Members = []models.Membership{}
	}
	if a.GroupIDs == nil {
		a.GroupIDs = []string{}
	}
	if a.Attachments == nil {
		a.Attachments = []models.Attachment{}
	}
	return &a, nil
}

// memberFilter builds the jsonb containment argument matching any member
// list that contains an entry for userID, whatever the role.
func memberFilter(userID string) string {
	b, _ := json.Marshal([]map[string]string{{"user_id": userID}})
	return string(b)
}

// Create inserts a new annotation.
func (r *AnnotationRepository) Create(ctx context.Context, annotation *models.Annotation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, title, content, category, members, group_ids, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, r.tables.Annotations)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		annotation.ID,
		annotation.OwnerID,
		annotation.Title,
		annotation.Content,
		annotation.Category,
		annotation.Members,
		annotation.GroupIDs,
		annotation.Attachments,
	).Scan(&annotation.CreatedAt, &annotation.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create annotation: %w", err)
	}

	return nil
}

// GetByID retrieves an annotation by ID.
func (r *AnnotationRepository) GetByID(ctx context.Context, id string) (*models.Annotation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, annotationColumns, r.tables.Annotations)

	annotation, err := scanAnnotation(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("annotation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get annotation: %w", err)
	}

	return annotation, nil
}

// ListForUser retrieves a page of annotations the user owns or is a
// member of, ordered by creation time.
func (r *AnnotationRepository) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]models.Annotation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 OR members @> $2::jsonb
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4
	`, annotationColumns, r.tables.Annotations)

	offset := (page - 1) * pageSize
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID, memberFilter(userID), pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	defer rows.Close()

	return collectAnnotations(rows)
}

// ListByGroup retrieves the annotations attached to a group.
func (r *AnnotationRepository) ListByGroup(ctx context.Context, groupID string) ([]models.Annotation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE $1 = ANY(group_ids)
		ORDER BY created_at ASC
	`, annotationColumns, r.tables.Annotations)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list annotations by group: %w", err)
	}
	defer rows.Close()

	return collectAnnotations(rows)
}

// Search matches titles and categories of the user's own annotations.
func (r *AnnotationRepository) Search(ctx context.Context, userID, query string) ([]models.Annotation, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1
		  AND (title ILIKE '%%' || $2 || '%%' OR category ILIKE '%%' || $2 || '%%')
		ORDER BY created_at ASC
	`, annotationColumns, r.tables.Annotations)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, sql, userID, query)
	if err != nil {
		return nil, fmt.Errorf("search annotations: %w", err)
	}
	defer rows.Close()

	return collectAnnotations(rows)
}

// FindDuplicate checks the (title, category, owner, group) uniqueness
// scope. An empty groupID matches only ungrouped annotations, so the same
// title may exist once per group plus once ungrouped.
func (r *AnnotationRepository) FindDuplicate(ctx context.Context, ownerID, title, category, groupID string) (*models.Annotation, error) {
	var (
		sql  string
		args []interface{}
	)
	if groupID == "" {
		sql = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE owner_id = $1 AND title = $2 AND category = $3 AND group_ids = '{}'
			LIMIT 1
		`, annotationColumns, r.tables.Annotations)
		args = []interface{}{ownerID, title, category}
	} else {
		sql = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE owner_id = $1 AND title = $2 AND category = $3 AND $4 = ANY(group_ids)
			LIMIT 1
		`, annotationColumns, r.tables.Annotations)
		args = []interface{}{ownerID, title, category, groupID}
	}

	annotation, err := scanAnnotation(GetExecutor(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find duplicate annotation: %w", err)
	}

	return annotation, nil
}

// Update replaces the annotation's payload fields and attachment metadata.
// Member lists and group links are mutated through the membership store.
func (r *AnnotationRepository) Update(ctx context.Context, annotation *models.Annotation) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, content = $3, category = $4, attachments = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Annotations)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		annotation.ID,
		annotation.Title,
		annotation.Content,
		annotation.Category,
		annotation.Attachments,
	).Scan(&annotation.UpdatedAt)

	if err != nil {
		if isPgNoRowsError(err) {
			return fmt.Errorf("annotation %s: %w", annotation.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update annotation: %w", err)
	}

	return nil
}

// Delete removes an annotation. Attachments go with it via cascade.
func (r *AnnotationRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Annotations)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete annotation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("annotation %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DetachGroupFromAll removes groupID from every annotation's link set.
func (r *AnnotationRepository) DetachGroupFromAll(ctx context.Context, groupID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET group_ids = array_remove(group_ids, $1), updated_at = now()
		WHERE $1 = ANY(group_ids)
	`, r.tables.Annotations)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, groupID); err != nil {
		return fmt.Errorf("detach group from annotations: %w", err)
	}

	return nil
}

func collectAnnotations(rows pgx.Rows) ([]models.Annotation, error) {
	var annotations []models.Annotation
	for rows.Next() {
		annotation, err := scanAnnotation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		annotations = append(annotations, *annotation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate annotations: %w", err)
	}
	return annotations, nil
}
