package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/domain/repositories"
)

// AttachmentRepository stores annotation file bytes keyed by annotation
// and name.
type AttachmentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAttachmentRepository creates a new attachment repository.
func NewAttachmentRepository(config *RepositoryConfig) repositories.AttachmentRepository {
	return &AttachmentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Put stores an attachment, replacing any previous file with the same name.
func (r *AttachmentRepository) Put(ctx context.Context, annotationID string, meta models.Attachment, data []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (annotation_id, name, content_type, size, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (annotation_id, name)
		DO UPDATE SET content_type = $3, size = $4, data = $5
	`, r.tables.Attachments)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		annotationID,
		meta.Name,
		meta.ContentType,
		meta.Size,
		data,
	)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("annotation %s: %w", annotationID, domain.ErrNotFound)
		}
		return fmt.Errorf("store attachment: %w", err)
	}

	return nil
}

// Get retrieves an attachment's metadata and bytes.
func (r *AttachmentRepository) Get(ctx context.Context, annotationID, name string) (*models.Attachment, []byte, error) {
	query := fmt.Sprintf(`
		SELECT name, content_type, size, data, created_at
		FROM %s
		WHERE annotation_id = $1 AND name = $2
	`, r.tables.Attachments)

	var meta models.Attachment
	var data []byte
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, annotationID, name).Scan(
		&meta.Name,
		&meta.ContentType,
		&meta.Size,
		&data,
		&meta.CreatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil, fmt.Errorf("attachment %s: %w", name, domain.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("get attachment: %w", err)
	}

	return &meta, data, nil
}

// Delete removes an attachment.
func (r *AttachmentRepository) Delete(ctx context.Context, annotationID, name string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE annotation_id = $1 AND name = $2`, r.tables.Attachments)

	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, query, annotationID, name)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("attachment %s: %w", name, domain.ErrNotFound)
	}

	return nil
}

// DeleteAll removes every attachment of an annotation.
func (r *AttachmentRepository) DeleteAll(ctx context.Context, annotationID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE annotation_id = $1`, r.tables.Attachments)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, annotationID); err != nil {
		return fmt.Errorf("delete attachments: %w", err)
	}

	return nil
}
