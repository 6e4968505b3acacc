package repositories

import (
	"context"

	"taskly/internal/domain/models"
)

// AttachmentRepository stores annotation file contents. Metadata lives on
// the annotation document; bytes live here, keyed by annotation and name.
type AttachmentRepository interface {
	Put(ctx context.Context, annotationID string, meta models.Attachment, data []byte) error
	Get(ctx context.Context, annotationID, name string) (*models.Attachment, []byte, error)
	Delete(ctx context.Context, annotationID, name string) error
	// DeleteAll removes every attachment of an annotation (on delete).
	DeleteAll(ctx context.Context, annotationID string) error
}
