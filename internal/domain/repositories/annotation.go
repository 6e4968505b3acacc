package repositories

import (
	"context"

	"taskly/internal/domain/models"
)

// AnnotationRepository persists annotations. Listings include resources
// the user owns and resources they are a member of.
type AnnotationRepository interface {
	Create(ctx context.Context, annotation *models.Annotation) error
	GetByID(ctx context.Context, id string) (*models.Annotation, error)
	ListForUser(ctx context.Context, userID string, page, pageSize int) ([]models.Annotation, error)
	// ListByGroup returns the annotations attached to a group.
	ListByGroup(ctx context.Context, groupID string) ([]models.Annotation, error)
	// Search matches titles and categories case-insensitively, scoped to
	// annotations owned by the user.
	Search(ctx context.Context, userID, query string) ([]models.Annotation, error)
	// FindDuplicate checks the (title, category, owner, group) uniqueness
	// scope. groupID is empty for ungrouped annotations: the same
	// title/category pair may exist once per group plus once ungrouped.
	FindDuplicate(ctx context.Context, ownerID, title, category, groupID string) (*models.Annotation, error)
	Update(ctx context.Context, annotation *models.Annotation) error
	Delete(ctx context.Context, id string) error
	// DetachGroupFromAll removes groupID from every annotation's link set.
	// Used when a group is deleted; annotations themselves are untouched.
	DetachGroupFromAll(ctx context.Context, groupID string) error
}
