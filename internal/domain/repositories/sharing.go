package repositories

import (
	"context"

	"taskly/internal/domain/models"
)

// MembershipStore is the kind-independent accessor for the owner and
// member list of a shareable resource (annotation or group). Each write is
// a single atomic field replace; nothing else on the document is touched
// and no operation spans two documents.
type MembershipStore interface {
	// Load reads the authorization projection of a resource.
	Load(ctx context.Context, kind models.ResourceKind, id string) (*models.SharedResource, error)

	// ReplaceMembers atomically replaces the member list, leaving owner
	// and payload fields untouched.
	ReplaceMembers(ctx context.Context, kind models.ResourceKind, id string, members []models.Membership) (*models.SharedResource, error)

	// ReplaceGroupLinks atomically replaces an annotation's group-link set.
	ReplaceGroupLinks(ctx context.Context, annotationID string, groupIDs []string) (*models.SharedResource, error)
}
