package sharing

import (
	"context"
	"fmt"
	"log/slog"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/domain/repositories"
)

// Mutator implements the membership mutation operations shared by
// annotations and groups: add members, change a member's role, remove a
// member, and manage an annotation's group links.
//
// Every operation is a read-check-write against the store and is
// all-or-nothing per call: any invariant violation aborts before the
// single field replace. The sequence is intentionally not transactional;
// see the concurrency note in DESIGN.md.
type Mutator struct {
	store  repositories.MembershipStore
	logger *slog.Logger
}

// NewMutator creates a new membership mutator.
func NewMutator(store repositories.MembershipStore, logger *slog.Logger) *Mutator {
	return &Mutator{
		store:  store,
		logger: logger,
	}
}

// AddMembers appends entries to the resource's member list. The resource
// is loaded before any entry checks run, so a missing resource reports as
// not found even when the batch itself is malformed. The caller may not
// grant themselves access, the batch may not contain duplicate users, and
// no entry may already be a member. If any entry conflicts, none are
// applied.
func (m *Mutator) AddMembers(ctx context.Context, kind models.ResourceKind, resourceID, callerID string, entries []models.Membership) (*models.SharedResource, error) {
	resource, err := m.store.Load(ctx, kind, resourceID)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, &domain.ValidationError{Message: "no members provided"}
	}

	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.UserID == "" {
			return nil, &domain.ValidationError{Message: "member user id is required"}
		}
		if !models.IsValidRole(entry.Role) {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("invalid role %q: must be one of %v", entry.Role, models.Roles()),
			}
		}
		if entry.UserID == callerID {
			return nil, &domain.ConflictError{
				Message:      "you cannot add your own user",
				ResourceType: string(kind),
				ResourceID:   resourceID,
			}
		}
		if seen[entry.UserID] {
			return nil, &domain.ConflictError{
				Message:      "duplicate user in member list",
				ResourceType: string(kind),
				ResourceID:   resourceID,
			}
		}
		seen[entry.UserID] = true

		if resource.Member(entry.UserID) != nil {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("user %s is already a member", entry.UserID),
				ResourceType: string(kind),
				ResourceID:   resourceID,
			}
		}
	}

	updated := append(append([]models.Membership{}, resource.Members...), entries...)

	result, err := m.store.ReplaceMembers(ctx, kind, resourceID, updated)
	if err != nil {
		return nil, err
	}

	m.logger.Info("members added",
		"kind", kind,
		"resource_id", resourceID,
		"caller_id", callerID,
		"count", len(entries),
	)

	return result, nil
}

// UpdateMemberRole changes a single member's role. Callers cannot change
// their own role, the target must currently be a member, and the new role
// must belong to the closed vocabulary.
func (m *Mutator) UpdateMemberRole(ctx context.Context, kind models.ResourceKind, resourceID, callerID, targetUserID string, newRole models.Role) (*models.SharedResource, error) {
	resource, err := m.store.Load(ctx, kind, resourceID)
	if err != nil {
		return nil, err
	}

	if targetUserID == callerID {
		return nil, &domain.ConflictError{
			Message:      "you cannot change your own permission",
			ResourceType: string(kind),
			ResourceID:   resourceID,
		}
	}

	if resource.Member(targetUserID) == nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("user %s is not a member", targetUserID),
			ResourceType: string(kind),
			ResourceID:   resourceID,
		}
	}

	if !models.IsValidRole(newRole) {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("invalid role %q: must be one of %v", newRole, models.Roles()),
		}
	}

	updated := make([]models.Membership, len(resource.Members))
	for i, member := range resource.Members {
		if member.UserID == targetUserID {
			member.Role = newRole
		}
		updated[i] = member
	}

	result, err := m.store.ReplaceMembers(ctx, kind, resourceID, updated)
	if err != nil {
		return nil, err
	}

	m.logger.Info("member role updated",
		"kind", kind,
		"resource_id", resourceID,
		"target_user_id", targetUserID,
		"role", newRole,
	)

	return result, nil
}

// RemoveMember deletes a member from the resource. Only the owner may
// remove members; the target must currently be a member.
func (m *Mutator) RemoveMember(ctx context.Context, kind models.ResourceKind, resourceID, callerID, targetUserID string) (*models.SharedResource, error) {
	resource, err := m.store.Load(ctx, kind, resourceID)
	if err != nil {
		return nil, err
	}

	if !resource.IsOwner(callerID) {
		return nil, &domain.ForbiddenError{
			Message: fmt.Sprintf("only the owner can remove members from this %s", kind),
		}
	}

	if resource.Member(targetUserID) == nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("user %s is not a member", targetUserID),
			ResourceType: string(kind),
			ResourceID:   resourceID,
		}
	}

	updated := make([]models.Membership, 0, len(resource.Members))
	for _, member := range resource.Members {
		if member.UserID != targetUserID {
			updated = append(updated, member)
		}
	}

	result, err := m.store.ReplaceMembers(ctx, kind, resourceID, updated)
	if err != nil {
		return nil, err
	}

	m.logger.Info("member removed",
		"kind", kind,
		"resource_id", resourceID,
		"target_user_id", targetUserID,
	)

	return result, nil
}

// AttachGroup adds a group to an annotation's link set. Attaching a group
// that is already linked is a conflict.
func (m *Mutator) AttachGroup(ctx context.Context, annotationID, groupID string) (*models.SharedResource, error) {
	annotation, err := m.store.Load(ctx, models.KindAnnotation, annotationID)
	if err != nil {
		return nil, err
	}

	for _, id := range annotation.GroupIDs {
		if id == groupID {
			return nil, &domain.ConflictError{
				Message:      "annotation is already in this group",
				ResourceType: "annotation",
				ResourceID:   annotationID,
			}
		}
	}

	updated := append(append([]string{}, annotation.GroupIDs...), groupID)

	result, err := m.store.ReplaceGroupLinks(ctx, annotationID, updated)
	if err != nil {
		return nil, err
	}

	m.logger.Info("group attached",
		"annotation_id", annotationID,
		"group_id", groupID,
	)

	return result, nil
}

// DetachGroup removes a group from an annotation's link set. Detaching a
// group that is not linked is a conflict, never a silent no-op.
func (m *Mutator) DetachGroup(ctx context.Context, annotationID, groupID string) (*models.SharedResource, error) {
	annotation, err := m.store.Load(ctx, models.KindAnnotation, annotationID)
	if err != nil {
		return nil, err
	}

	found := false
	updated := make([]string, 0, len(annotation.GroupIDs))
	for _, id := range annotation.GroupIDs {
		if id == groupID {
			found = true
			continue
		}
		updated = append(updated, id)
	}
	if !found {
		return nil, &domain.ConflictError{
			Message:      "annotation is not in this group",
			ResourceType: "annotation",
			ResourceID:   annotationID,
		}
	}

	result, err := m.store.ReplaceGroupLinks(ctx, annotationID, updated)
	if err != nil {
		return nil, err
	}

	m.logger.Info("group detached",
		"annotation_id", annotationID,
		"group_id", groupID,
	)

	return result, nil
}
