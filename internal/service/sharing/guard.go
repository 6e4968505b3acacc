package sharing

import (
	"context"
	"fmt"
	"log/slog"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/domain/repositories"
)

// Guard is the request-time authorization decision engine for shareable
// resources. It is stateless: every call resolves the current owner and
// member list through the membership store and decides afresh, so a
// revoked member loses access on their next request.
type Guard struct {
	store  repositories.MembershipStore
	logger *slog.Logger
}

// NewGuard creates a new guard.
func NewGuard(store repositories.MembershipStore, logger *slog.Logger) *Guard {
	return &Guard{
		store:  store,
		logger: logger,
	}
}

// Authorize decides whether callerID may proceed on a route that declared
// requiredRoles. annotationID and groupID are the resource identifiers
// taken from the request path; either or both may be empty.
//
// With no identifiers and no required roles the route is self-scoped and
// the request is allowed. Each supplied identifier must resolve to a
// stored resource, and the caller must be its owner or hold one of the
// required roles on it. When both identifiers are supplied both grants
// are required: being owner of the annotation does not bypass the group
// check. Ownership of a single resource always satisfies any role set on
// that resource.
func (g *Guard) Authorize(ctx context.Context, callerID string, requiredRoles []models.Role, annotationID, groupID string) error {
	if annotationID == "" && groupID == "" {
		if len(requiredRoles) == 0 {
			return nil
		}
		// A role-protected route without a resource identifier cannot be
		// decided; treat as denied rather than open.
		return &domain.ForbiddenError{Message: "no resource specified for role-protected route"}
	}

	if annotationID != "" {
		if err := g.check(ctx, callerID, requiredRoles, models.KindAnnotation, annotationID); err != nil {
			return err
		}
	}

	if groupID != "" {
		if err := g.check(ctx, callerID, requiredRoles, models.KindGroup, groupID); err != nil {
			return err
		}
	}

	return nil
}

// check resolves one resource and applies the owner-or-role rule.
func (g *Guard) check(ctx context.Context, callerID string, requiredRoles []models.Role, kind models.ResourceKind, id string) error {
	resource, err := g.store.Load(ctx, kind, id)
	if err != nil {
		// An unresolvable identifier is a hard deny, never vacuously true.
		return err
	}

	if resource.IsOwner(callerID) {
		return nil
	}

	if member := resource.Member(callerID); member != nil && roleIn(requiredRoles, member.Role) {
		return nil
	}

	g.logger.Debug("authorization denied",
		"kind", kind,
		"resource_id", id,
		"caller_id", callerID,
	)

	return &domain.ForbiddenError{
		Message: fmt.Sprintf("you do not have permission to access this %s", kind),
	}
}

func roleIn(set []models.Role, role models.Role) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}
