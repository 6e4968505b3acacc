package sharing

import (
	"context"
	"errors"
	"testing"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
)

func TestGuardAuthorize(t *testing.T) {
	annotation := &models.SharedResource{
		ID:      "a1",
		Kind:    models.KindAnnotation,
		OwnerID: "owner",
		Members: []models.Membership{
			{UserID: "editor", Role: models.RoleEdit},
			{UserID: "viewer", Role: models.RoleViewer},
		},
		GroupIDs: []string{"g1"},
	}
	group := &models.SharedResource{
		ID:      "g1",
		Kind:    models.KindGroup,
		OwnerID: "groupowner",
		Members: []models.Membership{
			{UserID: "owner", Role: models.RoleViewer},
			{UserID: "editor", Role: models.RoleAdmin},
		},
	}

	guard := NewGuard(newMemStore(annotation, group), testLogger())

	tests := []struct {
		name          string
		callerID      string
		requiredRoles []models.Role
		annotationID  string
		groupID       string
		wantErr       error
	}{
		{
			name:     "no identifiers and no roles is a self-scoped route",
			callerID: "anyone",
		},
		{
			name:          "role-protected route without identifier is denied",
			callerID:      "owner",
			requiredRoles: []models.Role{models.RoleAdmin},
			wantErr:       domain.ErrForbidden,
		},
		{
			name:          "owner passes any required role set",
			callerID:      "owner",
			requiredRoles: []models.Role{models.RoleAdmin, models.RoleDelete},
			annotationID:  "a1",
		},
		{
			name:          "member with sufficient role is allowed",
			callerID:      "editor",
			requiredRoles: []models.Role{models.RoleAdmin, models.RoleEdit},
			annotationID:  "a1",
		},
		{
			name:          "member with insufficient role is denied",
			callerID:      "viewer",
			requiredRoles: []models.Role{models.RoleAdmin, models.RoleEdit},
			annotationID:  "a1",
			wantErr:       domain.ErrForbidden,
		},
		{
			name:          "non-member is denied",
			callerID:      "stranger",
			requiredRoles: []models.Role{models.RoleViewer},
			annotationID:  "a1",
			wantErr:       domain.ErrForbidden,
		},
		{
			name:         "empty role set with identifier still requires ownership",
			callerID:     "viewer",
			annotationID: "a1",
			wantErr:      domain.ErrForbidden,
		},
		{
			name:         "empty role set with identifier allows the owner",
			callerID:     "owner",
			annotationID: "a1",
		},
		{
			name:          "missing annotation denies with not found",
			callerID:      "owner",
			requiredRoles: []models.Role{models.RoleAdmin},
			annotationID:  "missing",
			wantErr:       domain.ErrNotFound,
		},
		{
			name:          "missing group denies with not found",
			callerID:      "groupowner",
			requiredRoles: []models.Role{models.RoleAdmin},
			groupID:       "missing",
			wantErr:       domain.ErrNotFound,
		},
		{
			name:          "group membership alone decides group-scoped routes",
			callerID:      "editor",
			requiredRoles: []models.Role{models.RoleAdmin},
			groupID:       "g1",
		},
		{
			name:          "both identifiers require both grants",
			callerID:      "editor",
			requiredRoles: []models.Role{models.RoleAdmin, models.RoleEdit},
			annotationID:  "a1",
			groupID:       "g1",
		},
		{
			name:          "annotation owner with weak group role is denied on conjunction",
			callerID:      "owner",
			requiredRoles: []models.Role{models.RoleDelete},
			annotationID:  "a1",
			groupID:       "g1",
			wantErr:       domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.Authorize(context.Background(), tt.callerID, tt.requiredRoles, tt.annotationID, tt.groupID)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Authorize() = %v, want allow", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authorize() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGuardDecisionIsRecomputedPerCall(t *testing.T) {
	store := newMemStore(&models.SharedResource{
		ID:      "a1",
		Kind:    models.KindAnnotation,
		OwnerID: "owner",
		Members: []models.Membership{{UserID: "u2", Role: models.RoleAdmin}},
	})
	guard := NewGuard(store, testLogger())
	required := []models.Role{models.RoleAdmin}

	if err := guard.Authorize(context.Background(), "u2", required, "a1", ""); err != nil {
		t.Fatalf("member should be allowed: %v", err)
	}

	// Revoke the membership out of band; the next decision must deny.
	if _, err := store.ReplaceMembers(context.Background(), models.KindAnnotation, "a1", nil); err != nil {
		t.Fatalf("ReplaceMembers() = %v", err)
	}

	if err := guard.Authorize(context.Background(), "u2", required, "a1", ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("revoked member should be denied, got %v", err)
	}
}
