package sharing

import (
	"context"
	"errors"
	"testing"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
)

func annotationWithMembers(members ...models.Membership) *models.SharedResource {
	return &models.SharedResource{
		ID:      "a1",
		Kind:    models.KindAnnotation,
		OwnerID: "owner",
		Members: members,
	}
}

func TestAddMembers(t *testing.T) {
	tests := []struct {
		name     string
		existing []models.Membership
		callerID string
		entries  []models.Membership
		wantErr  error
		wantLen  int
	}{
		{
			name:     "append to empty list",
			callerID: "owner",
			entries:  []models.Membership{{UserID: "u2", Role: models.RoleViewer}},
			wantLen:  1,
		},
		{
			name:     "append several entries at once",
			existing: []models.Membership{{UserID: "u2", Role: models.RoleViewer}},
			callerID: "owner",
			entries: []models.Membership{
				{UserID: "u3", Role: models.RoleEdit},
				{UserID: "u4", Role: models.RoleAdmin},
			},
			wantLen: 3,
		},
		{
			name:     "caller cannot add themselves",
			callerID: "u2",
			entries:  []models.Membership{{UserID: "u2", Role: models.RoleAdmin}},
			wantErr:  domain.ErrConflict,
		},
		{
			name:     "duplicate user inside the batch",
			callerID: "owner",
			entries: []models.Membership{
				{UserID: "u2", Role: models.RoleViewer},
				{UserID: "u2", Role: models.RoleAdmin},
			},
			wantErr: domain.ErrConflict,
		},
		{
			name:     "existing member rejects the whole batch",
			existing: []models.Membership{{UserID: "u2", Role: models.RoleViewer}},
			callerID: "owner",
			entries: []models.Membership{
				{UserID: "u3", Role: models.RoleEdit},
				{UserID: "u2", Role: models.RoleAdmin},
			},
			wantErr: domain.ErrConflict,
		},
		{
			name:     "role outside the vocabulary",
			callerID: "owner",
			entries:  []models.Membership{{UserID: "u2", Role: "SUPERUSER"}},
			wantErr:  domain.ErrValidation,
		},
		{
			name:     "empty batch",
			callerID: "owner",
			wantErr:  domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(annotationWithMembers(tt.existing...))
			mutator := NewMutator(store, testLogger())

			result, err := mutator.AddMembers(context.Background(), models.KindAnnotation, "a1", tt.callerID, tt.entries)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AddMembers() = %v, want %v", err, tt.wantErr)
				}
				// All-or-nothing: the stored list must be unchanged.
				stored, _ := store.Load(context.Background(), models.KindAnnotation, "a1")
				if len(stored.Members) != len(tt.existing) {
					t.Fatalf("member list mutated on failure: %d entries, want %d", len(stored.Members), len(tt.existing))
				}
				return
			}
			if err != nil {
				t.Fatalf("AddMembers() = %v", err)
			}
			if len(result.Members) != tt.wantLen {
				t.Fatalf("got %d members, want %d", len(result.Members), tt.wantLen)
			}
			assertUniqueMembers(t, result.Members)
		})
	}
}

func TestAddMembersMissingResource(t *testing.T) {
	mutator := NewMutator(newMemStore(), testLogger())

	_, err := mutator.AddMembers(context.Background(), models.KindGroup, "missing", "owner",
		[]models.Membership{{UserID: "u2", Role: models.RoleViewer}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("AddMembers() = %v, want not found", err)
	}

	// The existence check comes first, so a malformed batch against a
	// missing resource still reports not found.
	_, err = mutator.AddMembers(context.Background(), models.KindGroup, "missing", "owner",
		[]models.Membership{{UserID: "u2", Role: "SUPERUSER"}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("AddMembers() with invalid role = %v, want not found", err)
	}
}

func TestUpdateMemberRole(t *testing.T) {
	tests := []struct {
		name     string
		callerID string
		targetID string
		newRole  models.Role
		wantErr  error
	}{
		{
			name:     "owner changes a member role",
			callerID: "owner",
			targetID: "u2",
			newRole:  models.RoleAdmin,
		},
		{
			name:     "caller cannot change own role",
			callerID: "u2",
			targetID: "u2",
			newRole:  models.RoleAdmin,
			wantErr:  domain.ErrConflict,
		},
		{
			name:     "unknown member",
			callerID: "owner",
			targetID: "ghost",
			newRole:  models.RoleAdmin,
			wantErr:  domain.ErrConflict,
		},
		{
			name:     "role outside the vocabulary",
			callerID: "owner",
			targetID: "u2",
			newRole:  "invited",
			wantErr:  domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(annotationWithMembers(
				models.Membership{UserID: "u2", Role: models.RoleViewer},
				models.Membership{UserID: "u3", Role: models.RoleEdit},
			))
			mutator := NewMutator(store, testLogger())

			result, err := mutator.UpdateMemberRole(context.Background(), models.KindAnnotation, "a1", tt.callerID, tt.targetID, tt.newRole)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("UpdateMemberRole() = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateMemberRole() = %v", err)
			}

			if got := result.Member(tt.targetID); got == nil || got.Role != tt.newRole {
				t.Fatalf("target role = %v, want %v", got, tt.newRole)
			}
			// Other entries are untouched.
			if got := result.Member("u3"); got == nil || got.Role != models.RoleEdit {
				t.Fatalf("unrelated member changed: %v", got)
			}
			assertUniqueMembers(t, result.Members)
		})
	}
}

func TestRemoveMember(t *testing.T) {
	tests := []struct {
		name     string
		callerID string
		targetID string
		wantErr  error
	}{
		{
			name:     "owner removes a member",
			callerID: "owner",
			targetID: "u2",
		},
		{
			name:     "non-owner is forbidden even as admin member",
			callerID: "u2",
			targetID: "u3",
			wantErr:  domain.ErrForbidden,
		},
		{
			name:     "unknown member",
			callerID: "owner",
			targetID: "ghost",
			wantErr:  domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(annotationWithMembers(
				models.Membership{UserID: "u2", Role: models.RoleAdmin},
				models.Membership{UserID: "u3", Role: models.RoleViewer},
			))
			mutator := NewMutator(store, testLogger())

			result, err := mutator.RemoveMember(context.Background(), models.KindAnnotation, "a1", tt.callerID, tt.targetID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("RemoveMember() = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RemoveMember() = %v", err)
			}
			if result.Member(tt.targetID) != nil {
				t.Fatalf("member %s still present after removal", tt.targetID)
			}
			if len(result.Members) != 1 {
				t.Fatalf("got %d members, want 1", len(result.Members))
			}
		})
	}
}

func TestGroupLinks(t *testing.T) {
	t.Run("attach adds the link", func(t *testing.T) {
		store := newMemStore(annotationWithMembers())
		mutator := NewMutator(store, testLogger())

		result, err := mutator.AttachGroup(context.Background(), "a1", "g1")
		if err != nil {
			t.Fatalf("AttachGroup() = %v", err)
		}
		if len(result.GroupIDs) != 1 || result.GroupIDs[0] != "g1" {
			t.Fatalf("group links = %v, want [g1]", result.GroupIDs)
		}
	})

	t.Run("attach twice is a conflict", func(t *testing.T) {
		annotation := annotationWithMembers()
		annotation.GroupIDs = []string{"g1"}
		mutator := NewMutator(newMemStore(annotation), testLogger())

		if _, err := mutator.AttachGroup(context.Background(), "a1", "g1"); !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("AttachGroup() = %v, want conflict", err)
		}
	})

	t.Run("detach removes only the named link", func(t *testing.T) {
		annotation := annotationWithMembers()
		annotation.GroupIDs = []string{"g1", "g2"}
		mutator := NewMutator(newMemStore(annotation), testLogger())

		result, err := mutator.DetachGroup(context.Background(), "a1", "g1")
		if err != nil {
			t.Fatalf("DetachGroup() = %v", err)
		}
		if len(result.GroupIDs) != 1 || result.GroupIDs[0] != "g2" {
			t.Fatalf("group links = %v, want [g2]", result.GroupIDs)
		}
	})

	t.Run("detach of an absent link is a conflict", func(t *testing.T) {
		mutator := NewMutator(newMemStore(annotationWithMembers()), testLogger())

		if _, err := mutator.DetachGroup(context.Background(), "a1", "g9"); !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("DetachGroup() = %v, want conflict", err)
		}
	})
}

// TestMembershipLifecycle walks the owner/member scenario end to end:
// grant, self-service rejection, role change, removal.
func TestMembershipLifecycle(t *testing.T) {
	store := newMemStore(annotationWithMembers())
	mutator := NewMutator(store, testLogger())
	ctx := context.Background()

	result, err := mutator.AddMembers(ctx, models.KindAnnotation, "a1", "owner",
		[]models.Membership{{UserID: "u2", Role: models.RoleViewer}})
	if err != nil {
		t.Fatalf("AddMembers() = %v", err)
	}
	if got := result.Member("u2"); got == nil || got.Role != models.RoleViewer {
		t.Fatalf("u2 membership = %v, want VIEWER", got)
	}

	if _, err := mutator.UpdateMemberRole(ctx, models.KindAnnotation, "a1", "u2", "u2", models.RoleAdmin); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("self role change = %v, want conflict", err)
	}

	result, err = mutator.UpdateMemberRole(ctx, models.KindAnnotation, "a1", "owner", "u2", models.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateMemberRole() = %v", err)
	}
	if got := result.Member("u2"); got == nil || got.Role != models.RoleAdmin {
		t.Fatalf("u2 membership = %v, want ADMIN", got)
	}

	if _, err := mutator.RemoveMember(ctx, models.KindAnnotation, "a1", "u2", "u2"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner removal = %v, want forbidden", err)
	}

	result, err = mutator.RemoveMember(ctx, models.KindAnnotation, "a1", "owner", "u2")
	if err != nil {
		t.Fatalf("RemoveMember() = %v", err)
	}
	if len(result.Members) != 0 {
		t.Fatalf("members = %v, want empty", result.Members)
	}
}

func assertUniqueMembers(t *testing.T, members []models.Membership) {
	t.Helper()
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m.UserID] {
			t.Fatalf("duplicate member %s", m.UserID)
		}
		seen[m.UserID] = true
	}
}
