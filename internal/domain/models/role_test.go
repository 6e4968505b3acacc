package models

import "testing"

func TestIsValidRole(t *testing.T) {
	for _, role := range Roles() {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false, want true", role)
		}
	}

	invalid := []Role{"", "admin", "OWNER", "Viewer", "EDITOR"}
	for _, role := range invalid {
		if IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = true, want false", role)
		}
	}
}

func TestSharedResourceMember(t *testing.T) {
	resource := &SharedResource{
		ID:      "r1",
		Kind:    KindGroup,
		OwnerID: "owner",
		Members: []Membership{
			{UserID: "u1", Role: RoleViewer},
			{UserID: "u2", Role: RoleAdmin},
		},
	}

	if member := resource.Member("u2"); member == nil || member.Role != RoleAdmin {
		t.Errorf("Member(u2) = %+v, want ADMIN entry", member)
	}
	if member := resource.Member("owner"); member != nil {
		t.Errorf("Member(owner) = %+v, want nil: the owner is never listed", member)
	}
	if member := resource.Member("stranger"); member != nil {
		t.Errorf("Member(stranger) = %+v, want nil", member)
	}

	if !resource.IsOwner("owner") {
		t.Error("IsOwner(owner) = false, want true")
	}
	if resource.IsOwner("u2") {
		t.Error("IsOwner(u2) = true, want false: ADMIN role is not ownership")
	}
}
