package models

// Role is a member's access level on a shared annotation or group.
// The set is closed and flat: routes declare an explicit allow-list and
// sufficiency is plain set membership, there is no ordering between roles.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEdit   Role = "EDIT"
	RoleDelete Role = "DELETE"
	RoleViewer Role = "VIEWER"
)

// Roles returns the closed vocabulary of valid roles.
func Roles() []Role {
	return []Role{RoleAdmin, RoleEdit, RoleDelete, RoleViewer}
}

// IsValidRole reports whether value belongs to the closed role vocabulary.
func IsValidRole(value Role) bool {
	switch value {
	case RoleAdmin, RoleEdit, RoleDelete, RoleViewer:
		return true
	}
	return false
}
