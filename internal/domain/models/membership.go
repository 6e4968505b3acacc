package models

// ResourceKind identifies which shareable resource a membership operation
// targets. Annotations and groups carry the same owner/member structure and
// are mutated through the same accessor.
type ResourceKind string

const (
	KindAnnotation ResourceKind = "annotation"
	KindGroup      ResourceKind = "group"
)

// Membership is one (user, role) entry in a resource's member list.
// A user appears at most once per resource, and the owner never appears.
type Membership struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// SharedResource is the kind-independent projection of an annotation or
// group used for authorization decisions and membership mutation. GroupIDs
// is only populated for annotations.
type SharedResource struct {
	ID       string       `json:"id"`
	Kind     ResourceKind `json:"kind"`
	OwnerID  string       `json:"owner_id"`
	Members  []Membership `json:"members"`
	GroupIDs []string     `json:"group_ids,omitempty"`
}

// Member returns the membership entry for userID, or nil if the user is
// not a member.
func (r *SharedResource) Member(userID string) *Membership {
	for i := range r.Members {
		if r.Members[i].UserID == userID {
			return &r.Members[i]
		}
	}
	return nil
}

// IsOwner reports whether userID owns the resource. Ownership conveys
// unconditional permission, independent of the member list.
func (r *SharedResource) IsOwner(userID string) bool {
	return r.OwnerID == userID
}
