package models

import "time"

// Group is a shareable collection that annotations can attach to. Like an
// annotation it has a single immutable owner and a role-bearing member
// list. Deleting a group only removes the links, never the annotations.
type Group struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Members     []Membership `json:"members"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Shared returns the authorization projection of the group.
func (g *Group) Shared() *SharedResource {
	return &SharedResource{
		ID:      g.ID,
		Kind:    KindGroup,
		OwnerID: g.OwnerID,
		Members: g.Members,
	}
}
