package models

import "time"

// Attachment is metadata for a binary file stored with an annotation.
// File bytes live in their own table and are fetched separately.
type Attachment struct {
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// Annotation is a shareable note. It has a single immutable owner, a
// member list with per-member roles, and may be attached to any number of
// groups. Authorization against an annotation considers both its own
// membership and, when a group ID is supplied, the group's.
type Annotation struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Category    string       `json:"category"`
	Members     []Membership `json:"members"`
	GroupIDs    []string     `json:"group_ids"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Shared returns the authorization projection of the annotation.
func (a *Annotation) Shared() *SharedResource {
	return &SharedResource{
		ID:       a.ID,
		Kind:     KindAnnotation,
		OwnerID:  a.OwnerID,
		Members:  a.Members,
		GroupIDs: a.GroupIDs,
	}
}
