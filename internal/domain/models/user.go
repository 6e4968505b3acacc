package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is an account holder. The sharing core only ever sees the opaque ID.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Claims is the JWT payload carried by API tokens. The subject claim is
// the user ID; everything else is standard.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the authenticated user's ID (the sub claim).
func (c *Claims) UserID() string {
	return c.Subject
}
