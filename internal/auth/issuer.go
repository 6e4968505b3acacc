package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskly/internal/domain/models"
)

// TokenIssuer signs access tokens for the built-in login flow. Only used
// when running with the shared-secret verifier; JWKS deployments issue
// tokens from the identity provider instead.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates an issuer signing HS256 tokens with the given TTL.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}

	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// IssueToken signs a token whose subject is the user's ID.
func (i *TokenIssuer) IssueToken(userID string) (string, error) {
	now := time.Now()

	claims := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
