package auth

import "taskly/internal/domain/models"

// TokenVerifier validates bearer tokens and extracts claims.
type TokenVerifier interface {
	// VerifyToken validates the raw token string and returns its claims.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases background resources such as JWKS refresh loops.
	Close()
}
