package auth

import (
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
)

// JWTVerifier validates HMAC-signed tokens with a shared secret. This is
// the default verifier; deployments with an external identity provider
// use JWKSVerifier instead.
type JWTVerifier struct {
	secret []byte
	logger *slog.Logger
}

// NewJWTVerifier creates a verifier for HS256 tokens.
func NewJWTVerifier(secret string, logger *slog.Logger) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}

	return &JWTVerifier{
		secret: []byte(secret),
		logger: logger,
	}, nil
}

// VerifyToken validates the token signature and expiry and returns its claims.
func (v *JWTVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		v.logger.Debug("token validation failed", "error", err)
		return nil, &domain.UnauthorizedError{Message: "invalid or expired token"}
	}

	if !token.Valid {
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	if claims.Subject == "" {
		return nil, &domain.UnauthorizedError{Message: "token has no subject"}
	}

	return claims, nil
}

// Close implements TokenVerifier. HMAC verification holds no resources.
func (v *JWTVerifier) Close() {}
