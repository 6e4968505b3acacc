package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
)

// JWKSVerifier validates tokens signed by an external identity provider
// using public keys fetched from its JWKS endpoint. Keys are cached and
// refreshed by keyfunc based on HTTP cache headers.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWKSVerifier creates a verifier backed by the given JWKS endpoint.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx := context.Background()
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWKS verifier initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{
		jwks:   jwks,
		logger: logger,
	}, nil
}

// VerifyToken validates the token against the provider's public keys.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, v.jwks.Keyfunc)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, &domain.UnauthorizedError{Message: "invalid or expired token"}
	}

	if !token.Valid {
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	// Prevent algorithm confusion attacks, allow only RS256 or ES256
	switch token.Method.Alg() {
	case "RS256", "ES256":
		// allowed
	default:
		v.logger.Warn("token uses unexpected algorithm", "algorithm", token.Method.Alg())
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok {
		return nil, &domain.UnauthorizedError{Message: "invalid token claims"}
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, &domain.UnauthorizedError{Message: "token has no subject"}
	}

	return claims, nil
}

// Close releases resources held by the verifier. keyfunc v3 manages its
// own refresh lifecycle, so this only logs shutdown.
func (v *JWKSVerifier) Close() {
	v.logger.Info("JWKS verifier closed")
}
