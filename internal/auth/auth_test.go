package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"taskly/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	verifier, err := NewJWTVerifier("test-secret", testLogger())
	if err != nil {
		t.Fatalf("NewJWTVerifier: %v", err)
	}

	token, err := issuer.IssueToken("user-123")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := verifier.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if got := claims.UserID(); got != "user-123" {
		t.Errorf("UserID() = %q, want %q", got, "user-123")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret-a", time.Hour)
	verifier, _ := NewJWTVerifier("secret-b", testLogger())

	token, err := issuer.IssueToken("user-123")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	_, err = verifier.VerifyToken(token)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("VerifyToken with wrong secret = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer, _ := NewTokenIssuer("test-secret", -time.Minute)
	verifier, _ := NewJWTVerifier("test-secret", testLogger())

	token, err := issuer.IssueToken("user-123")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	_, err = verifier.VerifyToken(token)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("VerifyToken with expired token = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	verifier, _ := NewJWTVerifier("test-secret", testLogger())

	_, err := verifier.VerifyToken("not-a-token")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("VerifyToken(garbage) = %v, want ErrUnauthorized", err)
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer("", time.Hour); err == nil {
		t.Error("NewTokenIssuer with empty secret succeeded, want error")
	}
	if _, err := NewJWTVerifier("", testLogger()); err == nil {
		t.Error("NewJWTVerifier with empty secret succeeded, want error")
	}
}
