package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskly/internal/auth"
	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/service/sharing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore serves a fixed set of shareable resources.
type fakeStore struct {
	resources map[string]*models.SharedResource
}

func (s *fakeStore) key(kind models.ResourceKind, id string) string {
	return string(kind) + "/" + id
}

func (s *fakeStore) Load(ctx context.Context, kind models.ResourceKind, id string) (*models.SharedResource, error) {
	res, ok := s.resources[s.key(kind, id)]
	if !ok {
		return nil, &domain.NotFoundError{Message: string(kind) + " not found"}
	}
	return res, nil
}

func (s *fakeStore) ReplaceMembers(ctx context.Context, kind models.ResourceKind, id string, members []models.Membership) (*models.SharedResource, error) {
	return nil, &domain.NotFoundError{Message: "not implemented"}
}

func (s *fakeStore) ReplaceGroupLinks(ctx context.Context, annotationID string, groupIDs []string) (*models.SharedResource, error) {
	return nil, &domain.NotFoundError{Message: "not implemented"}
}

func TestRouteGuardRequire(t *testing.T) {
	store := &fakeStore{resources: map[string]*models.SharedResource{
		"annotation/a1": {
			ID:      "a1",
			Kind:    models.KindAnnotation,
			OwnerID: "owner",
			Members: []models.Membership{{UserID: "viewer", Role: models.RoleViewer}},
		},
	}}
	rg := NewRouteGuard(sharing.NewGuard(store, testLogger()), testLogger())

	mux := http.NewServeMux()
	wrap := rg.Require([]models.Role{models.RoleAdmin, models.RoleEdit}, "annotationId", "")
	mux.HandleFunc("PATCH /api/annotations/{annotationId}", wrap(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		callerID   string
		path       string
		wantStatus int
	}{
		{
			name:       "owner passes regardless of roles",
			callerID:   "owner",
			path:       "/api/annotations/a1",
			wantStatus: http.StatusOK,
		},
		{
			name:       "member without a required role is denied",
			callerID:   "viewer",
			path:       "/api/annotations/a1",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "non-member is denied",
			callerID:   "stranger",
			path:       "/api/annotations/a1",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown resource is not found",
			callerID:   "owner",
			path:       "/api/annotations/missing",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unauthenticated request is rejected",
			callerID:   "",
			path:       "/api/annotations/a1",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, tt.path, nil)
			if tt.callerID != "" {
				req = authReq(t, req, tt.callerID)
			}
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

// authReq runs the request through the Auth middleware so the user ID is
// placed in context the same way production requests get it.
func authReq(t *testing.T, req *http.Request, userID string) *http.Request {
	t.Helper()

	issuer, err := auth.NewTokenIssuer("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	verifier, err := auth.NewJWTVerifier("test-secret", testLogger())
	if err != nil {
		t.Fatalf("NewJWTVerifier: %v", err)
	}

	token, err := issuer.IssueToken(userID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var authed *http.Request
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authed = r
	})
	rec := httptest.NewRecorder()
	Auth(verifier, testLogger())(capture).ServeHTTP(rec, req)

	if authed == nil {
		t.Fatalf("auth middleware rejected token: status %d", rec.Code)
	}
	return authed
}

func TestAuthMiddlewareSkipsPublicPaths(t *testing.T) {
	verifier, _ := auth.NewJWTVerifier("test-secret", testLogger())

	called := false
	handler := Auth(verifier, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("public path did not reach the handler")
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	verifier, _ := auth.NewJWTVerifier("test-secret", testLogger())

	handler := Auth(verifier, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
