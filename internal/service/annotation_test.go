package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/httputil"
)

// memAnnotationRepo is an in-memory AnnotationRepository for service tests.
type memAnnotationRepo struct {
	annotations map[string]*models.Annotation
}

func newMemAnnotationRepo(annotations ...*models.Annotation) *memAnnotationRepo {
	r := &memAnnotationRepo{annotations: make(map[string]*models.Annotation)}
	for _, a := range annotations {
		r.annotations[a.ID] = a
	}
	return r
}

func (r *memAnnotationRepo) Create(_ context.Context, annotation *models.Annotation) error {
	r.annotations[annotation.ID] = annotation
	return nil
}

func (r *memAnnotationRepo) GetByID(_ context.Context, id string) (*models.Annotation, error) {
	a, ok := r.annotations[id]
	if !ok {
		return nil, fmt.Errorf("annotation %s: %w", id, domain.ErrNotFound)
	}
	clone := *a
	return &clone, nil
}

func (r *memAnnotationRepo) ListForUser(_ context.Context, userID string, page, pageSize int) ([]models.Annotation, error) {
	return nil, nil
}

func (r *memAnnotationRepo) ListByGroup(_ context.Context, groupID string) ([]models.Annotation, error) {
	return nil, nil
}

func (r *memAnnotationRepo) Search(_ context.Context, userID, query string) ([]models.Annotation, error) {
	return nil, nil
}

func (r *memAnnotationRepo) FindDuplicate(_ context.Context, ownerID, title, category, groupID string) (*models.Annotation, error) {
	for _, a := range r.annotations {
		if a.OwnerID != ownerID || a.Title != title || a.Category != category {
			continue
		}
		if groupID == "" {
			if len(a.GroupIDs) == 0 {
				clone := *a
				return &clone, nil
			}
			continue
		}
		for _, g := range a.GroupIDs {
			if g == groupID {
				clone := *a
				return &clone, nil
			}
		}
	}
	return nil, fmt.Errorf("annotation: %w", domain.ErrNotFound)
}

func (r *memAnnotationRepo) Update(_ context.Context, annotation *models.Annotation) error {
	if _, ok := r.annotations[annotation.ID]; !ok {
		return fmt.Errorf("annotation %s: %w", annotation.ID, domain.ErrNotFound)
	}
	clone := *annotation
	r.annotations[annotation.ID] = &clone
	return nil
}

func (r *memAnnotationRepo) Delete(_ context.Context, id string) error {
	delete(r.annotations, id)
	return nil
}

func (r *memAnnotationRepo) DetachGroupFromAll(_ context.Context, groupID string) error {
	return nil
}

func optString(s string) httputil.OptionalString {
	return httputil.OptionalString{Present: true, Value: &s}
}

func testAnnotation(id, owner, title, category string, groupIDs ...string) *models.Annotation {
	if groupIDs == nil {
		groupIDs = []string{}
	}
	now := time.Now()
	return &models.Annotation{
		ID:          id,
		OwnerID:     owner,
		Title:       title,
		Content:     "",
		Category:    category,
		Members:     []models.Membership{},
		GroupIDs:    groupIDs,
		Attachments: []models.Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestAnnotationUpdateDuplicateTitle(t *testing.T) {
	repo := newMemAnnotationRepo(
		testAnnotation("a1", "u1", "Notes", "Work"),
		testAnnotation("a2", "u1", "Draft", "Work"),
	)
	svc := NewAnnotationService(repo, nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.Update(context.Background(), "a2", &UpdateAnnotationRequest{Title: optString("Notes")})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict renaming onto an existing title, got %v", err)
	}

	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %T", err)
	}
	if conflict.ResourceID != "a1" {
		t.Errorf("conflict resource = %q, want a1", conflict.ResourceID)
	}
}

func TestAnnotationUpdateDuplicateScopedByGroup(t *testing.T) {
	// The same title and category in a different group is not a duplicate.
	repo := newMemAnnotationRepo(
		testAnnotation("a1", "u1", "Notes", "Work", "g1"),
		testAnnotation("a2", "u1", "Draft", "Work", "g2"),
	)
	svc := NewAnnotationService(repo, nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	updated, err := svc.Update(context.Background(), "a2", &UpdateAnnotationRequest{Title: optString("Notes")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Notes" {
		t.Errorf("Title = %q, want Notes", updated.Title)
	}

	// But renaming into the same group's scope is.
	repo.annotations["a2"].GroupIDs = []string{"g1"}
	repo.annotations["a2"].Title = "Draft"
	_, err = svc.Update(context.Background(), "a2", &UpdateAnnotationRequest{Title: optString("Notes")})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict within the same group, got %v", err)
	}
}

func TestAnnotationUpdateKeepsOwnTitle(t *testing.T) {
	// Updating only the content must not collide with the annotation itself.
	repo := newMemAnnotationRepo(testAnnotation("a1", "u1", "Notes", "Work"))
	svc := NewAnnotationService(repo, nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	updated, err := svc.Update(context.Background(), "a1", &UpdateAnnotationRequest{
		Title:   optString("Notes"),
		Content: optString("updated body"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Content != "updated body" {
		t.Errorf("Content = %q, want updated body", updated.Content)
	}
}
