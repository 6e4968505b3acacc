package sharing

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
)

// memStore is an in-memory MembershipStore for guard and mutator tests.
type memStore struct {
	resources map[string]*models.SharedResource
}

func newMemStore(resources ...*models.SharedResource) *memStore {
	s := &memStore{resources: make(map[string]*models.SharedResource)}
	for _, r := range resources {
		s.put(r)
	}
	return s
}

func (s *memStore) key(kind models.ResourceKind, id string) string {
	return string(kind) + "/" + id
}

func (s *memStore) put(r *models.SharedResource) {
	s.resources[s.key(r.Kind, r.ID)] = r
}

func (s *memStore) Load(_ context.Context, kind models.ResourceKind, id string) (*models.SharedResource, error) {
	r, ok := s.resources[s.key(kind, id)]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	clone := *r
	clone.Members = append([]models.Membership{}, r.Members...)
	clone.GroupIDs = append([]string{}, r.GroupIDs...)
	return &clone, nil
}

func (s *memStore) ReplaceMembers(_ context.Context, kind models.ResourceKind, id string, members []models.Membership) (*models.SharedResource, error) {
	r, ok := s.resources[s.key(kind, id)]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	r.Members = members
	clone := *r
	return &clone, nil
}

func (s *memStore) ReplaceGroupLinks(_ context.Context, annotationID string, groupIDs []string) (*models.SharedResource, error) {
	r, ok := s.resources[s.key(models.KindAnnotation, annotationID)]
	if !ok {
		return nil, fmt.Errorf("annotation %s: %w", annotationID, domain.ErrNotFound)
	}
	r.GroupIDs = groupIDs
	clone := *r
	return &clone, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
