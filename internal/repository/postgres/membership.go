package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/domain/repositories"
)

// MembershipStore implements the kind-independent accessor over the
// annotations and groups tables. Every write is a single UPDATE replacing
// exactly one field, which is as atomic as the store gets: the mutator's
// read-check-write sequence above it is deliberately not transactional.
type MembershipStore struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMembershipStore creates a new membership store.
func NewMembershipStore(config *RepositoryConfig) repositories.MembershipStore {
	return &MembershipStore{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func (s *MembershipStore) table(kind models.ResourceKind) (string, error) {
	switch kind {
	case models.KindAnnotation:
		return s.tables.Annotations, nil
	case models.KindGroup:
		return s.tables.Groups, nil
	}
	return "", &domain.ValidationError{Message: fmt.Sprintf("unknown resource kind %q", kind)}
}

// Load reads the authorization projection of a resource.
func (s *MembershipStore) Load(ctx context.Context, kind models.ResourceKind, id string) (*models.SharedResource, error) {
	table, err := s.table(kind)
	if err != nil {
		return nil, err
	}

	resource := models.SharedResource{Kind: kind}

	if kind == models.KindAnnotation {
		query := fmt.Sprintf(`SELECT id, owner_id, members, group_ids FROM %s WHERE id = $1`, table)
		err = GetExecutor(ctx, s.pool).QueryRow(ctx, query, id).Scan(
			&resource.ID, &resource.OwnerID, &resource.Members, &resource.GroupIDs)
	} else {
		query := fmt.Sprintf(`SELECT id, owner_id, members FROM %s WHERE id = $1`, table)
		err = GetExecutor(ctx, s.pool).QueryRow(ctx, query, id).Scan(
			&resource.ID, &resource.OwnerID, &resource.Members)
	}

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	if resource.Members == nil {
		resource.Members = []models.Membership{}
	}

	return &resource, nil
}

// ReplaceMembers atomically replaces the member list field. Owner and
// payload fields are never touched.
func (s *MembershipStore) ReplaceMembers(ctx context.Context, kind models.ResourceKind, id string, members []models.Membership) (*models.SharedResource, error) {
	table, err := s.table(kind)
	if err != nil {
		return nil, err
	}

	if members == nil {
		members = []models.Membership{}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET members = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, owner_id, members
	`, table)

	resource := models.SharedResource{Kind: kind}
	err = GetExecutor(ctx, s.pool).QueryRow(ctx, query, id, members).Scan(
		&resource.ID, &resource.OwnerID, &resource.Members)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("replace members on %s: %w", kind, err)
	}

	return &resource, nil
}

// ReplaceGroupLinks atomically replaces an annotation's group-link set.
func (s *MembershipStore) ReplaceGroupLinks(ctx context.Context, annotationID string, groupIDs []string) (*models.SharedResource, error) {
	if groupIDs == nil {
		groupIDs = []string{}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET group_ids = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, owner_id, members, group_ids
	`, s.tables.Annotations)

	resource := models.SharedResource{Kind: models.KindAnnotation}
	err := GetExecutor(ctx, s.pool).QueryRow(ctx, query, annotationID, groupIDs).Scan(
		&resource.ID, &resource.OwnerID, &resource.Members, &resource.GroupIDs)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("annotation %s: %w", annotationID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("replace group links: %w", err)
	}

	return &resource, nil
}
