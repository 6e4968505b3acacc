package service

import (
	"context"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"taskly/internal/config"
	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/domain/repositories"
	"taskly/internal/httputil"
	"taskly/internal/service/sharing"
)

// CreateGroupRequest is the payload for group creation.
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate checks the create group request fields.
func (r CreateGroupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&r.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
}

// UpdateGroupRequest is the payload for partial group updates.
type UpdateGroupRequest struct {
	Name        httputil.OptionalString `json:"name"`
	Description httputil.OptionalString `json:"description"`
}

// GroupService handles shareable groups. Membership mutation is delegated
// to the shared mutator, the same engine annotations use.
type GroupService struct {
	groupRepo      repositories.GroupRepository
	annotationRepo repositories.AnnotationRepository
	mutator        *sharing.Mutator
	logger         *slog.Logger
}

// NewGroupService creates a new group service.
func NewGroupService(
	groupRepo repositories.GroupRepository,
	annotationRepo repositories.AnnotationRepository,
	mutator *sharing.Mutator,
	logger *slog.Logger,
) *GroupService {
	return &GroupService{
		groupRepo:      groupRepo,
		annotationRepo: annotationRepo,
		mutator:        mutator,
		logger:         logger,
	}
}

// Create stores a new group owned by the caller. Names are unique per
// owner.
func (s *GroupService) Create(ctx context.Context, userID string, req *CreateGroupRequest) (*models.Group, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	existing, err := s.groupRepo.GetByName(ctx, userID, req.Name)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ConflictError{
			Message:      "a group with this name already exists",
			ResourceType: "group",
			ResourceID:   existing.ID,
		}
	}

	now := time.Now()
	group := &models.Group{
		ID:          uuid.New().String(),
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Members:     []models.Membership{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	s.logger.Info("group created", "group_id", group.ID, "owner_id", userID)

	return group, nil
}

// List returns a page of groups the user owns or is a member of.
func (s *GroupService) List(ctx context.Context, userID string, page int) ([]models.Group, error) {
	return s.groupRepo.ListForUser(ctx, userID, page, config.GroupPageSize)
}

// Get returns a single group. Access was decided by the route guard.
func (s *GroupService) Get(ctx context.Context, id string) (*models.Group, error) {
	return s.groupRepo.GetByID(ctx, id)
}

// Search matches groups the user can see by name.
func (s *GroupService) Search(ctx context.Context, userID, query string) ([]models.Group, error) {
	if query == "" {
		return nil, &domain.ValidationError{Message: "search query is required"}
	}
	return s.groupRepo.Search(ctx, userID, query)
}

// Update applies a partial update to the group's payload fields.
func (s *GroupService) Update(ctx context.Context, id string, req *UpdateGroupRequest) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name.Present {
		name := req.Name.String()
		if name == "" || len(name) > config.MaxNameLength {
			return nil, &domain.ValidationError{Message: "name must be between 1 and 255 characters"}
		}
		if name != group.Name {
			existing, err := s.groupRepo.GetByName(ctx, group.OwnerID, name)
			if err != nil && !isNotFound(err) {
				return nil, err
			}
			if existing != nil {
				return nil, &domain.ConflictError{
					Message:      "a group with this name already exists",
					ResourceType: "group",
					ResourceID:   existing.ID,
				}
			}
		}
		group.Name = name
	}
	if req.Description.Present {
		group.Description = req.Description.String()
	}

	group.UpdatedAt = time.Now()

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}

	s.logger.Info("group updated", "group_id", id)

	return group, nil
}

// Delete removes a group and detaches every annotation linked to it. The
// annotations themselves are untouched. Only the owner may delete.
func (s *GroupService) Delete(ctx context.Context, userID, id string) error {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if group.OwnerID != userID {
		return &domain.ForbiddenError{Message: "only the owner can delete this group"}
	}

	if err := s.annotationRepo.DetachGroupFromAll(ctx, id); err != nil {
		return err
	}

	if err := s.groupRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("group deleted", "group_id", id, "owner_id", userID)

	return nil
}

// AddMembers grants access to the group.
func (s *GroupService) AddMembers(ctx context.Context, groupID, callerID string, req *AddMembersRequest) (*models.SharedResource, error) {
	return s.mutator.AddMembers(ctx, models.KindGroup, groupID, callerID, req.Members)
}

// UpdateMemberRole changes a member's role on the group.
func (s *GroupService) UpdateMemberRole(ctx context.Context, groupID, callerID string, req *UpdateMemberRoleRequest) (*models.SharedResource, error) {
	return s.mutator.UpdateMemberRole(ctx, models.KindGroup, groupID, callerID, req.UserID, req.Role)
}

// RemoveMember revokes a member's access to the group.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, callerID, targetUserID string) (*models.SharedResource, error) {
	return s.mutator.RemoveMember(ctx, models.KindGroup, groupID, callerID, targetUserID)
}
