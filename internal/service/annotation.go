package service

import (
	"context"
	"fmt"
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

// CreateAnnotationRequest is the payload for annotation creation.
type CreateAnnotationRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// Validate checks the create annotation request fields.
func (r CreateAnnotationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&r.Category, validation.Required, validation.Length(1, config.MaxNameLength)),
	)
}

// UpdateAnnotationRequest is the payload for partial annotation updates.
// OptionalString distinguishes absent fields from explicit clears.
type UpdateAnnotationRequest struct {
	Title    httputil.OptionalString `json:"title"`
	Content  httputil.OptionalString `json:"content"`
	Category httputil.OptionalString `json:"category"`
}

// AddMembersRequest is the payload for granting access to a shareable
// resource. Shared by annotations and groups.
type AddMembersRequest struct {
	Members []models.Membership `json:"members"`
}

// UpdateMemberRoleRequest is the payload for changing a member's role.
type UpdateMemberRoleRequest struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
}

// AnnotationService handles shareable notes, their attachments and their
// group links. Membership and link mutation is delegated to the shared
// mutator so annotations and groups enforce identical invariants.
type AnnotationService struct {
	annotationRepo repositories.AnnotationRepository
	attachmentRepo repositories.AttachmentRepository
	groupRepo      repositories.GroupRepository
	mutator        *sharing.Mutator
	logger         *slog.Logger
}

// NewAnnotationService creates a new annotation service.
func NewAnnotationService(
	annotationRepo repositories.AnnotationRepository,
	attachmentRepo repositories.AttachmentRepository,
	groupRepo repositories.GroupRepository,
	mutator *sharing.Mutator,
	logger *slog.Logger,
) *AnnotationService {
	return &AnnotationService{
		annotationRepo: annotationRepo,
		attachmentRepo: attachmentRepo,
		groupRepo:      groupRepo,
		mutator:        mutator,
		logger:         logger,
	}
}

// Create stores a new ungrouped annotation owned by the caller. The same
// title and category may exist once per group plus once ungrouped, so the
// duplicate check is scoped to owner, title, category and empty group.
func (s *AnnotationService) Create(ctx context.Context, userID string, req *CreateAnnotationRequest) (*models.Annotation, error) {
	return s.create(ctx, userID, "", req)
}

// CreateInGroup stores a new annotation owned by the caller and linked to
// the given group. The route guard has already verified group access.
func (s *AnnotationService) CreateInGroup(ctx context.Context, userID, groupID string, req *CreateAnnotationRequest) (*models.Annotation, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.create(ctx, userID, groupID, req)
}

func (s *AnnotationService) create(ctx context.Context, userID, groupID string, req *CreateAnnotationRequest) (*models.Annotation, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	dup, err := s.annotationRepo.FindDuplicate(ctx, userID, req.Title, req.Category, groupID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if dup != nil {
		return nil, &domain.ConflictError{
			Message:      "an annotation with this title and category already exists in this scope",
			ResourceType: "annotation",
			ResourceID:   dup.ID,
		}
	}

	now := time.Now()
	annotation := &models.Annotation{
		ID:          uuid.New().String(),
		OwnerID:     userID,
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Members:     []models.Membership{},
		GroupIDs:    []string{},
		Attachments: []models.Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if groupID != "" {
		annotation.GroupIDs = []string{groupID}
	}

	if err := s.annotationRepo.Create(ctx, annotation); err != nil {
		return nil, err
	}

	s.logger.Info("annotation created",
		"annotation_id", annotation.ID,
		"owner_id", userID,
		"group_id", groupID,
	)

	return annotation, nil
}

// List returns a page of annotations the user owns or is a member of.
func (s *AnnotationService) List(ctx context.Context, userID string, page int) ([]models.Annotation, error) {
	return s.annotationRepo.ListForUser(ctx, userID, page, config.AnnotationPageSize)
}

// ListByGroup returns the annotations attached to a group.
func (s *AnnotationService) ListByGroup(ctx context.Context, groupID string) ([]models.Annotation, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.annotationRepo.ListByGroup(ctx, groupID)
}

// Get returns a single annotation. Access was decided by the route guard.
func (s *AnnotationService) Get(ctx context.Context, id string) (*models.Annotation, error) {
	return s.annotationRepo.GetByID(ctx, id)
}

// Search matches the user's own annotations by title or category.
func (s *AnnotationService) Search(ctx context.Context, userID, query string) ([]models.Annotation, error) {
	if query == "" {
		return nil, &domain.ValidationError{Message: "search query is required"}
	}
	return s.annotationRepo.Search(ctx, userID, query)
}

// Update applies a partial update to an annotation's payload fields.
func (s *AnnotationService) Update(ctx context.Context, id string, req *UpdateAnnotationRequest) (*models.Annotation, error) {
	annotation, err := s.annotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title.Present {
		title := req.Title.String()
		if title == "" || len(title) > config.MaxTitleLength {
			return nil, &domain.ValidationError{Message: "title must be between 1 and 255 characters"}
		}
		annotation.Title = title
	}
	if req.Content.Present {
		annotation.Content = req.Content.String()
	}
	if req.Category.Present {
		category := req.Category.String()
		if category == "" {
			return nil, &domain.ValidationError{Message: "category cannot be empty"}
		}
		annotation.Category = category
	}

	// Renames re-enter the uniqueness scope, so the duplicate check runs
	// again against every scope the annotation lives in.
	if req.Title.Present || req.Category.Present {
		scopes := annotation.GroupIDs
		if len(scopes) == 0 {
			scopes = []string{""}
		}
		for _, groupID := range scopes {
			dup, err := s.annotationRepo.FindDuplicate(ctx, annotation.OwnerID, annotation.Title, annotation.Category, groupID)
			if err != nil && !isNotFound(err) {
				return nil, err
			}
			if dup != nil && dup.ID != annotation.ID {
				return nil, &domain.ConflictError{
					Message:      "an annotation with this title and category already exists in this scope",
					ResourceType: "annotation",
					ResourceID:   dup.ID,
				}
			}
		}
	}

	annotation.UpdatedAt = time.Now()

	if err := s.annotationRepo.Update(ctx, annotation); err != nil {
		return nil, err
	}

	s.logger.Info("annotation updated", "annotation_id", id)

	return annotation, nil
}

// Delete removes an annotation and its stored attachments. Only the owner
// may delete, regardless of member roles.
func (s *AnnotationService) Delete(ctx context.Context, userID, id string) error {
	annotation, err := s.annotationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if annotation.OwnerID != userID {
		return &domain.ForbiddenError{Message: "only the owner can delete this annotation"}
	}

	if err := s.attachmentRepo.DeleteAll(ctx, id); err != nil {
		return err
	}

	if err := s.annotationRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("annotation deleted", "annotation_id", id, "owner_id", userID)

	return nil
}

// AddMembers grants access to the annotation.
func (s *AnnotationService) AddMembers(ctx context.Context, annotationID, callerID string, req *AddMembersRequest) (*models.SharedResource, error) {
	return s.mutator.AddMembers(ctx, models.KindAnnotation, annotationID, callerID, req.Members)
}

// UpdateMemberRole changes a member's role on the annotation.
func (s *AnnotationService) UpdateMemberRole(ctx context.Context, annotationID, callerID string, req *UpdateMemberRoleRequest) (*models.SharedResource, error) {
	return s.mutator.UpdateMemberRole(ctx, models.KindAnnotation, annotationID, callerID, req.UserID, req.Role)
}

// RemoveMember revokes a member's access to the annotation.
func (s *AnnotationService) RemoveMember(ctx context.Context, annotationID, callerID, targetUserID string) (*models.SharedResource, error) {
	return s.mutator.RemoveMember(ctx, models.KindAnnotation, annotationID, callerID, targetUserID)
}

// AttachGroup links the annotation to a group.
func (s *AnnotationService) AttachGroup(ctx context.Context, annotationID, groupID string) (*models.SharedResource, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.mutator.AttachGroup(ctx, annotationID, groupID)
}

// DetachGroup unlinks the annotation from a group.
func (s *AnnotationService) DetachGroup(ctx context.Context, annotationID, groupID string) (*models.SharedResource, error) {
	return s.mutator.DetachGroup(ctx, annotationID, groupID)
}

// UploadAttachment validates and stores a file on the annotation. Name
// collisions within one annotation are conflicts.
func (s *AnnotationService) UploadAttachment(ctx context.Context, annotationID, name, contentType string, data []byte) (*models.Attachment, error) {
	if name == "" {
		return nil, &domain.ValidationError{Message: "attachment name is required"}
	}
	if len(data) == 0 {
		return nil, &domain.ValidationError{Message: "attachment is empty"}
	}
	if len(data) > config.MaxUploadSize {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("attachment exceeds the %dMB limit", config.MaxUploadSize>>20),
		}
	}
	if !config.AllowedUploadTypes[contentType] {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("content type %q is not allowed", contentType),
		}
	}

	annotation, err := s.annotationRepo.GetByID(ctx, annotationID)
	if err != nil {
		return nil, err
	}

	for _, existing := range annotation.Attachments {
		if existing.Name == name {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("attachment %q already exists", name),
				ResourceType: "annotation",
				ResourceID:   annotationID,
			}
		}
	}

	meta := models.Attachment{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   time.Now(),
	}

	if err := s.attachmentRepo.Put(ctx, annotationID, meta, data); err != nil {
		return nil, err
	}

	annotation.Attachments = append(annotation.Attachments, meta)
	annotation.UpdatedAt = time.Now()
	if err := s.annotationRepo.Update(ctx, annotation); err != nil {
		return nil, err
	}

	s.logger.Info("attachment uploaded",
		"annotation_id", annotationID,
		"name", name,
		"size", meta.Size,
	)

	return &meta, nil
}

// GetAttachment returns an attachment's metadata and bytes.
func (s *AnnotationService) GetAttachment(ctx context.Context, annotationID, name string) (*models.Attachment, []byte, error) {
	return s.attachmentRepo.Get(ctx, annotationID, name)
}

// DeleteAttachment removes a stored file from the annotation.
func (s *AnnotationService) DeleteAttachment(ctx context.Context, annotationID, name string) error {
	annotation, err := s.annotationRepo.GetByID(ctx, annotationID)
	if err != nil {
		return err
	}

	if err := s.attachmentRepo.Delete(ctx, annotationID, name); err != nil {
		return err
	}

	kept := make([]models.Attachment, 0, len(annotation.Attachments))
	for _, meta := range annotation.Attachments {
		if meta.Name != name {
			kept = append(kept, meta)
		}
	}
	annotation.Attachments = kept
	annotation.UpdatedAt = time.Now()

	if err := s.annotationRepo.Update(ctx, annotation); err != nil {
		return err
	}

	s.logger.Info("attachment deleted", "annotation_id", annotationID, "name", name)

	return nil
}
