package seed

import (
	"context"
	"fmt"
	"log/slog"

	"taskly/internal/domain/models"
	"taskly/internal/service"
	"taskly/internal/service/sharing"
)

// Seeder populates the database through the service layer so seeded data
// passes the same validation and uniqueness checks as API traffic.
type Seeder struct {
	users       *service.UserService
	tasks       *service.TaskService
	annotations *service.AnnotationService
	groups      *service.GroupService
	mutator     *sharing.Mutator
	logger      *slog.Logger
}

// NewSeeder creates a new seeder.
func NewSeeder(
	users *service.UserService,
	tasks *service.TaskService,
	annotations *service.AnnotationService,
	groups *service.GroupService,
	mutator *sharing.Mutator,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		users:       users,
		tasks:       tasks,
		annotations: annotations,
		groups:      groups,
		mutator:     mutator,
		logger:      logger,
	}
}

// Run seeds the full fixture set. User keys are resolved to the IDs
// created in this run; group references are resolved by owner and name.
func (s *Seeder) Run(ctx context.Context, fixtures *Fixtures) error {
	userIDs := make(map[string]string, len(fixtures.Users))
	groupIDs := make(map[string]string, len(fixtures.Groups))

	for _, fixture := range fixtures.Users {
		user, err := s.users.Register(ctx, &service.RegisterRequest{
			Name:            fixture.Name,
			Email:           fixture.Email,
			Password:        fixture.Password,
			ConfirmPassword: fixture.Password,
		})
		if err != nil {
			return fmt.Errorf("failed to seed user %q: %w", fixture.Key, err)
		}
		userIDs[fixture.Key] = user.ID
		s.logger.Info("seeded user", "key", fixture.Key, "user_id", user.ID)
	}

	for _, fixture := range fixtures.Groups {
		ownerID, ok := userIDs[fixture.Owner]
		if !ok {
			return fmt.Errorf("group %q references unknown user %q", fixture.Name, fixture.Owner)
		}

		group, err := s.groups.Create(ctx, ownerID, &service.CreateGroupRequest{
			Name:        fixture.Name,
			Description: fixture.Description,
		})
		if err != nil {
			return fmt.Errorf("failed to seed group %q: %w", fixture.Name, err)
		}
		groupIDs[fixture.Owner+"/"+fixture.Name] = group.ID

		if err := s.addMembers(ctx, models.KindGroup, group.ID, ownerID, fixture.Members, userIDs); err != nil {
			return fmt.Errorf("failed to seed members of group %q: %w", fixture.Name, err)
		}
		s.logger.Info("seeded group", "name", fixture.Name, "group_id", group.ID)
	}

	for _, fixture := range fixtures.Annotations {
		ownerID, ok := userIDs[fixture.Owner]
		if !ok {
			return fmt.Errorf("annotation %q references unknown user %q", fixture.Title, fixture.Owner)
		}

		req := &service.CreateAnnotationRequest{
			Title:    fixture.Title,
			Content:  fixture.Content,
			Category: fixture.Category,
		}

		var annotation *models.Annotation
		var err error
		if fixture.Group != "" {
			groupID, ok := groupIDs[fixture.Owner+"/"+fixture.Group]
			if !ok {
				return fmt.Errorf("annotation %q references unknown group %q", fixture.Title, fixture.Group)
			}
			annotation, err = s.annotations.CreateInGroup(ctx, ownerID, groupID, req)
		} else {
			annotation, err = s.annotations.Create(ctx, ownerID, req)
		}
		if err != nil {
			return fmt.Errorf("failed to seed annotation %q: %w", fixture.Title, err)
		}

		if err := s.addMembers(ctx, models.KindAnnotation, annotation.ID, ownerID, fixture.Members, userIDs); err != nil {
			return fmt.Errorf("failed to seed members of annotation %q: %w", fixture.Title, err)
		}
		s.logger.Info("seeded annotation", "title", fixture.Title, "annotation_id", annotation.ID)
	}

	for _, fixture := range fixtures.Tasks {
		ownerID, ok := userIDs[fixture.Owner]
		if !ok {
			return fmt.Errorf("task %q references unknown user %q", fixture.Name, fixture.Owner)
		}

		task, err := s.tasks.Create(ctx, ownerID, &service.CreateTaskRequest{
			Name:        fixture.Name,
			Category:    fixture.Category,
			SubCategory: fixture.SubCategory,
			Priority:    fixture.Priority,
			Date:        fixture.Date,
			Subtasks:    fixture.Subtasks,
		})
		if err != nil {
			return fmt.Errorf("failed to seed task %q: %w", fixture.Name, err)
		}
		s.logger.Info("seeded task", "name", fixture.Name, "task_id", task.ID)
	}

	return nil
}

func (s *Seeder) addMembers(ctx context.Context, kind models.ResourceKind, resourceID, ownerID string, members []MemberFixture, userIDs map[string]string) error {
	if len(members) == 0 {
		return nil
	}

	entries := make([]models.Membership, 0, len(members))
	for _, member := range members {
		userID, ok := userIDs[member.User]
		if !ok {
			return fmt.Errorf("unknown user %q", member.User)
		}
		entries = append(entries, models.Membership{
			UserID: userID,
			Role:   models.Role(member.Role),
		})
	}

	_, err := s.mutator.AddMembers(ctx, kind, resourceID, ownerID, entries)
	return err
}
