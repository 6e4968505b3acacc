package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskly/internal/auth"
	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/domain/repositories"
)

// defaultCategories are created for every new account.
var defaultCategories = []string{"Todas", "Pessoal", "Estudo", "Trabalho"}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate checks the register request fields.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&r.ConfirmPassword, validation.Required),
	)
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login request fields.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// UpdateProfileRequest is the payload for partial profile updates. A new
// password must come with a matching confirmation.
type UpdateProfileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirm_password"`
}

// UserService handles accounts: registration, login, profile reads and
// updates, and account deletion.
type UserService struct {
	userRepo        repositories.UserRepository
	categoryRepo    repositories.CategoryRepository
	subCategoryRepo repositories.SubCategoryRepository
	taskRepo        repositories.TaskRepository
	txManager       repositories.TransactionManager
	issuer          *auth.TokenIssuer
	logger          *slog.Logger
}

// NewUserService creates a new user service. issuer may be nil when token
// issuance is delegated to an external identity provider; Login then fails.
func NewUserService(
	userRepo repositories.UserRepository,
	categoryRepo repositories.CategoryRepository,
	subCategoryRepo repositories.SubCategoryRepository,
	taskRepo repositories.TaskRepository,
	txManager repositories.TransactionManager,
	issuer *auth.TokenIssuer,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:        userRepo,
		categoryRepo:    categoryRepo,
		subCategoryRepo: subCategoryRepo,
		taskRepo:        taskRepo,
		txManager:       txManager,
		issuer:          issuer,
		logger:          logger,
	}
}

// Register creates an account and its default category set in a single
// transaction. Email addresses are unique, case-insensitively.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	if req.Password != req.ConfirmPassword {
		return nil, &domain.ValidationError{Message: "passwords do not match"}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ConflictError{
			Message:      "an account with this email already exists",
			ResourceType: "user",
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}

		categories := make([]models.Category, 0, len(defaultCategories))
		for _, name := range defaultCategories {
			categories = append(categories, models.Category{
				ID:        uuid.New().String(),
				UserID:    user.ID,
				Name:      name,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		return s.categoryRepo.CreateBatch(ctx, categories)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)

	return user, nil
}

// Login verifies credentials and returns the user plus a signed token.
func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*models.User, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", &domain.ValidationError{Message: err.Error()}
	}

	if s.issuer == nil {
		return nil, "", &domain.UnauthorizedError{Message: "login is handled by the identity provider"}
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			// Same response as a bad password so the endpoint does not
			// reveal which emails are registered.
			return nil, "", &domain.UnauthorizedError{Message: "invalid credentials"}
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", &domain.UnauthorizedError{Message: "invalid credentials"}
	}

	token, err := s.issuer.IssueToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return user, token, nil
}

// Get returns a user's profile.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Update applies a partial update to the caller's profile. Changing the
// email re-checks uniqueness against other accounts.
func (s *UserService) Update(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, &domain.ValidationError{Message: "name cannot be empty"}
		}
		user.Name = *req.Name
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if err := validation.Validate(email, validation.Required, is.Email); err != nil {
			return nil, &domain.ValidationError{Message: "invalid email address"}
		}

		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, &domain.ConflictError{
				Message:      "an account with this email already exists",
				ResourceType: "user",
			}
		}
		user.Email = email
	}

	if req.Password != nil {
		if err := validation.Validate(*req.Password, validation.Required, validation.Length(6, 72)); err != nil {
			return nil, &domain.ValidationError{Message: "password must be between 6 and 72 characters"}
		}
		if req.ConfirmPassword == nil || *req.Password != *req.ConfirmPassword {
			return nil, &domain.ValidationError{Message: "passwords do not match"}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "user_id", userID)

	return user, nil
}

// Delete removes the caller's account together with their tasks,
// subcategories and categories, all in one transaction. Shared resources
// the user owns are out of scope here.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.taskRepo.DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		if err := s.subCategoryRepo.DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		if err := s.categoryRepo.DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		return s.userRepo.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted", "user_id", userID)

	return nil
}
