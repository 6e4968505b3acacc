package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"taskly/internal/domain"
	"taskly/internal/domain/models"
	"taskly/internal/domain/repositories"
)

// memUserRepo is an in-memory UserRepository for service tests.
type memUserRepo struct {
	users map[string]*models.User
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

// memCategoryRepo records per-user deletions; the rest is unused here.
type memCategoryRepo struct {
	deletedFor []string
}

func (r *memCategoryRepo) Create(_ context.Context, _ *models.Category) error       { return nil }
func (r *memCategoryRepo) CreateBatch(_ context.Context, _ []models.Category) error { return nil }
func (r *memCategoryRepo) GetByID(_ context.Context, id string) (*models.Category, error) {
	return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
}
func (r *memCategoryRepo) GetByName(_ context.Context, _, name string) (*models.Category, error) {
	return nil, fmt.Errorf("category %s: %w", name, domain.ErrNotFound)
}
func (r *memCategoryRepo) List(_ context.Context, _ string) ([]models.Category, error) {
	return nil, nil
}
func (r *memCategoryRepo) Update(_ context.Context, _ *models.Category) error { return nil }
func (r *memCategoryRepo) Delete(_ context.Context, _ string) error           { return nil }
func (r *memCategoryRepo) DeleteAllForUser(_ context.Context, userID string) error {
	r.deletedFor = append(r.deletedFor, userID)
	return nil
}

type memSubCategoryRepo struct {
	deletedFor []string
}

func (r *memSubCategoryRepo) Create(_ context.Context, _ *models.SubCategory) error { return nil }
func (r *memSubCategoryRepo) GetByID(_ context.Context, id string) (*models.SubCategory, error) {
	return nil, fmt.Errorf("subcategory %s: %w", id, domain.ErrNotFound)
}
func (r *memSubCategoryRepo) GetByName(_ context.Context, _, name string) (*models.SubCategory, error) {
	return nil, fmt.Errorf("subcategory %s: %w", name, domain.ErrNotFound)
}
func (r *memSubCategoryRepo) List(_ context.Context, _ string) ([]models.SubCategory, error) {
	return nil, nil
}
func (r *memSubCategoryRepo) ListByCategory(_ context.Context, _, _ string) ([]models.SubCategory, error) {
	return nil, nil
}
func (r *memSubCategoryRepo) Update(_ context.Context, _ *models.SubCategory) error { return nil }
func (r *memSubCategoryRepo) Delete(_ context.Context, _ string) error              { return nil }
func (r *memSubCategoryRepo) DeleteAllForUser(_ context.Context, userID string) error {
	r.deletedFor = append(r.deletedFor, userID)
	return nil
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func newTestUserService(userRepo repositories.UserRepository, categoryRepo repositories.CategoryRepository, subCategoryRepo repositories.SubCategoryRepository, taskRepo repositories.TaskRepository) *UserService {
	return NewUserService(userRepo, categoryRepo, subCategoryRepo, taskRepo, passthroughTx{}, nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func TestUserUpdateProfile(t *testing.T) {
	repo := newMemUserRepo(
		&models.User{ID: "u1", Name: "Alice", Email: "alice@example.com", PasswordHash: hashOf(t, "secret1")},
		&models.User{ID: "u2", Name: "Bruno", Email: "bruno@example.com"},
	)
	svc := newTestUserService(repo, &memCategoryRepo{}, &memSubCategoryRepo{}, newMemTaskRepo())

	name := "Alice Silva"
	updated, err := svc.Update(context.Background(), "u1", &UpdateProfileRequest{Name: &name})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Alice Silva" {
		t.Errorf("Name = %q, want Alice Silva", updated.Name)
	}

	// Changing the email normalizes it.
	email := "  Alice.Silva@Example.com "
	updated, err = svc.Update(context.Background(), "u1", &UpdateProfileRequest{Email: &email})
	if err != nil {
		t.Fatalf("Update() email error = %v", err)
	}
	if updated.Email != strings.ToLower(strings.TrimSpace(email)) {
		t.Errorf("Email = %q, not normalized", updated.Email)
	}

	// A new password replaces the stored hash.
	password := "newsecret"
	_, err = svc.Update(context.Background(), "u1", &UpdateProfileRequest{
		Password:        &password,
		ConfirmPassword: &password,
	})
	if err != nil {
		t.Fatalf("Update() password error = %v", err)
	}
	stored := repo.users["u1"].PasswordHash
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte("newsecret")) != nil {
		t.Error("stored hash does not match the new password")
	}
}

func TestUserUpdateProfileEmailConflict(t *testing.T) {
	repo := newMemUserRepo(
		&models.User{ID: "u1", Name: "Alice", Email: "alice@example.com"},
		&models.User{ID: "u2", Name: "Bruno", Email: "bruno@example.com"},
	)
	svc := newTestUserService(repo, &memCategoryRepo{}, &memSubCategoryRepo{}, newMemTaskRepo())

	taken := "bruno@example.com"
	if _, err := svc.Update(context.Background(), "u1", &UpdateProfileRequest{Email: &taken}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict taking another account's email, got %v", err)
	}

	// Keeping your own email is not a conflict.
	own := "alice@example.com"
	if _, err := svc.Update(context.Background(), "u1", &UpdateProfileRequest{Email: &own}); err != nil {
		t.Errorf("resubmitting own email failed: %v", err)
	}
}

func TestUserUpdateProfilePasswordMismatch(t *testing.T) {
	repo := newMemUserRepo(&models.User{ID: "u1", Email: "alice@example.com"})
	svc := newTestUserService(repo, &memCategoryRepo{}, &memSubCategoryRepo{}, newMemTaskRepo())

	password := "newsecret"
	other := "different"
	_, err := svc.Update(context.Background(), "u1", &UpdateProfileRequest{
		Password:        &password,
		ConfirmPassword: &other,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error on mismatched passwords, got %v", err)
	}

	_, err = svc.Update(context.Background(), "u1", &UpdateProfileRequest{Password: &password})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error without confirmation, got %v", err)
	}
}

func TestUserDeleteRemovesOwnedData(t *testing.T) {
	userRepo := newMemUserRepo(&models.User{ID: "u1", Email: "alice@example.com"})
	categoryRepo := &memCategoryRepo{}
	subCategoryRepo := &memSubCategoryRepo{}
	taskRepo := newMemTaskRepo(
		&models.Task{ID: "t1", UserID: "u1"},
		&models.Task{ID: "t2", UserID: "u2"},
	)
	svc := newTestUserService(userRepo, categoryRepo, subCategoryRepo, taskRepo)

	if err := svc.Delete(context.Background(), "u1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, ok := userRepo.users["u1"]; ok {
		t.Error("user still present after delete")
	}
	if _, ok := taskRepo.tasks["t1"]; ok {
		t.Error("owned task still present after delete")
	}
	if _, ok := taskRepo.tasks["t2"]; !ok {
		t.Error("another user's task was deleted")
	}
	if len(categoryRepo.deletedFor) != 1 || categoryRepo.deletedFor[0] != "u1" {
		t.Errorf("category cleanup ran for %v, want [u1]", categoryRepo.deletedFor)
	}
	if len(subCategoryRepo.deletedFor) != 1 || subCategoryRepo.deletedFor[0] != "u1" {
		t.Errorf("subcategory cleanup ran for %v, want [u1]", subCategoryRepo.deletedFor)
	}
}

func TestUserDeleteMissing(t *testing.T) {
	svc := newTestUserService(newMemUserRepo(), &memCategoryRepo{}, &memSubCategoryRepo{}, newMemTaskRepo())

	if err := svc.Delete(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found deleting a missing user, got %v", err)
	}
}
