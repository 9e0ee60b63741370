package service

import (
	"errors"
	"testing"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

func addUserWithPassword(t *testing.T, repo *testutil.MockUserRepository, id int32, email, password string) {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	repo.AddUser(&domain.User{ID: id, Name: "User", Email: email, PasswordHash: hash})
}

func TestGetProfile(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: 1, Name: "Ada", Email: "ada@example.com"})
	profileService := NewProfileService(userRepo)

	user, err := profileService.GetProfile(1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.Name != "Ada" {
		t.Errorf("Expected name 'Ada', got %s", user.Name)
	}

	if _, err := profileService.GetProfile(2); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	userRepo.AddUser(&domain.User{ID: 1, Name: "Ada", Email: "ada@example.com"})
	userRepo.AddUser(&domain.User{ID: 2, Name: "Grace", Email: "grace@example.com"})
	profileService := NewProfileService(userRepo)

	updated, err := profileService.UpdateProfile(1, "Ada Lovelace", "Lovelace@Example.com")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.Name != "Ada Lovelace" || updated.Email != "lovelace@example.com" {
		t.Errorf("Unexpected profile %+v", updated)
	}

	_, err = profileService.UpdateProfile(1, "Ada", "grace@example.com")
	if !errors.Is(err, domain.ErrEmailAlreadyExists) {
		t.Errorf("Expected ErrEmailAlreadyExists, got %v", err)
	}

	_, err = profileService.UpdateProfile(1, "", "ada@example.com")
	var fieldErr *domain.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "name" {
		t.Errorf("Expected name FieldError, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	addUserWithPassword(t, userRepo, 1, "ada@example.com", "old-password")
	profileService := NewProfileService(userRepo)

	err := profileService.ChangePassword(1, "wrong-password", "new-password")
	if !errors.Is(err, domain.ErrInvalidField) {
		t.Errorf("Expected ErrInvalidField for wrong current password, got %v", err)
	}

	err = profileService.ChangePassword(1, "old-password", "short")
	if !errors.Is(err, domain.ErrInvalidField) {
		t.Errorf("Expected ErrInvalidField for short password, got %v", err)
	}

	if err := profileService.ChangePassword(1, "old-password", "new-password"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(userRepo.Users[1].PasswordHash), []byte("new-password")); err != nil {
		t.Errorf("Expected stored hash to match the new password, got %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	addUserWithPassword(t, userRepo, 1, "ada@example.com", "password1")
	profileService := NewProfileService(userRepo)

	err := profileService.DeleteAccount(1, "wrong-password")
	var fieldErr *domain.FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "password" {
		t.Fatalf("Expected password FieldError, got %v", err)
	}
	if _, err := userRepo.GetByID(1); err != nil {
		t.Fatalf("Expected user to remain after a wrong password, got %v", err)
	}

	if err := profileService.DeleteAccount(1, "password1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := userRepo.GetByID(1); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound after delete, got %v", err)
	}
	if _, ok := userRepo.ByEmail["ada@example.com"]; ok {
		t.Error("Expected email index entry to be removed")
	}

	if err := profileService.DeleteAccount(1, "password1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected not found for a deleted user, got %v", err)
	}
}
