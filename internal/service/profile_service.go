package service

import (
	"errors"
	"strings"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// ProfileService handles profile-related business logic
type ProfileService struct {
	userRepo domain.UserRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo domain.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(userID int32) (*domain.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile replaces a user's name and email
func (s *ProfileService) UpdateProfile(userID int32, name, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := validateProfile(name, email); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if email != user.Email {
		existing, err := s.userRepo.GetByEmail(email)
		if err == nil && existing.ID != userID {
			return nil, domain.ErrEmailAlreadyExists
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	updated := *user
	updated.Name = name
	updated.Email = email
	return s.userRepo.Update(&updated)
}

// ChangePassword replaces the password after checking the current one
func (s *ProfileService) ChangePassword(userID int32, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return domain.NewFieldError("currentPassword", "current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(userID, hash)
}

// DeleteAccount removes the user and everything they own once password
// matches the stored hash
func (s *ProfileService) DeleteAccount(userID int32, password string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.NewFieldError("password", "password is incorrect")
	}
	return s.userRepo.Delete(userID)
}
