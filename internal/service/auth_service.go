package service

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs access tokens for a user
type TokenIssuer interface {
	Issue(userID int32) (string, time.Time, error)
}

// AuthService handles registration and login
type AuthService struct {
	userRepo domain.UserRepository
	tokens   TokenIssuer
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// AuthResult is a logged-in user with a fresh access token
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a user with a bcrypt-hashed password
func (s *AuthService) Register(name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if err := validateProfile(name, email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Create(&domain.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to create user")
		return nil, err
	}

	log.Info().Int32("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords fail identically.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Debug().Int32("user_id", user.ID).Msg("Password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(id int32) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// HashPassword bcrypt-hashes a plaintext password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateProfile(name, email string) error {
	if name == "" {
		return domain.NewFieldError("name", "name cannot be empty")
	}
	if len(name) > domain.MaxNameLength {
		return domain.NewFieldError("name", "name exceeds maximum length")
	}
	if email == "" {
		return domain.NewFieldError("email", "email cannot be empty")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return domain.NewFieldError("email", "email is not a valid address")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < domain.MinPasswordLength {
		return domain.NewFieldError("password", "password must be at least 8 characters")
	}
	// bcrypt ignores bytes past 72
	if len(password) > 72 {
		return domain.NewFieldError("password", "password must be at most 72 bytes")
	}
	return nil
}
