package websocket

import (
	"context"
	"errors"

	"github.com/budgetly/budgetly-backend/internal/domain"
)

// ErrInvalidToken is returned when token verification fails
var ErrInvalidToken = errors.New("invalid token")

// ErrUserNotFound is returned when the token's subject no longer exists
var ErrUserNotFound = errors.New("user not found")

// TokenVerifier resolves an access token to a user ID
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (int32, error)
}

// UserLookup confirms that a user still exists
type UserLookup interface {
	GetUserByID(id int32) (*domain.User, error)
}

// TokenValidator authenticates change-feed connections, which pass their
// token as a query parameter instead of a header
type TokenValidator struct {
	verifier TokenVerifier
	users    UserLookup
}

// NewTokenValidator creates a new TokenValidator
func NewTokenValidator(verifier TokenVerifier, users UserLookup) *TokenValidator {
	return &TokenValidator{verifier: verifier, users: users}
}

// ValidateToken verifies the token and returns the user it was issued to
func (v *TokenValidator) ValidateToken(ctx context.Context, token string) (int32, error) {
	userID, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return 0, ErrInvalidToken
	}

	if v.users != nil {
		if _, err := v.users.GetUserByID(userID); err != nil {
			return 0, ErrUserNotFound
		}
	}
	return userID, nil
}
