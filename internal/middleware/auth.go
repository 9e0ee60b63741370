package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey contextKey = "user_id"
)

// TokenVerifier verifies a bearer token and returns the user it was issued to
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (int32, error)
}

// AuthMiddleware provides bearer token validation middleware
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate returns an Echo middleware that validates bearer tokens and
// stores the token subject as the request's user ID
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorizedError(c, "missing authorization header")
			}

			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				return unauthorizedError(c, "invalid authorization header format")
			}

			userID, err := m.verifier.Verify(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "invalid token")
			}

			ctx := context.WithValue(c.Request().Context(), UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetUserID extracts the authenticated user ID from the context, or 0
func GetUserID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(UserIDKey).(int32); ok {
		return id
	}
	return 0
}
