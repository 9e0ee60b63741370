package handler

import (
	"net/http"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/middleware"
	"github.com/budgetly/budgetly-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the access token issued on login
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresAt string       `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// Register godoc
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} UserResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		return handleServiceError(c, err, 0, "Failed to register user")
	}

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login godoc
// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ProblemDetails
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return handleServiceError(c, err, 0, "Failed to log in")
	}

	log.Info().Int32("user_id", result.User.ID).Msg("User logged in")

	return c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toUserResponse(result.User),
	})
}

// Me returns the current authenticated user
// GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get user")
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}
