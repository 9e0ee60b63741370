package handler

import (
	"net/http"

	"github.com/budgetly/budgetly-backend/internal/middleware"
	"github.com/budgetly/budgetly-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UpdateProfileRequest represents the update profile request
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChangePasswordRequest represents the change password request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// DeleteAccountRequest confirms account deletion with the current password
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.profileService.GetProfile(userID)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get profile")
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PUT /profile
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.profileService.UpdateProfile(userID, req.Name, req.Email)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to update profile")
	}

	log.Info().Int32("user_id", userID).Msg("Profile updated")

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ChangePassword handles PUT /profile/password
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if err := h.profileService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		return handleServiceError(c, err, userID, "Failed to change password")
	}

	log.Info().Int32("user_id", userID).Msg("Password changed")

	return c.NoContent(http.StatusNoContent)
}

// DeleteAccount handles DELETE /profile
func (h *ProfileHandler) DeleteAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req DeleteAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if err := h.profileService.DeleteAccount(userID, req.Password); err != nil {
		return handleServiceError(c, err, userID, "Failed to delete account")
	}

	log.Info().Int32("user_id", userID).Msg("Account deleted")

	return c.NoContent(http.StatusNoContent)
}
