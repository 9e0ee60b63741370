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

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        int32  `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
	UserID    *int32 `json:"userId"`
	CreatedAt string `json:"createdAt"`
}

func toCategoryResponse(category *domain.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		IsDefault: category.IsDefault(),
		CreatedAt: category.CreatedAt.Format(time.RFC3339),
	}
	if owner, ok := category.Owner.UserID(); ok {
		resp.UserID = &owner
	}
	return resp
}

// CreateCategory godoc
// @Summary Create a custom category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "Category"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.CreateCustom(userID, req.Name)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to create category")
	}

	log.Info().Int32("user_id", userID).Int32("category_id", category.ID).Msg("Category created")

	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// GetCategories godoc
// @Summary List usable categories
// @Description Default categories plus the user's custom ones, ordered by name
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CategoryResponse
// @Router /categories [get]
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	categories, err := h.categoryService.ListAvailable(userID)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get categories")
	}

	response := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		response[i] = toCategoryResponse(category)
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteCategory godoc
// @Summary Delete a custom category
// @Tags categories
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 204
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, verr := parseIDParam(c, "id")
	if verr != nil {
		return invalidParam(c, verr)
	}

	if err := h.categoryService.DeleteCustom(userID, id); err != nil {
		return handleServiceError(c, err, userID, "Failed to delete category")
	}

	log.Info().Int32("user_id", userID).Int32("category_id", id).Msg("Category deleted")

	return c.NoContent(http.StatusNoContent)
}
