package handler

import (
	"errors"
	"net/http"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://budgetly.app/errors/validation"
	ErrorTypeNotFound     = "https://budgetly.app/errors/not-found"
	ErrorTypeUnauthorized = "https://budgetly.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://budgetly.app/errors/forbidden"
	ErrorTypeConflict     = "https://budgetly.app/errors/conflict"
	ErrorTypeInternal     = "https://budgetly.app/errors/internal"
	ErrorTypeOverlap      = "https://budgetly.app/errors/budget-overlap"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return c.JSON(http.StatusForbidden, ProblemDetails{
		Type:     ErrorTypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewBudgetOverlapError creates a validation response naming the budget a
// candidate collides with
func NewBudgetOverlapError(c echo.Context, overlap *domain.BudgetOverlapError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeOverlap,
		Title:    "Budget Overlap",
		Status:   http.StatusBadRequest,
		Detail:   overlap.Error(),
		Instance: c.Request().URL.Path,
		Errors: []ValidationError{
			{Field: "startDate", Message: "Date range overlaps an existing budget"},
		},
	})
}

// handleServiceError maps a service error to its problem response. Unknown
// errors are logged and reported as internal errors with fallback as detail.
func handleServiceError(c echo.Context, err error, userID int32, fallback string) error {
	var fieldErr *domain.FieldError
	var overlapErr *domain.BudgetOverlapError

	switch {
	case errors.As(err, &fieldErr):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: fieldErr.Field, Message: fieldErr.Message},
		})
	case errors.As(err, &overlapErr):
		return NewBudgetOverlapError(c, overlapErr)
	case errors.Is(err, domain.ErrInvalidDateRange):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidField):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrBudgetNotFound):
		return NewNotFoundError(c, "Budget not found")
	case errors.Is(err, domain.ErrTransactionNotFound):
		return NewNotFoundError(c, "Transaction not found")
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewNotFoundError(c, "Category not found")
	case errors.Is(err, domain.ErrUserNotFound):
		return NewNotFoundError(c, "User not found")
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, "Resource not found")
	case errors.Is(err, domain.ErrCategoryAccessDenied):
		return NewForbiddenError(c, "Category belongs to another user")
	case errors.Is(err, domain.ErrTransactionAccessDenied):
		return NewForbiddenError(c, "Transaction does not belong to the authenticated user")
	case errors.Is(err, domain.ErrAccessDenied):
		return NewForbiddenError(c, "Access denied")
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return NewConflictError(c, "Email is already registered")
	case errors.Is(err, domain.ErrCategoryAlreadyExists):
		return NewConflictError(c, "A category with this name already exists")
	case errors.Is(err, domain.ErrCategoryInUse):
		return NewConflictError(c, "Category is used by existing transactions")
	case errors.Is(err, domain.ErrConflict):
		return NewConflictError(c, "Resource already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorizedError(c, "Invalid email or password")
	default:
		log.Error().Err(err).Int32("user_id", userID).Str("path", c.Request().URL.Path).Msg(fallback)
		return NewInternalError(c, fallback)
	}
}
