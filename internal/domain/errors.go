package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Every entity-specific error below wraps exactly one of these,
// so callers can branch with errors.Is(err, domain.ErrNotFound) etc.
var (
	ErrInvalidField     = errors.New("invalid field")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrBudgetOverlap    = errors.New("budget overlaps an existing budget")
	ErrNotFound         = errors.New("resource not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrConflict         = errors.New("resource already exists")
	ErrUnauthorized     = errors.New("unauthorized")
)

// Domain errors
var (
	ErrUserNotFound            = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrEmailAlreadyExists      = fmt.Errorf("email already in use: %w", ErrConflict)
	ErrInvalidCredentials      = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	ErrBudgetNotFound          = fmt.Errorf("budget not found: %w", ErrNotFound)
	ErrCategoryNotFound        = fmt.Errorf("category not found: %w", ErrNotFound)
	ErrCategoryAccessDenied    = fmt.Errorf("cannot use this category: %w", ErrAccessDenied)
	ErrCategoryAlreadyExists   = fmt.Errorf("category with this name already exists: %w", ErrConflict)
	ErrCategoryInUse           = fmt.Errorf("category is referenced by transactions: %w", ErrConflict)
	ErrTransactionNotFound     = fmt.Errorf("transaction not found: %w", ErrNotFound)
	ErrTransactionAccessDenied = fmt.Errorf("transaction does not belong to user: %w", ErrAccessDenied)
)

// Validation constants
const (
	MaxNameLength        = 255
	MaxCategoryNameLen   = 100
	MaxDescriptionLength = 500
	MinPasswordLength    = 8
)

// FieldError reports a single missing, empty or out-of-range field
type FieldError struct {
	Field   string
	Message string
}

// NewFieldError creates a FieldError for the given field
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidField
func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

// BudgetOverlapError identifies the existing budget a candidate collides with
type BudgetOverlapError struct {
	ConflictingID   int32
	ConflictingName string
	StartDate       time.Time
	EndDate         *time.Time
}

func (e *BudgetOverlapError) Error() string {
	end := "open-ended"
	if e.EndDate != nil {
		end = e.EndDate.Format(DateLayout)
	}
	return fmt.Sprintf("budget overlaps with existing budget '%s' (ID: %d) between %s and %s",
		e.ConflictingName, e.ConflictingID, e.StartDate.Format(DateLayout), end)
}

// Unwrap lets errors.Is match ErrBudgetOverlap
func (e *BudgetOverlapError) Unwrap() error {
	return ErrBudgetOverlap
}
