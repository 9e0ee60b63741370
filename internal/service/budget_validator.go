package service

import (
	"strings"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// BudgetOverlapValidator rejects budgets whose date range collides with
// another budget of the same user
type BudgetOverlapValidator struct {
	finder domain.BudgetRangeFinder
}

// NewBudgetOverlapValidator creates a new BudgetOverlapValidator
func NewBudgetOverlapValidator(finder domain.BudgetRangeFinder) *BudgetOverlapValidator {
	return &BudgetOverlapValidator{finder: finder}
}

// ValidateNoOverlap scans the owner's budgets and returns a *domain.BudgetOverlapError
// for the first one that overlaps the candidate. The candidate's own stored
// record (same non-zero ID) is skipped.
func (v *BudgetOverlapValidator) ValidateNoOverlap(candidate *domain.Budget) error {
	existing, err := v.finder.GetAllByUser(candidate.UserID)
	if err != nil {
		return err
	}

	for _, budget := range existing {
		if candidate.ID != 0 && budget.ID == candidate.ID {
			continue
		}
		if domain.Overlaps(candidate.StartDate, candidate.EndDate, budget.StartDate, budget.EndDate) {
			return &domain.BudgetOverlapError{
				ConflictingID:   budget.ID,
				ConflictingName: budget.Name,
				StartDate:       budget.StartDate,
				EndDate:         budget.EndDate,
			}
		}
	}
	return nil
}

// BudgetValidator is the acceptance gate for budget creates and updates
type BudgetValidator struct {
	overlap *BudgetOverlapValidator
}

// NewBudgetValidator creates a new BudgetValidator
func NewBudgetValidator(overlap *BudgetOverlapValidator) *BudgetValidator {
	return &BudgetValidator{overlap: overlap}
}

// Validate checks, in order and failing fast: name, owner, date range,
// limit, category label, and finally overlap with the owner's other budgets.
func (v *BudgetValidator) Validate(budget *domain.Budget) error {
	if strings.TrimSpace(budget.Name) == "" {
		return domain.NewFieldError("name", "budget name cannot be empty")
	}
	if len(budget.Name) > domain.MaxNameLength {
		return domain.NewFieldError("name", "budget name exceeds maximum length")
	}
	if budget.UserID == 0 {
		return domain.NewFieldError("user", "budget must belong to a user")
	}
	if err := domain.ValidateDateRange(budget.StartDate, budget.EndDate); err != nil {
		return err
	}
	if !budget.Limit.GreaterThan(decimal.Zero) {
		return domain.NewFieldError("limit", "budget limit must be greater than zero, got: "+budget.Limit.String())
	}
	if err := domain.ValidateMoneyPrecision("limit", budget.Limit); err != nil {
		return err
	}
	if strings.TrimSpace(budget.Category) == "" {
		return domain.NewFieldError("category", "category cannot be empty")
	}
	return v.overlap.ValidateNoOverlap(budget)
}
