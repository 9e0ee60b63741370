package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a user-scoped spending envelope over a date range.
// A nil EndDate means the budget is open-ended.
type Budget struct {
	ID        int32           `json:"id"`
	UserID    int32           `json:"userId"`
	Name      string          `json:"name"`
	Limit     decimal.Decimal `json:"limit"`
	Category  string          `json:"category"`
	StartDate time.Time       `json:"startDate"`
	EndDate   *time.Time      `json:"endDate,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// IsOwnedBy reports whether the budget belongs to userID
func (b *Budget) IsOwnedBy(userID int32) bool {
	return b != nil && b.UserID == userID
}

// BudgetRangeFinder supplies the budgets an overlap check must consider.
// Implementations may return a superset; callers re-check each range.
type BudgetRangeFinder interface {
	GetAllByUser(userID int32) ([]*Budget, error)
}

// BudgetRepository defines the interface for budget persistence operations
type BudgetRepository interface {
	BudgetRangeFinder
	Create(budget *Budget) (*Budget, error)
	GetByID(id int32) (*Budget, error)
	Update(budget *Budget) (*Budget, error)
	Exists(id int32) (bool, error)
	// DeleteWithTransactions removes the budget's transactions and then the budget
	DeleteWithTransactions(id int32) error
}

// UserLocker serializes budget writes for a single user.
// The returned unlock func must be called on every exit path.
type UserLocker interface {
	Lock(userID int32) (unlock func(), err error)
}
