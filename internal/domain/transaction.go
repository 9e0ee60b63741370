package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a single income or expense event. Budget and Category
// are populated with the resolved references when loaded or written.
type Transaction struct {
	ID          int32           `json:"id"`
	UserID      int32           `json:"userId"`
	BudgetID    *int32          `json:"budgetId,omitempty"`
	Budget      *Budget         `json:"-"`
	CategoryID  int32           `json:"categoryId"`
	Category    *Category       `json:"category,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
	Type        TransactionType `json:"type"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsOwnedBy reports whether the transaction belongs to userID
func (t *Transaction) IsOwnedBy(userID int32) bool {
	return t != nil && t.UserID == userID
}

// TransactionFilters narrows a user's transaction listing
type TransactionFilters struct {
	BudgetID   *int32
	CategoryID *int32
	Type       *TransactionType
	StartDate  *time.Time
	EndDate    *time.Time
}

// TransactionRepository defines the interface for transaction persistence operations
type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(id int32) (*Transaction, error)
	GetByUser(userID int32, filters *TransactionFilters) ([]*Transaction, error)
	GetByBudget(budgetID int32) ([]*Transaction, error)
	Update(transaction *Transaction) (*Transaction, error)
	Delete(id int32) error
}
