package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetUsageStatus classifies how much of a budget's limit has been spent
type BudgetUsageStatus string

const (
	BudgetStatusOnTrack  BudgetUsageStatus = "on_track"
	BudgetStatusWarning  BudgetUsageStatus = "warning"
	BudgetStatusExceeded BudgetUsageStatus = "exceeded"
)

// BudgetWarningThreshold is the usage percentage at which a budget enters warning
var BudgetWarningThreshold = decimal.NewFromInt(80)

// UsageStatusFor maps a usage percentage to a status
func UsageStatusFor(percentUsed decimal.Decimal) BudgetUsageStatus {
	switch {
	case percentUsed.GreaterThan(decimal.NewFromInt(100)):
		return BudgetStatusExceeded
	case percentUsed.GreaterThanOrEqual(BudgetWarningThreshold):
		return BudgetStatusWarning
	default:
		return BudgetStatusOnTrack
	}
}

// BudgetSummary aggregates a budget's transactions against its limit
type BudgetSummary struct {
	BudgetID    int32             `json:"budgetId"`
	BudgetName  string            `json:"budgetName"`
	Category    string            `json:"category"`
	Limit       decimal.Decimal   `json:"limit"`
	TotalSpent  decimal.Decimal   `json:"totalSpent"`
	TotalIncome decimal.Decimal   `json:"totalIncome"`
	Balance     decimal.Decimal   `json:"balance"`
	Remaining   decimal.Decimal   `json:"remaining"`
	PercentUsed decimal.Decimal   `json:"percentUsed"`
	Status      BudgetUsageStatus `json:"status"`
	StartDate   time.Time         `json:"startDate"`
	EndDate     *time.Time        `json:"endDate,omitempty"`
}

// CategorySpending is the summed amount of transactions under one category name
type CategorySpending struct {
	Category         string          `json:"category"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TransactionCount int64           `json:"transactionCount"`
}

// CategoryExpenseReport groups a user's expenses by category over a window
type CategoryExpenseReport struct {
	UserID     int32               `json:"userId"`
	StartDate  time.Time           `json:"startDate"`
	EndDate    time.Time           `json:"endDate"`
	Total      decimal.Decimal     `json:"total"`
	Categories []*CategorySpending `json:"categories"`
}
