package service

import (
	"sort"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// uncategorized labels transactions loaded without their category
const uncategorized = "Uncategorized"

// AnalyticsService computes exact-decimal aggregates over a budget's transactions
type AnalyticsService struct {
	transactionRepo domain.TransactionRepository
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(transactionRepo domain.TransactionRepository) *AnalyticsService {
	return &AnalyticsService{transactionRepo: transactionRepo}
}

// TotalSpent sums the budget's EXPENSE amounts
func (s *AnalyticsService) TotalSpent(budgetID int32) (decimal.Decimal, error) {
	return s.sumByType(budgetID, domain.TransactionTypeExpense)
}

// TotalIncome sums the budget's INCOME amounts
func (s *AnalyticsService) TotalIncome(budgetID int32) (decimal.Decimal, error) {
	return s.sumByType(budgetID, domain.TransactionTypeIncome)
}

// Balance is income minus spending
func (s *AnalyticsService) Balance(budgetID int32) (decimal.Decimal, error) {
	transactions, err := s.transactionRepo.GetByBudget(budgetID)
	if err != nil {
		return decimal.Zero, err
	}
	income, spent := totals(transactions)
	return income.Sub(spent), nil
}

// Remaining is the budget's limit minus its spending; negative when overspent
func (s *AnalyticsService) Remaining(budget *domain.Budget) (decimal.Decimal, error) {
	spent, err := s.TotalSpent(budget.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return budget.Limit.Sub(spent), nil
}

// SpendingByCategory groups the budget's transactions dated within
// [start, end] by category name, ordered by name
func (s *AnalyticsService) SpendingByCategory(budgetID int32, start, end time.Time) ([]*domain.CategorySpending, error) {
	from, to := domain.DateOnly(start), domain.DateOnly(end)
	if to.Before(from) {
		return nil, domain.ErrInvalidDateRange
	}

	transactions, err := s.transactionRepo.GetByBudget(budgetID)
	if err != nil {
		return nil, err
	}

	inWindow := make([]*domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		d := domain.DateOnly(tx.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		inWindow = append(inWindow, tx)
	}
	return groupByCategory(inWindow), nil
}

func (s *AnalyticsService) sumByType(budgetID int32, txType domain.TransactionType) (decimal.Decimal, error) {
	transactions, err := s.transactionRepo.GetByBudget(budgetID)
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, tx := range transactions {
		if tx.Type == txType {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum, nil
}

// totals returns (income, spent) in one pass
func totals(transactions []*domain.Transaction) (decimal.Decimal, decimal.Decimal) {
	income, spent := decimal.Zero, decimal.Zero
	for _, tx := range transactions {
		switch tx.Type {
		case domain.TransactionTypeIncome:
			income = income.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			spent = spent.Add(tx.Amount)
		}
	}
	return income, spent
}

func categoryName(tx *domain.Transaction) string {
	if tx.Category != nil && tx.Category.Name != "" {
		return tx.Category.Name
	}
	return uncategorized
}

func groupByCategory(transactions []*domain.Transaction) []*domain.CategorySpending {
	byName := make(map[string]*domain.CategorySpending)
	for _, tx := range transactions {
		name := categoryName(tx)
		entry, ok := byName[name]
		if !ok {
			entry = &domain.CategorySpending{Category: name, TotalAmount: decimal.Zero}
			byName[name] = entry
		}
		entry.TotalAmount = entry.TotalAmount.Add(tx.Amount)
		entry.TransactionCount++
	}

	result := make([]*domain.CategorySpending, 0, len(byName))
	for _, entry := range byName {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result
}
