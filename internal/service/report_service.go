package service

import (
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ReportService builds user-facing reports on top of AnalyticsService.
// Every budget report checks ownership first.
type ReportService struct {
	budgetRepo      domain.BudgetRepository
	transactionRepo domain.TransactionRepository
	analytics       *AnalyticsService
}

// NewReportService creates a new ReportService
func NewReportService(budgetRepo domain.BudgetRepository, transactionRepo domain.TransactionRepository, analytics *AnalyticsService) *ReportService {
	return &ReportService{
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
		analytics:       analytics,
	}
}

func (s *ReportService) ownedBudget(userID, budgetID int32) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.IsOwnedBy(userID) {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, nil
}

// BudgetSummary reports a budget's spending against its limit
func (s *ReportService) BudgetSummary(userID, budgetID int32) (*domain.BudgetSummary, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.GetByBudget(budgetID)
	if err != nil {
		return nil, err
	}
	income, spent := totals(transactions)

	percentUsed := decimal.Zero
	if budget.Limit.IsPositive() {
		percentUsed = spent.Div(budget.Limit).Mul(hundred).Round(2)
	}

	return &domain.BudgetSummary{
		BudgetID:    budget.ID,
		BudgetName:  budget.Name,
		Category:    budget.Category,
		Limit:       budget.Limit,
		TotalSpent:  spent,
		TotalIncome: income,
		Balance:     income.Sub(spent),
		Remaining:   budget.Limit.Sub(spent),
		PercentUsed: percentUsed,
		Status:      domain.UsageStatusFor(percentUsed),
		StartDate:   budget.StartDate,
		EndDate:     budget.EndDate,
	}, nil
}

// SpendingByCategory is AnalyticsService.SpendingByCategory for one of userID's budgets
func (s *ReportService) SpendingByCategory(userID, budgetID int32, start, end time.Time) ([]*domain.CategorySpending, error) {
	if _, err := s.ownedBudget(userID, budgetID); err != nil {
		return nil, err
	}
	return s.analytics.SpendingByCategory(budgetID, start, end)
}

// ChartSpending groups a budget's expenses by category over its whole life
func (s *ReportService) ChartSpending(userID, budgetID int32) ([]*domain.CategorySpending, error) {
	if _, err := s.ownedBudget(userID, budgetID); err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.GetByBudget(budgetID)
	if err != nil {
		return nil, err
	}
	return groupByCategory(expensesOnly(transactions)), nil
}

// CategoryExpenseReport groups all of userID's expenses dated within
// [start, end] by category, with counts
func (s *ReportService) CategoryExpenseReport(userID int32, start, end time.Time) (*domain.CategoryExpenseReport, error) {
	from, to := domain.DateOnly(start), domain.DateOnly(end)
	if to.Before(from) {
		return nil, domain.ErrInvalidDateRange
	}

	expense := domain.TransactionTypeExpense
	// last instant of the end date
	until := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	transactions, err := s.transactionRepo.GetByUser(userID, &domain.TransactionFilters{
		Type:      &expense,
		StartDate: &from,
		EndDate:   &until,
	})
	if err != nil {
		return nil, err
	}

	categories := groupByCategory(transactions)
	total := decimal.Zero
	for _, c := range categories {
		total = total.Add(c.TotalAmount)
	}

	return &domain.CategoryExpenseReport{
		UserID:     userID,
		StartDate:  from,
		EndDate:    to,
		Total:      total,
		Categories: categories,
	}, nil
}

func expensesOnly(transactions []*domain.Transaction) []*domain.Transaction {
	result := make([]*domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.Type == domain.TransactionTypeExpense {
			result = append(result, tx)
		}
	}
	return result
}
