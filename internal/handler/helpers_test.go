package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/middleware"
	"github.com/budgetly/budgetly-backend/internal/service"
	"github.com/budgetly/budgetly-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Helper to set up an authenticated request context
func setupUserContext(c echo.Context, userID int32) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// newRequest builds an echo context for a JSON request. Path parameters are
// given as name/value pairs.
func newRequest(e *echo.Echo, method, path, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

type stubTokenIssuer struct{}

func (stubTokenIssuer) Issue(userID int32) (string, time.Time, error) {
	return "signed-token", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

// apiFixture wires real services over in-memory repositories.
// User 1 owns budget 10; user 2 owns budget 20.
// Category 1 "Groceries" is a default, 2 "Coffee" is custom to user 1,
// 3 "Hobbies" is custom to user 2.
type apiFixture struct {
	users        *testutil.MockUserRepository
	budgets      *testutil.MockBudgetRepository
	categories   *testutil.MockCategoryRepository
	transactions *testutil.MockTransactionRepository

	authService        *service.AuthService
	budgetService      *service.BudgetService
	categoryService    *service.CategoryService
	transactionService *service.TransactionService
	analyticsService   *service.AnalyticsService
	reportService      *service.ReportService
}

func newAPIFixture() *apiFixture {
	f := &apiFixture{
		users:        testutil.NewMockUserRepository(),
		budgets:      testutil.NewMockBudgetRepository(),
		categories:   testutil.NewMockCategoryRepository(),
		transactions: testutil.NewMockTransactionRepository(),
	}
	f.budgets.Transactions = f.transactions
	f.categories.Transactions = f.transactions

	f.categories.AddCategory(&domain.Category{ID: 1, Name: "Groceries", Owner: domain.DefaultOwner()})
	f.categories.AddCategory(&domain.Category{ID: 2, Name: "Coffee", Owner: domain.CustomOwner(1)})
	f.categories.AddCategory(&domain.Category{ID: 3, Name: "Hobbies", Owner: domain.CustomOwner(2)})

	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	f.budgets.AddBudget(&domain.Budget{
		ID: 10, UserID: 1, Name: "January", Category: "Food",
		Limit:     decimal.NewFromInt(500),
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   &end,
	})
	f.budgets.AddBudget(&domain.Budget{
		ID: 20, UserID: 2, Name: "Theirs", Category: "Fun",
		Limit:     decimal.NewFromInt(100),
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	f.authService = service.NewAuthService(f.users, stubTokenIssuer{})
	f.budgetService = service.NewBudgetService(f.budgets, service.NewMemoryUserLocker())
	f.categoryService = service.NewCategoryService(f.categories)
	f.transactionService = service.NewTransactionService(f.transactions, f.budgets, f.categoryService)
	f.analyticsService = service.NewAnalyticsService(f.transactions)
	f.reportService = service.NewReportService(f.budgets, f.transactions, f.analyticsService)
	return f
}

func (f *apiFixture) budgetHandler() *BudgetHandler {
	return NewBudgetHandler(f.budgetService, f.analyticsService, f.reportService, f.transactionService)
}

// addTransaction stores a transaction directly in the mock, bypassing the service
func (f *apiFixture) addTransaction(id int32, userID int32, budgetID int32, categoryID int32, txType domain.TransactionType, amount string, date time.Time) {
	category := f.categories.Categories[categoryID]
	f.transactions.AddTransaction(&domain.Transaction{
		ID:         id,
		UserID:     userID,
		BudgetID:   &budgetID,
		CategoryID: categoryID,
		Category:   category,
		Amount:     decimal.RequireFromString(amount),
		Type:       txType,
		Date:       date,
	})
}
