package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBudget_Success(t *testing.T) {
	f := newAPIFixture()
	h := f.budgetHandler()

	body := `{"name": " February ", "limit": "450.5", "category": "Food", "startDate": "2025-02-01", "endDate": "2025-02-28"}`
	c, rec := newRequest(echo.New(), http.MethodPost, "/api/v1/budgets", body)
	setupUserContext(c, 1)

	require.NoError(t, h.CreateBudget(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var response BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "February", response.Name)
	assert.Equal(t, "450.50", response.Limit)
	assert.Equal(t, int32(1), response.UserID)
	assert.Equal(t, "2025-02-01", response.StartDate)
	require.NotNil(t, response.EndDate)
	assert.Equal(t, "2025-02-28", *response.EndDate)
}

func TestCreateBudget_Overlap(t *testing.T) {
	f := newAPIFixture()
	h := f.budgetHandler()

	body := `{"name": "Groceries2", "limit": "100", "category": "Food", "startDate": "2025-01-15"}`
	c, rec := newRequest(echo.New(), http.MethodPost, "/api/v1/budgets", body)
	setupUserContext(c, 1)

	require.NoError(t, h.CreateBudget(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, ErrorTypeOverlap, problem.Type)
	assert.Contains(t, problem.Detail, "January")
}

func TestCreateBudget_OtherUsersBudgetsDoNotOverlap(t *testing.T) {
	f := newAPIFixture()
	h := f.budgetHandler()

	// user 2's open-ended budget covers this range, user 1's does not
	body := `{"name": "Spring", "limit": "100", "category": "Fun", "startDate": "2025-03-01", "endDate": "2025-05-31"}`
	c, rec := newRequest(echo.New(), http.MethodPost, "/api/v1/budgets", body)
	setupUserContext(c, 1)

	require.NoError(t, h.CreateBudget(c))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateBudget_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad limit", `{"name": "B", "limit": "abc", "category": "Food", "startDate": "2025-03-01"}`, "limit"},
		{"bad date", `{"name": "B", "limit": "10", "category": "Food", "startDate": "03/01/2025"}`, "startDate"},
		{"empty name", `{"name": "  ", "limit": "10", "category": "Food", "startDate": "2025-03-01"}`, "name"},
		{"zero limit", `{"name": "B", "limit": "0", "category": "Food", "startDate": "2025-03-01"}`, "limit"},
		{"sub-cent limit", `{"name": "B", "limit": "0.004", "category": "Food", "startDate": "2025-03-01"}`, "limit"},
		{"empty category", `{"name": "B", "limit": "10", "category": "", "startDate": "2025-03-01"}`, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture()
			c, rec := newRequest(echo.New(), http.MethodPost, "/api/v1/budgets", tt.body)
			setupUserContext(c, 1)

			require.NoError(t, f.budgetHandler().CreateBudget(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var problem ProblemDetails
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
		})
	}
}

func TestCreateBudget_SameStartAndEnd(t *testing.T) {
	f := newAPIFixture()
	body := `{"name": "B", "limit": "10", "category": "Food", "startDate": "2025-03-01", "endDate": "2025-03-01"}`
	c, rec := newRequest(echo.New(), http.MethodPost, "/api/v1/budgets", body)
	setupUserContext(c, 1)

	require.NoError(t, f.budgetHandler().CreateBudget(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot be the same")
}

func TestCreateBudget_Unauthenticated(t *testing.T) {
	f := newAPIFixture()
	c, rec := newRequest(echo.New(), http.MethodPost, "/api/v1/budgets", `{}`)

	require.NoError(t, f.budgetHandler().CreateBudget(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetBudget_OtherUserIsNotFound(t *testing.T) {
	f := newAPIFixture()
	c, rec := newRequest(echo.New(), http.MethodGet, "/api/v1/budgets/20", "", "id", "20")
	setupUserContext(c, 1)

	require.NoError(t, f.budgetHandler().GetBudget(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBudget_InvalidID(t *testing.T) {
	f := newAPIFixture()
	c, rec := newRequest(echo.New(), http.MethodGet, "/api/v1/budgets/abc", "", "id", "abc")
	setupUserContext(c, 1)

	require.NoError(t, f.budgetHandler().GetBudget(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBudgets_OnlyOwn(t *testing.T) {
	f := newAPIFixture()
	c, rec := newRequest(echo.New(), http.MethodGet, "/api/v1/budgets", "")
	setupUserContext(c, 1)

	require.NoError(t, f.budgetHandler().GetBudgets(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response []BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, int32(10), response[0].ID)
}

func TestUpdateBudget_ExcludesItself(t *testing.T) {
	f := newAPIFixture()
	body := `{"name": "January (revised)", "limit": "600", "category": "Food", "startDate": "2025-01-01", "endDate": "2025-01-30"}`
	c, rec := newRequest(echo.New(), http.MethodPut, "/api/v1/budgets/10", body, "id", "10")
	setupUserContext(c, 1)

	require.NoError(t, f.budgetHandler().UpdateBudget(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "600.00", response.Limit)
	assert.Equal(t, "2025-01-30", *response.EndDate)
}

func TestBudgetAggregates(t *testing.T) {
	f := newAPIFixture()
	f.addTransaction(1, 1, 10, 1, domain.TransactionTypeExpense, "50", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	f.addTransaction(2, 1, 10, 1, domain.TransactionTypeExpense, "20", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))
	f.addTransaction(3, 1, 10, 2, domain.TransactionTypeIncome, "100", time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC))
	h := f.budgetHandler()

	tests := []struct {
		name   string
		call   func(echo.Context) error
		amount string
	}{
		{"spent", h.GetSpent, "70.00"},
		{"earned", h.GetEarned, "100.00"},
		{"balance", h.GetBalance, "30.00"},
		{"remaining", h.GetRemaining, "430.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newRequest(echo.New(), http.MethodGet, "/api/v1/budgets/10/"+tt.name, "", "id", "10")
			setupUserContext(c, 1)

			require.NoError(t, tt.call(c))
			require.Equal(t, http.StatusOK, rec.Code)

			var response BudgetAmountResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, int32(10), response.BudgetID)
			assert.Equal(t, tt.amount, response.Amount)
		})
	}
}

func TestBudgetAggregates_OtherUserIsNotFound(t *testing.T) {
	f := newAPIFixture()
	c, rec := newRequest(echo.New(), http.MethodGet, "/api/v1/budgets/20/spent", "", "id", "20")
	setupUserContext(c, 1)

	require.NoError(t, f.budgetHandler().GetSpent(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSummary(t *testing.T) {
	f := newAPIFixture()
	f.addTransaction(1, 1, 10, 1, domain.TransactionTypeExpense, "450", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))

	c, rec := newRequest(echo.New(), http.MethodGet, "/api/v1/budgets/10/summary", "", "id", "10")
	setupUserContext(c, 1)

	require.NoError(t, f.budgetHandler().GetSummary(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response BudgetSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "450.00", response.TotalSpent)
	assert.Equal(t, "50.00", response.Remaining)
	assert.Equal(t, "90.00", response.PercentUsed)
	assert.Equal(t, "warning", response.Status)
}

func TestDeleteBudget_CascadesTransactions(t *testing.T) {
	f := newAPIFixture()
	f.addTransaction(1, 1, 10, 1, domain.TransactionTypeExpense, "50", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))

	c, rec := newRequest(echo.New(), http.MethodDelete, "/api/v1/budgets/10", "", "id", "10")
	setupUserContext(c, 1)

	require.NoError(t, f.budgetHandler().DeleteBudget(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.transactions.Transactions)
	assert.NotContains(t, f.budgets.Budgets, int32(10))
}

func TestDeleteBudget_OtherUserIsNotFound(t *testing.T) {
	f := newAPIFixture()
	c, rec := newRequest(echo.New(), http.MethodDelete, "/api/v1/budgets/20", "", "id", "20")
	setupUserContext(c, 1)

	require.NoError(t, f.budgetHandler().DeleteBudget(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, f.budgets.Budgets, int32(20))
}

func TestGetBudgetTransactions(t *testing.T) {
	f := newAPIFixture()
	f.addTransaction(1, 1, 10, 1, domain.TransactionTypeExpense, "50", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	f.addTransaction(2, 2, 20, 3, domain.TransactionTypeExpense, "5", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))

	c, rec := newRequest(echo.New(), http.MethodGet, "/api/v1/budgets/10/transactions", "", "id", "10")
	setupUserContext(c, 1)

	require.NoError(t, f.budgetHandler().GetBudgetTransactions(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response []TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "Groceries", *response[0].CategoryName)
}
