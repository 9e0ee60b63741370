package handler

import (
	"net/http"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/middleware"
	"github.com/budgetly/budgetly-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService      *service.BudgetService
	analyticsService   *service.AnalyticsService
	reportService      *service.ReportService
	transactionService *service.TransactionService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, analyticsService *service.AnalyticsService, reportService *service.ReportService, transactionService *service.TransactionService) *BudgetHandler {
	return &BudgetHandler{
		budgetService:      budgetService,
		analyticsService:   analyticsService,
		reportService:      reportService,
		transactionService: transactionService,
	}
}

// BudgetRequest represents the create and update budget request body.
// Updates replace every field.
type BudgetRequest struct {
	Name      string  `json:"name"`
	Limit     string  `json:"limit"`
	Category  string  `json:"category"`
	StartDate string  `json:"startDate"`
	EndDate   *string `json:"endDate,omitempty"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID        int32   `json:"id"`
	UserID    int32   `json:"userId"`
	Name      string  `json:"name"`
	Limit     string  `json:"limit"`
	Category  string  `json:"category"`
	StartDate string  `json:"startDate"`
	EndDate   *string `json:"endDate"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// BudgetAmountResponse carries a single aggregate for a budget
type BudgetAmountResponse struct {
	BudgetID int32  `json:"budgetId"`
	Amount   string `json:"amount"`
}

// BudgetSummaryResponse represents a budget's usage summary
type BudgetSummaryResponse struct {
	BudgetID    int32   `json:"budgetId"`
	BudgetName  string  `json:"budgetName"`
	Category    string  `json:"category"`
	Limit       string  `json:"limit"`
	TotalSpent  string  `json:"totalSpent"`
	TotalIncome string  `json:"totalIncome"`
	Balance     string  `json:"balance"`
	Remaining   string  `json:"remaining"`
	PercentUsed string  `json:"percentUsed"`
	Status      string  `json:"status"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate"`
}

func toBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		Name:      b.Name,
		Limit:     formatAmount(b.Limit),
		Category:  b.Category,
		StartDate: formatDate(b.StartDate),
		EndDate:   formatDatePtr(b.EndDate),
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
	}
}

// parseBudgetRequest converts the body into service input. Empty fields are
// passed through so the validator reports them in its fixed order.
func parseBudgetRequest(req BudgetRequest) (service.BudgetInput, *ValidationError) {
	input := service.BudgetInput{
		Name:     req.Name,
		Category: req.Category,
	}

	if req.Limit != "" {
		limit, verr := parseAmount("limit", req.Limit)
		if verr != nil {
			return input, verr
		}
		input.Limit = limit
	}

	start, verr := parseDate("startDate", req.StartDate)
	if verr != nil {
		return input, verr
	}
	input.StartDate = start

	if req.EndDate != nil && *req.EndDate != "" {
		end, verr := parseDate("endDate", *req.EndDate)
		if verr != nil {
			return input, verr
		}
		input.EndDate = &end
	}

	return input, nil
}

// CreateBudget godoc
// @Summary Create a budget
// @Description Create a budget; its date range must not overlap any other budget of the user
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BudgetRequest true "Budget"
// @Success 201 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /budgets [post]
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, verr := parseBudgetRequest(req)
	if verr != nil {
		return invalidParam(c, verr)
	}

	budget, err := h.budgetService.CreateBudget(userID, input)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to create budget")
	}

	log.Info().Int32("user_id", userID).Int32("budget_id", budget.ID).Msg("Budget created")

	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// GetBudgets godoc
// @Summary List budgets
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} BudgetResponse
// @Router /budgets [get]
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budgets, err := h.budgetService.GetBudgets(userID)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get budgets")
	}

	response := make([]BudgetResponse, len(budgets))
	for i, b := range budgets {
		response[i] = toBudgetResponse(b)
	}
	return c.JSON(http.StatusOK, response)
}

// GetBudget godoc
// @Summary Get a budget
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Success 200 {object} BudgetResponse
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, verr := parseIDParam(c, "id")
	if verr != nil {
		return invalidParam(c, verr)
	}

	budget, err := h.budgetService.GetBudget(userID, id)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// UpdateBudget godoc
// @Summary Update a budget
// @Description Replace every field of a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Param request body BudgetRequest true "Budget"
// @Success 200 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, verr := parseIDParam(c, "id")
	if verr != nil {
		return invalidParam(c, verr)
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, verr := parseBudgetRequest(req)
	if verr != nil {
		return invalidParam(c, verr)
	}

	budget, err := h.budgetService.UpdateBudget(userID, id, input)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to update budget")
	}

	log.Info().Int32("user_id", userID).Int32("budget_id", budget.ID).Msg("Budget updated")

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteBudget godoc
// @Summary Delete a budget
// @Description Delete a budget together with its transactions
// @Tags budgets
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, verr := parseIDParam(c, "id")
	if verr != nil {
		return invalidParam(c, verr)
	}

	if err := h.budgetService.DeleteBudget(userID, id); err != nil {
		return handleServiceError(c, err, userID, "Failed to delete budget")
	}

	log.Info().Int32("user_id", userID).Int32("budget_id", id).Msg("Budget deleted")

	return c.NoContent(http.StatusNoContent)
}

// GetSpent handles GET /budgets/:id/spent
func (h *BudgetHandler) GetSpent(c echo.Context) error {
	return h.budgetAmount(c, func(b *domain.Budget) (decimal.Decimal, error) {
		return h.analyticsService.TotalSpent(b.ID)
	})
}

// GetEarned handles GET /budgets/:id/earned
func (h *BudgetHandler) GetEarned(c echo.Context) error {
	return h.budgetAmount(c, func(b *domain.Budget) (decimal.Decimal, error) {
		return h.analyticsService.TotalIncome(b.ID)
	})
}

// GetBalance handles GET /budgets/:id/balance
func (h *BudgetHandler) GetBalance(c echo.Context) error {
	return h.budgetAmount(c, func(b *domain.Budget) (decimal.Decimal, error) {
		return h.analyticsService.Balance(b.ID)
	})
}

// GetRemaining handles GET /budgets/:id/remaining
func (h *BudgetHandler) GetRemaining(c echo.Context) error {
	return h.budgetAmount(c, h.analyticsService.Remaining)
}

// budgetAmount checks ownership of the :id budget before computing an aggregate
func (h *BudgetHandler) budgetAmount(c echo.Context, compute func(*domain.Budget) (decimal.Decimal, error)) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, verr := parseIDParam(c, "id")
	if verr != nil {
		return invalidParam(c, verr)
	}

	budget, err := h.budgetService.GetBudget(userID, id)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get budget")
	}

	amount, err := compute(budget)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to calculate budget total")
	}

	return c.JSON(http.StatusOK, BudgetAmountResponse{BudgetID: budget.ID, Amount: formatAmount(amount)})
}

// GetSummary godoc
// @Summary Budget summary
// @Description Spent, income, balance, remaining and usage status of a budget
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Success 200 {object} BudgetSummaryResponse
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id}/summary [get]
func (h *BudgetHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, verr := parseIDParam(c, "id")
	if verr != nil {
		return invalidParam(c, verr)
	}

	summary, err := h.reportService.BudgetSummary(userID, id)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get budget summary")
	}

	return c.JSON(http.StatusOK, BudgetSummaryResponse{
		BudgetID:    summary.BudgetID,
		BudgetName:  summary.BudgetName,
		Category:    summary.Category,
		Limit:       formatAmount(summary.Limit),
		TotalSpent:  formatAmount(summary.TotalSpent),
		TotalIncome: formatAmount(summary.TotalIncome),
		Balance:     formatAmount(summary.Balance),
		Remaining:   formatAmount(summary.Remaining),
		PercentUsed: formatAmount(summary.PercentUsed),
		Status:      string(summary.Status),
		StartDate:   formatDate(summary.StartDate),
		EndDate:     formatDatePtr(summary.EndDate),
	})
}

// GetBudgetTransactions handles GET /budgets/:id/transactions
func (h *BudgetHandler) GetBudgetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, verr := parseIDParam(c, "id")
	if verr != nil {
		return invalidParam(c, verr)
	}

	transactions, err := h.transactionService.GetTransactionsByBudget(userID, id)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get budget transactions")
	}

	return c.JSON(http.StatusOK, toTransactionResponses(transactions))
}
