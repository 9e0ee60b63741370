package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/middleware"
	"github.com/budgetly/budgetly-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionRequest represents the create and update transaction request
// body. UserID defaults to the authenticated user when omitted.
type TransactionRequest struct {
	UserID      *int32  `json:"userId,omitempty"`
	BudgetID    *int32  `json:"budgetId,omitempty"`
	CategoryID  *int32  `json:"categoryId"`
	Amount      string  `json:"amount"`
	Description *string `json:"description,omitempty"`
	Type        string  `json:"type"`
	Date        *string `json:"date,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID           int32   `json:"id"`
	UserID       int32   `json:"userId"`
	BudgetID     *int32  `json:"budgetId"`
	CategoryID   int32   `json:"categoryId"`
	CategoryName *string `json:"categoryName,omitempty"`
	Amount       string  `json:"amount"`
	Description  *string `json:"description"`
	Type         string  `json:"type"`
	Date         string  `json:"date"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		BudgetID:    t.BudgetID,
		CategoryID:  t.CategoryID,
		Amount:      formatAmount(t.Amount),
		Description: t.Description,
		Type:        string(t.Type),
		Date:        t.Date.UTC().Format(time.RFC3339),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if t.Category != nil {
		name := t.Category.Name
		resp.CategoryName = &name
	}
	return resp
}

func toTransactionResponses(transactions []*domain.Transaction) []TransactionResponse {
	response := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		response[i] = toTransactionResponse(t)
	}
	return response
}

func parseTransactionRequest(userID int32, req TransactionRequest) (service.TransactionInput, *ValidationError) {
	input := service.TransactionInput{
		UserID:      userID,
		BudgetID:    req.BudgetID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Type:        domain.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type))),
	}
	if req.UserID != nil {
		input.UserID = *req.UserID
	}

	if req.Amount == "" {
		return input, &ValidationError{Field: "amount", Message: "Amount is required"}
	}
	amount, verr := parseAmount("amount", req.Amount)
	if verr != nil {
		return input, verr
	}
	input.Amount = amount

	if req.Date != nil && *req.Date != "" {
		date, verr := parseTimestamp("date", *req.Date)
		if verr != nil {
			return input, verr
		}
		input.Date = date
	}

	return input, nil
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Record an income or expense against an owned budget and a usable category
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "Transaction"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, verr := parseTransactionRequest(userID, req)
	if verr != nil {
		return invalidParam(c, verr)
	}

	transaction, err := h.transactionService.CreateTransaction(userID, input)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to create transaction")
	}

	log.Info().Int32("user_id", userID).Int32("transaction_id", transaction.ID).Msg("Transaction created")

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions godoc
// @Summary List transactions
// @Description List the user's transactions, newest first
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param budgetId query int false "Budget filter"
// @Param categoryId query int false "Category filter"
// @Param type query string false "INCOME or EXPENSE"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD), inclusive"
// @Success 200 {array} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters := &domain.TransactionFilters{}

	budgetID, verr := parseOptionalID(c, "budgetId")
	if verr != nil {
		return invalidParam(c, verr)
	}
	filters.BudgetID = budgetID

	categoryID, verr := parseOptionalID(c, "categoryId")
	if verr != nil {
		return invalidParam(c, verr)
	}
	filters.CategoryID = categoryID

	if typeParam := c.QueryParam("type"); typeParam != "" {
		txType := domain.TransactionType(strings.ToUpper(typeParam))
		if !txType.Valid() {
			return invalidParam(c, &ValidationError{Field: "type", Message: "Must be INCOME or EXPENSE"})
		}
		filters.Type = &txType
	}

	if v := c.QueryParam("startDate"); v != "" {
		start, verr := parseDate("startDate", v)
		if verr != nil {
			return invalidParam(c, verr)
		}
		filters.StartDate = &start
	}
	if v := c.QueryParam("endDate"); v != "" {
		end, verr := parseDate("endDate", v)
		if verr != nil {
			return invalidParam(c, verr)
		}
		// inclusive of the whole end day
		end = end.Add(24*time.Hour - time.Nanosecond)
		filters.EndDate = &end
	}

	transactions, err := h.transactionService.GetTransactions(userID, filters)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get transactions")
	}

	return c.JSON(http.StatusOK, toTransactionResponses(transactions))
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, verr := parseIDParam(c, "id")
	if verr != nil {
		return invalidParam(c, verr)
	}

	transaction, err := h.transactionService.GetTransaction(userID, id)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Replace amount, description, type, date, category and budget
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body TransactionRequest true "Transaction"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, verr := parseIDParam(c, "id")
	if verr != nil {
		return invalidParam(c, verr)
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, verr := parseTransactionRequest(userID, req)
	if verr != nil {
		return invalidParam(c, verr)
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, id, input)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to update transaction")
	}

	log.Info().Int32("user_id", userID).Int32("transaction_id", id).Msg("Transaction updated")

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, verr := parseIDParam(c, "id")
	if verr != nil {
		return invalidParam(c, verr)
	}

	if err := h.transactionService.DeleteTransaction(userID, id); err != nil {
		return handleServiceError(c, err, userID, "Failed to delete transaction")
	}

	log.Info().Int32("user_id", userID).Int32("transaction_id", id).Msg("Transaction deleted")

	return c.NoContent(http.StatusNoContent)
}
