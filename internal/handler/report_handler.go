package handler

import (
	"net/http"

	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/middleware"
	"github.com/budgetly/budgetly-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ReportHandler handles aggregate report requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// CategorySpendingResponse is one category's total in a report
type CategorySpendingResponse struct {
	Category         string `json:"category"`
	TotalAmount      string `json:"totalAmount"`
	TransactionCount int64  `json:"transactionCount"`
}

// CategoryExpenseReportResponse represents the per-user expense report
type CategoryExpenseReportResponse struct {
	StartDate  string                     `json:"startDate"`
	EndDate    string                     `json:"endDate"`
	Total      string                     `json:"total"`
	Categories []CategorySpendingResponse `json:"categories"`
}

func toCategorySpendingResponses(items []*domain.CategorySpending) []CategorySpendingResponse {
	response := make([]CategorySpendingResponse, len(items))
	for i, item := range items {
		response[i] = CategorySpendingResponse{
			Category:         item.Category,
			TotalAmount:      formatAmount(item.TotalAmount),
			TransactionCount: item.TransactionCount,
		}
	}
	return response
}

// SpendingByCategory godoc
// @Summary Budget spending by category
// @Description Sum of a budget's transactions per category within an inclusive date window
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {array} CategorySpendingResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /reports/budgets/{id}/spending-by-category [get]
func (h *ReportHandler) SpendingByCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, verr := parseIDParam(c, "id")
	if verr != nil {
		return invalidParam(c, verr)
	}
	start, verr := requiredDateQuery(c, "startDate")
	if verr != nil {
		return invalidParam(c, verr)
	}
	end, verr := requiredDateQuery(c, "endDate")
	if verr != nil {
		return invalidParam(c, verr)
	}

	spending, err := h.reportService.SpendingByCategory(userID, id, start, end)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get spending by category")
	}

	return c.JSON(http.StatusOK, toCategorySpendingResponses(spending))
}

// ChartSpending godoc
// @Summary Budget expense chart
// @Description Expense totals per category over the whole budget
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Success 200 {array} CategorySpendingResponse
// @Failure 404 {object} ProblemDetails
// @Router /reports/budgets/{id}/chart [get]
func (h *ReportHandler) ChartSpending(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, verr := parseIDParam(c, "id")
	if verr != nil {
		return invalidParam(c, verr)
	}

	chart, err := h.reportService.ChartSpending(userID, id)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get chart data")
	}

	return c.JSON(http.StatusOK, toCategorySpendingResponses(chart))
}

// CategoryExpenseReport godoc
// @Summary Expense report by category
// @Description All of the user's expenses in a window, grouped by category
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} CategoryExpenseReportResponse
// @Failure 400 {object} ProblemDetails
// @Router /reports/categories [get]
func (h *ReportHandler) CategoryExpenseReport(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	start, verr := requiredDateQuery(c, "startDate")
	if verr != nil {
		return invalidParam(c, verr)
	}
	end, verr := requiredDateQuery(c, "endDate")
	if verr != nil {
		return invalidParam(c, verr)
	}

	report, err := h.reportService.CategoryExpenseReport(userID, start, end)
	if err != nil {
		return handleServiceError(c, err, userID, "Failed to get category report")
	}

	return c.JSON(http.StatusOK, CategoryExpenseReportResponse{
		StartDate:  formatDate(report.StartDate),
		EndDate:    formatDate(report.EndDate),
		Total:      formatAmount(report.Total),
		Categories: toCategorySpendingResponses(report.Categories),
	})
}
