package handler

import (
	"net/http"

	"github.com/budgetly/budgetly-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers bundles every HTTP handler the router wires up
type Handlers struct {
	Auth        *AuthHandler
	Profile     *ProfileHandler
	Budget      *BudgetHandler
	Transaction *TransactionHandler
	Category    *CategoryHandler
	Report      *ReportHandler
	WebSocket   *WebSocketHandler
	OpenAPI     *OpenAPIHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// API docs
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", h.OpenAPI.ServeOpenAPI3Spec)

	// Change feed; authenticates with ?token=
	e.GET("/ws", h.WebSocket.HandleWS)

	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	// Everything below requires a bearer token
	protected := api.Group("")
	protected.Use(authMiddleware.Authenticate())
	protected.Use(middleware.RateLimitMiddleware(rateLimiter))

	protected.GET("/auth/me", h.Auth.Me)

	// Profile routes
	protected.GET("/profile", h.Profile.GetProfile)
	protected.PUT("/profile", h.Profile.UpdateProfile)
	protected.DELETE("/profile", h.Profile.DeleteAccount)
	protected.PUT("/profile/password", h.Profile.ChangePassword)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", h.Budget.CreateBudget)
	budgets.GET("", h.Budget.GetBudgets)
	budgets.GET("/:id", h.Budget.GetBudget)
	budgets.PUT("/:id", h.Budget.UpdateBudget)
	budgets.DELETE("/:id", h.Budget.DeleteBudget)
	budgets.GET("/:id/spent", h.Budget.GetSpent)
	budgets.GET("/:id/earned", h.Budget.GetEarned)
	budgets.GET("/:id/balance", h.Budget.GetBalance)
	budgets.GET("/:id/remaining", h.Budget.GetRemaining)
	budgets.GET("/:id/summary", h.Budget.GetSummary)
	budgets.GET("/:id/transactions", h.Budget.GetBudgetTransactions)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.PUT("/:id", h.Transaction.UpdateTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", h.Category.CreateCategory)
	categories.GET("", h.Category.GetCategories)
	categories.DELETE("/:id", h.Category.DeleteCategory)

	// Report routes
	reports := protected.Group("/reports")
	reports.GET("/budgets/:id/spending-by-category", h.Report.SpendingByCategory)
	reports.GET("/budgets/:id/chart", h.Report.ChartSpending)
	reports.GET("/categories", h.Report.CategoryExpenseReport)
}
