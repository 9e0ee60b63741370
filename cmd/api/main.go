package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/budgetly/budgetly-backend/internal/amqp"
	"github.com/budgetly/budgetly-backend/internal/config"
	"github.com/budgetly/budgetly-backend/internal/domain"
	"github.com/budgetly/budgetly-backend/internal/handler"
	"github.com/budgetly/budgetly-backend/internal/middleware"
	"github.com/budgetly/budgetly-backend/internal/repository/postgres"
	"github.com/budgetly/budgetly-backend/internal/service"
	"github.com/budgetly/budgetly-backend/internal/token"
	"github.com/budgetly/budgetly-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// @title Budgetly API
// @version 1.0
// @description Personal budgets, categories and income/expense transactions.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Connect to database
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)

	tokenManager, err := token.NewManager([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token manager")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, tokenManager)
	profileService := service.NewProfileService(userRepo)
	budgetService := service.NewBudgetService(budgetRepo, newBudgetLocker(cfg.BudgetLockMode, pool))
	categoryService := service.NewCategoryService(categoryRepo)
	transactionService := service.NewTransactionService(transactionRepo, budgetRepo, categoryService)
	analyticsService := service.NewAnalyticsService(transactionRepo)
	reportService := service.NewReportService(budgetRepo, transactionRepo, analyticsService)

	if err := categoryService.SeedDefaults(); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed default categories")
	}

	// Change events go to websocket clients and, if configured, RabbitMQ
	hub := websocket.NewHub()
	publishers := websocket.MultiPublisher{hub}

	var amqpPublisher *amqp.Publisher
	if cfg.AMQP.URL != "" {
		amqpPublisher, err = amqp.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect event publisher")
		}
		publishers = append(publishers, amqpPublisher)
	}

	budgetService.SetEventPublisher(publishers)
	transactionService.SetEventPublisher(publishers)
	categoryService.SetEventPublisher(publishers)

	authMiddleware := middleware.NewAuthMiddleware(tokenManager)
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, middleware.DefaultBurstSize)

	// Initialize handlers
	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Profile:     handler.NewProfileHandler(profileService),
		Budget:      handler.NewBudgetHandler(budgetService, analyticsService, reportService, transactionService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Category:    handler.NewCategoryHandler(categoryService),
		Report:      handler.NewReportHandler(reportService),
		WebSocket:   handler.NewWebSocketHandler(hub, websocket.NewTokenValidator(tokenManager, authService), cfg.CORSOrigins),
		OpenAPI:     handler.NewOpenAPIHandler(cfg.PublicURL),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	handler.RegisterRoutes(e, authMiddleware, rateLimiter, handlers)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("lock_mode", cfg.BudgetLockMode).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := e.Shutdown(shutdownCtx)
		hub.Shutdown()
		rateLimiter.Stop()
		if amqpPublisher != nil {
			if cerr := amqpPublisher.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("Failed to close event publisher")
			}
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}

	log.Info().Msg("Server exited")
}

// newBudgetLocker picks the lock that serializes a user's budget writes.
// Advisory locks are needed once more than one instance shares the database.
func newBudgetLocker(mode string, pool *pgxpool.Pool) domain.UserLocker {
	if mode == config.LockModePostgres {
		return postgres.NewAdvisoryUserLocker(pool)
	}
	return service.NewMemoryUserLocker()
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}

			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Int32("user_id", middleware.GetUserID(c)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
