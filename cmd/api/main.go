package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foyerapp/foyer-backend/internal/config"
	"github.com/foyerapp/foyer-backend/internal/handler"
	"github.com/foyerapp/foyer-backend/internal/middleware"
	"github.com/foyerapp/foyer-backend/internal/repository/postgres"
	"github.com/foyerapp/foyer-backend/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

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

	// Apply schema migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	sectionRepo := postgres.NewSectionRepository(pool)
	cardRepo := postgres.NewCardRepository(pool)
	expenseTemplateRepo := postgres.NewExpenseTemplateRepository(pool)
	incomeTemplateRepo := postgres.NewIncomeTemplateRepository(pool)
	expenseInstanceRepo := postgres.NewExpenseInstanceRepository(pool)
	incomeInstanceRepo := postgres.NewIncomeInstanceRepository(pool)
	debtRepo := postgres.NewDebtRepository(pool)
	savingsRepo := postgres.NewSavingsRepository(pool)

	// Initialize services
	userService := service.NewUserService(userRepo)
	sectionService := service.NewSectionService(sectionRepo, cardRepo)
	expenseTemplateService := service.NewExpenseTemplateService(expenseTemplateRepo)
	incomeTemplateService := service.NewIncomeTemplateService(incomeTemplateRepo)
	generatorService := service.NewGeneratorService(expenseTemplateRepo, incomeTemplateRepo, debtRepo, expenseInstanceRepo, incomeInstanceRepo)
	reconcilerService := service.NewReconcilerService(expenseInstanceRepo)
	summaryService := service.NewSummaryService(sectionRepo, incomeTemplateRepo)
	monthService := service.NewMonthService(generatorService, reconcilerService, summaryService, expenseInstanceRepo, incomeInstanceRepo)
	ledgerService := service.NewLedgerService(expenseInstanceRepo, incomeInstanceRepo, incomeTemplateRepo, debtRepo)
	debtService := service.NewDebtService(debtRepo)
	savingsService := service.NewSavingsService(expenseTemplateRepo, savingsRepo)

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, userService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	// Initialize per-user rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	sectionHandler := handler.NewSectionHandler(sectionService)
	expenseHandler := handler.NewExpenseHandler(expenseTemplateService, ledgerService)
	incomeHandler := handler.NewIncomeHandler(incomeTemplateService, ledgerService)
	monthHandler := handler.NewMonthHandler(monthService)
	debtHandler := handler.NewDebtHandler(debtService)
	savingsHandler := handler.NewSavingsHandler(savingsService)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, userHandler, sectionHandler, expenseHandler, incomeHandler, monthHandler, debtHandler, savingsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
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

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
