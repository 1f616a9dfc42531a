package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankledger/internal/config"
	"bankledger/internal/database"
	"bankledger/internal/events"
	"bankledger/internal/handlers"
	"bankledger/internal/middleware"
	"bankledger/internal/repositories"
	"bankledger/internal/services"

	"github.com/jasonlvhit/gocron"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	accountRepo := repositories.NewAccountRepository(db)
	entryRepo := repositories.NewLedgerEntryRepository(db)
	schedRepo := repositories.NewScheduledTransactionRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)

	auditLogger := services.NewAuditLogger(logger)
	metrics := services.NewPrometheusMetrics()

	var publisher events.PublisherInterface
	if cfg.Events.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, logger)
		slog.Info("Event publishing enabled", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
	} else {
		publisher = events.NewNoopPublisher()
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("Failed to close event publisher", "error", err)
		}
	}()

	ledgerService := services.NewLedgerService(
		db, accountRepo, entryRepo, schedRepo, auditRepo,
		&cfg.Ledger, auditLogger, metrics, publisher,
	)
	pinService := services.NewPinService(accountRepo, auditRepo, auditLogger, &cfg.Security)
	schedulerService := services.NewSchedulerService(
		schedRepo, auditRepo, ledgerService, auditLogger, metrics, cfg.Ledger.SchedulerInterval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catch up on schedules that came due while the service was down, then
	// keep sweeping in the background.
	if executed, failed, err := schedulerService.RunDue(time.Now(), 0); err != nil {
		slog.Error("Startup scheduler sweep failed", "error", err)
	} else if executed+failed > 0 {
		slog.Info("Startup scheduler sweep completed", "executed", executed, "failed", failed)
	}
	go schedulerService.Start(ctx)

	// Interest accrues per calendar day; one sweep shortly after midnight
	// keeps every account's LastInterestDate current.
	cron := gocron.NewScheduler()
	if err := cron.Every(1).Day().At("00:05").Do(func() {
		applied, err := ledgerService.ApplyInterestToAll()
		if err != nil {
			slog.Error("Daily interest sweep failed", "error", err)
			return
		}
		slog.Info("Daily interest sweep completed", "accounts_credited", applied)
	}); err != nil {
		slog.Error("Failed to register interest sweep job", "error", err)
		os.Exit(1)
	}
	cron.Start()
	defer cron.Clear()

	e := newServer(cfg, db, ledgerService, pinService, schedulerService, accountRepo, auditRepo)

	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		slog.Info("Starting server", "address", addr, "environment", cfg.Server.Environment)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("Server stopped unexpectedly", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}

func newServer(
	cfg *config.Config,
	db *gorm.DB,
	ledgerService services.LedgerServiceInterface,
	pinService services.PinServiceInterface,
	schedulerService services.SchedulerServiceInterface,
	accountRepo repositories.AccountRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitPerSecond*2))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))

	healthHandler := handlers.NewHealthCheckHandler(db)
	accountHandler := handlers.NewAccountHandler(ledgerService, pinService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	scheduleHandler := handlers.NewScheduleHandler(schedulerService)
	adminHandler := handlers.NewAdminHandler(ledgerService, accountRepo, auditRepo)

	e.GET("/healthz", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	accounts := api.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/search", accountHandler.SearchAccounts)
	accounts.GET("/:accountNo", accountHandler.GetAccount)
	accounts.DELETE("/:accountNo", accountHandler.CloseAccount)
	accounts.GET("/:accountNo/statement", accountHandler.GetStatement)
	accounts.GET("/:accountNo/totals", accountHandler.GetTotals)
	accounts.PUT("/:accountNo/pin", accountHandler.SetPin)
	accounts.POST("/:accountNo/verify-pin", accountHandler.VerifyPin)

	accounts.POST("/:accountNo/deposit", transactionHandler.Deposit)
	accounts.POST("/:accountNo/withdraw", transactionHandler.Withdraw)
	accounts.POST("/:accountNo/transfer", transactionHandler.Transfer)
	accounts.POST("/:accountNo/reverse", transactionHandler.ReverseLast)
	accounts.POST("/:accountNo/interest", transactionHandler.ApplyInterest)
	accounts.GET("/:accountNo/entries", transactionHandler.ListEntries)
	accounts.GET("/:accountNo/entries/recent", transactionHandler.RecentEntries)

	accounts.POST("/:accountNo/schedules", scheduleHandler.CreateSchedule)
	accounts.GET("/:accountNo/schedules", scheduleHandler.ListSchedules)

	schedules := api.Group("/schedules")
	schedules.GET("/:scheduleId", scheduleHandler.GetSchedule)
	schedules.DELETE("/:scheduleId", scheduleHandler.CancelSchedule)
	schedules.POST("/run", scheduleHandler.RunDue)

	admin := api.Group("/admin")
	admin.GET("/stats", adminHandler.GetStats)
	admin.POST("/interest-sweep", adminHandler.RunInterestSweep)
	admin.POST("/validate", adminHandler.ValidateStore)
	admin.PUT("/accounts/:accountNo/balance", adminHandler.AdjustBalance)
	admin.PUT("/accounts/:accountNo/daily-limit", adminHandler.SetDailyLimit)
	admin.PUT("/accounts/:accountNo/active", adminHandler.SetActive)
	admin.PUT("/accounts/:accountNo/locked", adminHandler.SetLocked)
	admin.GET("/accounts/:accountNo/audit-logs", adminHandler.GetAuditLogs)

	return e
}
