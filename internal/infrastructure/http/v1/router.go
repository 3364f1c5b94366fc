// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"vibooks/internal/core/security"
	"vibooks/internal/domain/periodlock"
	"vibooks/internal/domain/reports/balancesheet"
	"vibooks/internal/domain/reports/cashflow"
	"vibooks/internal/domain/reports/incomestatement"
	"vibooks/internal/domain/reports/pipeline"
	"vibooks/internal/domain/reports/trialbalance"
	"vibooks/internal/infrastructure/cache"
	"vibooks/internal/infrastructure/http/v1/handlers"
	"vibooks/internal/infrastructure/http/v1/middleware"
	"vibooks/internal/infrastructure/storage/postgres"
	"vibooks/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Statement services
	TrialBalance    *trialbalance.Service
	IncomeStatement *incomestatement.Service
	BalanceSheet    *balancesheet.Service
	CashFlow        *cashflow.Service
	Pipeline        *pipeline.Service

	// PeriodLocks drives the period lifecycle endpoints
	PeriodLocks *periodlock.Service

	// ReportCache caches final statement bundles
	ReportCache *cache.ReportCache
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	baseHandler := handlers.NewBaseHandler()
	reportsHandler := handlers.NewReportsHandler(
		baseHandler,
		cfg.TrialBalance,
		cfg.IncomeStatement,
		cfg.BalanceSheet,
		cfg.CashFlow,
		cfg.Pipeline,
		cfg.PeriodLocks,
		cfg.ReportCache,
	)
	periodsHandler := handlers.NewPeriodsHandler(baseHandler, cfg.PeriodLocks, cfg.ReportCache)

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		reports := protected.Group("/reports")
		reports.Use(middleware.RequirePermission(security.PermissionRead))
		{
			reports.GET("/trial-balance", reportsHandler.GetTrialBalance)
			reports.GET("/income-statement", reportsHandler.GetIncomeStatement)
			reports.GET("/balance-sheet", reportsHandler.GetBalanceSheet)
			reports.GET("/cash-flow", reportsHandler.GetCashFlow)
			reports.GET("/package", reportsHandler.GetBundle)
			reports.GET("/package/export", reportsHandler.ExportBundle)
		}

		periods := protected.Group("/periods")
		{
			periods.GET("", middleware.RequirePermission(security.PermissionRead), periodsHandler.List)
			periods.GET("/:period", middleware.RequirePermission(security.PermissionRead), periodsHandler.Get)
			periods.GET("/:period/checklist", middleware.RequirePermission(security.PermissionRead), periodsHandler.GetChecklist)
			periods.GET("/:period/can-modify", middleware.RequirePermission(security.PermissionRead), periodsHandler.CanModify)
			periods.GET("/:period/history", middleware.RequirePermission(security.PermissionRead), periodsHandler.GetHistory)

			// Transition endpoints re-check permissions in the domain layer;
			// the middleware gives fast rejection with the same error shape.
			periods.POST("/:period/lock", middleware.RequirePermission(security.PermissionLockPeriod), periodsHandler.Lock)
			periods.POST("/:period/unlock", middleware.RequirePermission(security.PermissionUnlockPeriod), periodsHandler.Unlock)
			periods.POST("/:period/close", middleware.RequirePermission(security.PermissionClosePeriod), periodsHandler.Close)
		}
	}

	return router
}
