// Package main is the entry point for the vibooks API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vibooks/internal/core/period"
	"vibooks/internal/domain/auth"
	"vibooks/internal/domain/ledger"
	"vibooks/internal/domain/periodlock"
	"vibooks/internal/domain/reports/balancesheet"
	"vibooks/internal/domain/reports/cashflow"
	"vibooks/internal/domain/reports/incomestatement"
	"vibooks/internal/domain/reports/pipeline"
	"vibooks/internal/domain/reports/trialbalance"
	"vibooks/internal/infrastructure/cache"
	v1 "vibooks/internal/infrastructure/http/v1"
	"vibooks/internal/infrastructure/storage/postgres"
	"vibooks/internal/infrastructure/storage/postgres/balance_repo"
	"vibooks/pkg/logger"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting vibooks server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Storage ---
	auditSink, err := postgres.NewLockAuditSink(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit sink", "error", err)
	}
	lockStore := postgres.NewLockStore(txManager, auditSink)

	chart := ledger.DefaultChart()
	balanceRepo := balance_repo.NewBalanceRepo(txManager, chart)

	// --- Statement services ---
	trialBalanceSvc := trialbalance.NewService(balanceRepo, chart)
	balanceSheetSvc := balancesheet.NewService(trialBalanceSvc)
	incomeStatementSvc := incomestatement.NewService(trialBalanceSvc)

	// The lock service and the statement pipeline reference each other:
	// locking requires valid statements, final statements require a lock.
	// A function adapter defers the lock lookup until both exist.
	var lockSvc *periodlock.Service
	lockChecker := cashflow.LockCheckerFunc(func(ctx context.Context, p period.Period) (bool, error) {
		return lockSvc.IsLocked(ctx, p)
	})

	cashFlowSvc := cashflow.NewService(trialBalanceSvc, balanceSheetSvc, lockChecker)
	pipelineSvc := pipeline.NewService(trialBalanceSvc, balanceSheetSvc, lockChecker)
	lockSvc = periodlock.NewService(lockStore, pipelineSvc, balanceRepo)

	// --- Report cache ---
	reportCache := cache.NewReportCache(getEnvDuration("REPORT_CACHE_TTL", cache.DefaultTTL))
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			reportCache.Sweep()
		}
	}()

	// --- JWT ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		JWTValidator:    jwtService,
		TrialBalance:    trialBalanceSvc,
		IncomeStatement: incomeStatementSvc,
		BalanceSheet:    balanceSheetSvc,
		CashFlow:        cashFlowSvc,
		Pipeline:        pipelineSvc,
		PeriodLocks:     lockSvc,
		ReportCache:     reportCache,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
