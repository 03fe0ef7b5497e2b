package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/coma-workspace/coma-workspace/internal/app"
	"github.com/coma-workspace/coma-workspace/internal/ledger"
	"github.com/coma-workspace/coma-workspace/internal/observability"
	"github.com/coma-workspace/coma-workspace/internal/platform/cache"
	"github.com/coma-workspace/coma-workspace/internal/platform/db"
	"github.com/coma-workspace/coma-workspace/internal/shared"
	"github.com/coma-workspace/coma-workspace/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, running without cache", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	partners, err := cfg.Partners()
	if err != nil {
		logger.Error("decode partners", slog.Any("error", err))
		os.Exit(1)
	}
	accounts, err := cfg.BankAccounts()
	if err != nil {
		logger.Error("decode bank accounts", slog.Any("error", err))
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("load business timezone", slog.Any("error", err))
		os.Exit(1)
	}

	ledgerCache := ledger.NewCache(redisClient, cfg.CacheTTL)
	auditLogger := shared.NewAuditLogger(pool)
	idemStore := shared.NewIdempotencyStore(pool)

	service, err := ledger.NewService(ledger.ServiceConfig{
		Repository: ledger.NewRepository(pool),
		Audit:      auditLogger,
		Cache:      ledgerCache,
		Partners:   partners,
		Location:   loc,
		Pricing: ledger.PricingConfig{
			DevPercent:          cfg.DevPercent,
			ElectricityKwhPrice: cfg.ElectricityKwhPrice,
		},
	})
	if err != nil {
		logger.Error("init ledger service", slog.Any("error", err))
		os.Exit(1)
	}
	if err := service.Load(ctx); err != nil {
		logger.Error("load ledger", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	ledgerHandler := ledger.NewHandler(logger, service, idemStore, ledgerCache, metrics, accounts)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		LedgerHandler: ledgerHandler,
		JobsHandler:   jobsHandler,
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
