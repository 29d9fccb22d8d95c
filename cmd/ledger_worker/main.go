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

	"github.com/SscSPs/marketplace_ledger/internal/authz"
	"github.com/SscSPs/marketplace_ledger/internal/core/services"
	"github.com/SscSPs/marketplace_ledger/internal/jobs"
	platformconfig "github.com/SscSPs/marketplace_ledger/internal/platform/config"
	"github.com/SscSPs/marketplace_ledger/internal/platform/observability"
	"github.com/SscSPs/marketplace_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/marketplace_ledger/pkg/cache"
	"github.com/SscSPs/marketplace_ledger/pkg/config"
	"github.com/SscSPs/marketplace_ledger/pkg/database"
	"github.com/hibiken/asynq"
)

func main() {
	cfg, err := platformconfig.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	workerCfg, err := config.LoadWorkerConfig()
	if err != nil {
		slog.Error("Failed to load worker config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat).With(slog.String("process", "worker"))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, workerCfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *platformconfig.Config, workerCfg *config.WorkerConfig, logger *slog.Logger) error {
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns: int32(workerCfg.Concurrency) + 2,
		Ping:     true,
	})
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(dbPool)

	metrics := observability.NewMetrics()
	opts := []services.Option{services.WithMetrics(metrics)}

	// Events booked here must invalidate the API's cached statements too
	if cfg.ReportCacheTTL > 0 {
		reportCache, err := cache.NewFromURL(workerCfg.RedisURL, cfg.ReportCacheTTL)
		if err != nil {
			return err
		}
		defer reportCache.Close()
		opts = append(opts, services.WithChangeHook(services.InvalidateReports(reportCache)))
	}

	serviceContainer, err := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(dbPool), authz.NewRoleAccessValidator(), nil, opts...)
	if err != nil {
		return err
	}

	redisConn, err := asynq.ParseRedisURI(workerCfg.RedisURL)
	if err != nil {
		return err
	}
	jobMetrics := jobs.NewMetrics(metrics.Registerer())
	cron, err := cronEntries(workerCfg)
	if err != nil {
		return err
	}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisConn,
		Logger:      logger,
		Concurrency: workerCfg.Concurrency,
		Handlers:    jobs.Handlers(serviceContainer, jobMetrics, logger, workerCfg.SystemActorID),
		Cron:        cron,
	})
	if err != nil {
		return err
	}

	metricsSrv := &http.Server{Addr: workerCfg.MetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	return worker.Run(ctx)
}

func cronEntries(workerCfg *config.WorkerConfig) ([]jobs.CronRegistration, error) {
	var entries []jobs.CronRegistration
	if workerCfg.RebuildPayablesCron != "" {
		task, err := jobs.NewPayablesRebuildTask(jobs.PayablesRebuildPayload{ActorID: workerCfg.SystemActorID})
		if err != nil {
			return nil, err
		}
		entries = append(entries, jobs.CronRegistration{Spec: workerCfg.RebuildPayablesCron, Task: task})
	}
	if workerCfg.IntegrityCron != "" {
		task, err := jobs.NewIntegrityTask(jobs.IntegrityPayload{})
		if err != nil {
			return nil, err
		}
		entries = append(entries, jobs.CronRegistration{Spec: workerCfg.IntegrityCron, Task: task})
	}
	return entries, nil
}
