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
	"github.com/SscSPs/marketplace_ledger/internal/handlers"
	"github.com/SscSPs/marketplace_ledger/internal/jobs"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/SscSPs/marketplace_ledger/internal/platform/config"
	"github.com/SscSPs/marketplace_ledger/internal/platform/observability"
	"github.com/SscSPs/marketplace_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/marketplace_ledger/pkg/cache"
	"github.com/SscSPs/marketplace_ledger/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// @title Marketplace Ledger API
// @version 1.0
// @description Double-entry ledger for a multi-vendor marketplace.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{Ping: cfg.EnableDBCheck})
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if cfg.RunMigrations {
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return err
		}
	}

	metrics := observability.NewMetrics()
	opts := []services.Option{services.WithMetrics(metrics)}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()
	}

	var reportCache *cache.Cache
	if redisClient != nil && cfg.ReportCacheTTL > 0 {
		reportCache = cache.New(redisClient, cfg.ReportCacheTTL)
		opts = append(opts, services.WithChangeHook(services.InvalidateReports(reportCache)))
		logger.Info("Report cache enabled", slog.Duration("ttl", cfg.ReportCacheTTL))
	}

	access := authz.NewRoleAccessValidator()
	serviceContainer, err := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(dbPool), access, nil, opts...)
	if err != nil {
		return err
	}
	if reportCache != nil {
		serviceContainer.Reporting = services.NewCachedReportingService(serviceContainer.Reporting, reportCache)
	}

	rateLimit, err := newRateLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		return err
	}

	deps := handlers.RouteDeps{
		Access:    access,
		Metrics:   metrics,
		RateLimit: middleware.RateLimit(rateLimit),
		Ping:      dbPool.Ping,
	}
	if cfg.AsyncEvents {
		redisConn, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			return err
		}
		queue := jobs.NewClient(redisConn)
		defer queue.Close()
		deps.Events = queue
		logger.Info("Asynchronous event intake enabled")
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// newRateLimiter keeps counters in redis when available so every replica shares them.
func newRateLimiter(formatted string, redisClient *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	var store limiter.Store
	if redisClient != nil {
		store, err = redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "ledger:ratelimit"})
		if err != nil {
			return nil, err
		}
	} else {
		store = memorystore.NewStore()
	}
	return limiter.New(store, rate), nil
}
