package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/SscSPs/marketplace_ledger/cmd/docs"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/SscSPs/marketplace_ledger/internal/platform/config"
	"github.com/SscSPs/marketplace_ledger/internal/platform/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouteDeps carries the collaborators the HTTP layer needs besides the services.
type RouteDeps struct {
	// Access checks reads against the caller's entity. Required.
	Access portssvc.EntityAccessValidator
	// Events queues async events; nil disables async intake.
	Events EventQueue
	// Metrics exposes /metrics and records request counters when set.
	Metrics *observability.Metrics
	// RateLimit is applied to /api/v1 after authentication when set.
	RateLimit gin.HandlerFunc
	// Ping reports backing store health for /health when set.
	Ping func(ctx context.Context) error
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps RouteDeps,
) {
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-api-key", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if deps.Metrics != nil {
		r.Use(deps.Metrics.GinMiddleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				c.String(http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		c.String(http.StatusOK, "OK")
	})

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, deps)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	deps RouteDeps,
) {
	// Integration keys authenticate first; anything else must carry a JWT
	v1 := r.Group("/api/v1",
		middleware.APIKeyAuth(service.IntegrationKey),
		middleware.AuthMiddleware(cfg.JWTSecret),
	)
	if deps.RateLimit != nil {
		v1.Use(deps.RateLimit)
	}

	RegisterAccountRoutes(v1, service.Account, deps.Access)
	RegisterVoucherRoutes(v1, service.Voucher, deps.Access)
	RegisterEventRoutes(v1, service.AutoVoucher, deps.Events)
	RegisterReportingRoutes(v1, service.Reporting, deps.Access)
	RegisterPeriodRoutes(v1, service.Period, deps.Access)
	RegisterMaintenanceRoutes(v1, service.VendorPayable, service.Integrity)
	RegisterAuditRoutes(v1, service.Audit)
	RegisterIntegrationKeyRoutes(v1, service.IntegrationKey)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
