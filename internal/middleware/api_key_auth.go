package middleware

import (
	"context"
	"log/slog"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// IntegrationKeyValidator authenticates a raw integration key.
type IntegrationKeyValidator interface {
	ValidateKey(ctx context.Context, raw string) (*domain.Principal, error)
}

// APIKeyAuth authenticates machine clients through the x-api-key header. Requests
// without the header, or with an invalid key, fall through to JWT authentication.
func APIKeyAuth(keys IntegrationKeyValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("x-api-key")
		if raw == "" {
			c.Next()
			return
		}

		p, err := keys.ValidateKey(c.Request.Context(), raw)
		if err != nil {
			GetLoggerFromCtx(c.Request.Context()).Warn("Integration key rejected", slog.String("error", err.Error()))
			c.Next()
			return
		}

		setPrincipal(c, *p, "api_key")
		c.Next()
	}
}
