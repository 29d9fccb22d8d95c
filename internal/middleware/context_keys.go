package middleware

import (
	"github.com/SscSPs/marketplace_ledger/internal/authz"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// authMethodKey records which middleware authenticated the request.
const authMethodKey = "authMethod"

// GetPrincipalFromContext retrieves the authenticated principal from the request context.
func GetPrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	return authz.PrincipalFromContext(c.Request.Context())
}

// GetUserIDFromContext retrieves the authenticated actor ID.
// It returns the actor ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	p, ok := GetPrincipalFromContext(c)
	if !ok || p.ActorID == "" {
		return "", false
	}
	return p.ActorID, true
}

// setPrincipal stores the principal in the request context and enriches the logger.
func setPrincipal(c *gin.Context, p domain.Principal, method string) {
	logger := GetLoggerFromCtx(c.Request.Context()).With("user_id", p.ActorID, "role", string(p.Role))
	ctx := authz.WithPrincipal(c.Request.Context(), p)
	ctx = WithLogger(ctx, logger)
	c.Request = c.Request.WithContext(ctx)
	c.Set(authMethodKey, method)
}
