package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/dto"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// integrationKeyHandler handles HTTP requests for machine client keys
type integrationKeyHandler struct {
	keys portssvc.IntegrationKeySvcFacade
}

// RegisterIntegrationKeyRoutes registers the key management routes. Only admins
// may manage keys.
func RegisterIntegrationKeyRoutes(rg *gin.RouterGroup, keys portssvc.IntegrationKeySvcFacade) {
	h := &integrationKeyHandler{keys: keys}

	group := rg.Group("/integration-keys", middleware.RequireRole(domain.RoleAdmin))
	{
		group.POST("", h.createKey)
		group.GET("", h.listKeys)
		group.DELETE("/:keyID", h.revokeKey)
	}
}

// createKey godoc
// @Summary Create an integration key
// @Description Creates a key for the order and payment subsystem. The plaintext key is returned only once; send it in the x-api-key header.
// @Tags integration-keys
// @Accept json
// @Produce json
// @Param request body dto.CreateIntegrationKeyRequest true "Key name"
// @Success 201 {object} dto.CreateIntegrationKeyResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /integration-keys [post]
func (h *integrationKeyHandler) createKey(c *gin.Context) {
	var req dto.CreateIntegrationKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}
	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	key, plaintext, err := h.keys.CreateKey(c.Request.Context(), req.Name, actorID)
	if err != nil {
		respondError(c, err, "Failed to create integration key")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Integration key created", slog.String("key_id", key.KeyID))
	c.JSON(http.StatusCreated, dto.CreateIntegrationKeyResponse{
		IntegrationKeyResponse: dto.ToIntegrationKeyResponse(key),
		Key:                    plaintext,
	})
}

// listKeys godoc
// @Summary List integration keys
// @Tags integration-keys
// @Produce json
// @Success 200 {object} dto.ListIntegrationKeysResponse
// @Security BearerAuth
// @Router /integration-keys [get]
func (h *integrationKeyHandler) listKeys(c *gin.Context) {
	keys, err := h.keys.ListKeys(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list integration keys")
		return
	}
	resp := dto.ListIntegrationKeysResponse{Data: make([]dto.IntegrationKeyResponse, len(keys))}
	for i := range keys {
		resp.Data[i] = dto.ToIntegrationKeyResponse(&keys[i])
	}
	c.JSON(http.StatusOK, resp)
}

// revokeKey godoc
// @Summary Revoke an integration key
// @Tags integration-keys
// @Param keyID path string true "Key ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /integration-keys/{keyID} [delete]
func (h *integrationKeyHandler) revokeKey(c *gin.Context) {
	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	if err := h.keys.RevokeKey(c.Request.Context(), c.Param("keyID"), actorID); err != nil {
		respondError(c, err, "Failed to revoke integration key")
		return
	}
	c.Status(http.StatusNoContent)
}
