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

// maintenanceHandler serves the ledger health operations: payable cache rebuild
// and integrity checks.
type maintenanceHandler struct {
	payables  portssvc.VendorPayableSvcFacade
	integrity portssvc.IntegritySvc
}

// RegisterMaintenanceRoutes registers the payable rebuild and integrity routes.
func RegisterMaintenanceRoutes(rg *gin.RouterGroup, payables portssvc.VendorPayableSvcFacade, integrity portssvc.IntegritySvc) {
	h := &maintenanceHandler{payables: payables, integrity: integrity}
	staff := middleware.RequireRole(domain.RoleAdmin, domain.RoleSystem)

	rg.POST("/vendor-payables/rebuild", staff, h.rebuildPayables)
	rg.GET("/integrity", staff, h.checkIntegrity)
}

// rebuildPayables godoc
// @Summary Rebuild the vendor payable cache
// @Description Recomputes cached payables from posted vouchers and reports the vendors whose balance drifted.
// @Tags maintenance
// @Accept json
// @Produce json
// @Param request body dto.RebuildPayablesRequest false "Optional vendor"
// @Success 200 {object} dto.RebuildPayablesResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /vendor-payables/rebuild [post]
func (h *maintenanceHandler) rebuildPayables(c *gin.Context) {
	var req dto.RebuildPayablesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request format: "+err.Error())
			return
		}
	}
	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	drifts, err := h.payables.RebuildVendorPayables(c.Request.Context(), req.VendorID, actorID)
	if err != nil {
		respondError(c, err, "Failed to rebuild vendor payables")
		return
	}
	if drifts == nil {
		drifts = []domain.VendorPayableDrift{}
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Vendor payables rebuilt", slog.Int("drifted", len(drifts)))
	c.JSON(http.StatusOK, dto.RebuildPayablesResponse{Drifts: drifts})
}

// checkIntegrity godoc
// @Summary Check ledger integrity
// @Description Verifies every posted voucher's ledger lines balance and match its totals.
// @Tags maintenance
// @Produce json
// @Param entityType query string false "Restrict to ADMIN or VENDOR books"
// @Param entityId query string false "Vendor ID when entityType is VENDOR"
// @Success 200 {object} dto.IntegrityResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /integrity [get]
func (h *maintenanceHandler) checkIntegrity(c *gin.Context) {
	var params dto.EntityParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	var entity *domain.EntityRef
	if params.IsSet() {
		ref, err := params.ToEntity()
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		entity = &ref
	}

	issues, err := h.integrity.CheckIntegrity(c.Request.Context(), entity)
	if err != nil {
		respondError(c, err, "Failed to check integrity")
		return
	}
	if issues == nil {
		issues = []domain.IntegrityIssue{}
	}
	c.JSON(http.StatusOK, dto.IntegrityResponse{Healthy: len(issues) == 0, Issues: issues})
}
