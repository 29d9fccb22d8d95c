package handlers

import (
	"net/http"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/dto"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/SscSPs/marketplace_ledger/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

type auditHandler struct {
	audit portssvc.AuditReaderSvc
}

// RegisterAuditRoutes registers the audit log reader. Only admins may read it.
func RegisterAuditRoutes(rg *gin.RouterGroup, audit portssvc.AuditReaderSvc) {
	h := &auditHandler{audit: audit}
	rg.GET("/audit-logs", middleware.RequireRole(domain.RoleAdmin), h.listAuditLogs)
}

// listAuditLogs godoc
// @Summary List audit log entries
// @Description Returns audit entries newest first.
// @Tags audit
// @Produce json
// @Param entityName query string false "Record type, e.g. voucher"
// @Param entityId query string false "Record id"
// @Param action query string false "Audit action"
// @Param actorId query string false "Actor id"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.ListAuditLogsResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *auditHandler) listAuditLogs(c *gin.Context) {
	var params dto.ListAuditLogsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	filter := domain.AuditFilter{
		EntityName: params.EntityName,
		EntityID:   params.EntityID,
		Action:     domain.AuditAction(params.Action),
		ActorID:    params.ActorID,
	}
	var err error
	if filter.From, err = dto.ParseDate(params.From); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if filter.To, err = dto.ParseDate(params.To); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	page := params.ToPageRequest()
	entries, total, err := h.audit.ListAuditLogs(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err, "Failed to list audit logs")
		return
	}
	if entries == nil {
		entries = []domain.AuditLogEntry{}
	}
	c.JSON(http.StatusOK, dto.ListAuditLogsResponse{Data: entries, Pagination: pagination.New(page, total)})
}
