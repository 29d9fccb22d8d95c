package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/dto"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type periodHandler struct {
	entityScope
	periodService portssvc.PeriodSvcFacade
}

// RegisterPeriodRoutes registers accounting period routes.
func RegisterPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade, access portssvc.EntityAccessValidator) {
	h := &periodHandler{entityScope: entityScope{access: access}, periodService: periodService}

	periods := rg.Group("/periods")
	{
		periods.POST("", h.createPeriod)
		periods.GET("", h.listPeriods)
		periods.POST("/:periodID/close", h.closePeriod)
		periods.POST("/:periodID/reopen", h.reopenPeriod)
	}
}

// createPeriod godoc
// @Summary Create an accounting period
// @Description Periods of one entity may not overlap. The end date is exclusive.
// @Tags periods
// @Accept json
// @Produce json
// @Param period body dto.CreatePeriodRequest true "Period"
// @Success 201 {object} dto.PeriodResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Overlaps an existing period"
// @Security BearerAuth
// @Router /periods [post]
func (h *periodHandler) createPeriod(c *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}
	entity, p, ok := h.resolve(c, req.EntityParams)
	if !ok {
		return
	}

	period, err := h.periodService.CreatePeriod(c.Request.Context(), req.ToCommand(entity), p.ActorID)
	if err != nil {
		respondError(c, err, "Failed to create period")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Period created", slog.String("period_id", period.PeriodID))
	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

// listPeriods godoc
// @Summary List accounting periods
// @Tags periods
// @Produce json
// @Param entityType query string false "ADMIN or VENDOR; defaults to the caller's books"
// @Param entityId query string false "Vendor ID when entityType is VENDOR"
// @Success 200 {object} dto.ListPeriodsResponse
// @Security BearerAuth
// @Router /periods [get]
func (h *periodHandler) listPeriods(c *gin.Context) {
	var params dto.EntityParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	entity, _, ok := h.resolve(c, params)
	if !ok {
		return
	}

	periods, err := h.periodService.ListPeriods(c.Request.Context(), entity)
	if err != nil {
		respondError(c, err, "Failed to list periods")
		return
	}
	resp := dto.ListPeriodsResponse{Data: make([]dto.PeriodResponse, len(periods))}
	for i := range periods {
		resp.Data[i] = dto.ToPeriodResponse(&periods[i])
	}
	c.JSON(http.StatusOK, resp)
}

// closePeriod godoc
// @Summary Close an accounting period
// @Tags periods
// @Produce json
// @Param periodID path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already closed"
// @Security BearerAuth
// @Router /periods/{periodID}/close [post]
func (h *periodHandler) closePeriod(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	period, err := h.periodService.ClosePeriod(c.Request.Context(), c.Param("periodID"), p.ActorID)
	if err != nil {
		respondError(c, err, "Failed to close period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// reopenPeriod godoc
// @Summary Reopen a closed accounting period
// @Tags periods
// @Produce json
// @Param periodID path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Not closed"
// @Security BearerAuth
// @Router /periods/{periodID}/reopen [post]
func (h *periodHandler) reopenPeriod(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	period, err := h.periodService.ReopenPeriod(c.Request.Context(), c.Param("periodID"), p.ActorID)
	if err != nil {
		respondError(c, err, "Failed to reopen period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}
