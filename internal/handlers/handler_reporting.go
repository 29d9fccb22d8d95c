package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/dto"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/SscSPs/marketplace_ledger/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	entityScope
	reportingService portssvc.ReportingSvc
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingSvc, access portssvc.EntityAccessValidator) *reportingHandler {
	return &reportingHandler{
		entityScope:      entityScope{access: access},
		reportingService: rs,
	}
}

// RegisterReportingRoutes registers routes related to financial reports
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvc, access portssvc.EntityAccessValidator) {
	h := newReportingHandler(reportingService, access)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/profit-and-loss", h.getProfitAndLoss)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
		reportingGroup.GET("/ledger", h.getLedger)
		reportingGroup.GET("/vendor-payables", h.getVendorPayables)
		reportingGroup.GET("/commissions", h.getCommissions)
	}
}

// bindReport binds the shared report parameters and resolves the entity.
func (h *reportingHandler) bindReport(c *gin.Context) (dto.ReportParams, domain.EntityRef, bool) {
	var params dto.ReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return params, domain.EntityRef{}, false
	}
	entity, _, ok := h.resolve(c, params.EntityParams)
	return params, entity, ok
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Lists every active account with its debit and credit totals as of a date.
// @Tags reports
// @Produce json
// @Param entityType query string false "ADMIN or VENDOR; defaults to the caller's books"
// @Param entityId query string false "Vendor ID when entityType is VENDOR"
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "No access to the entity"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	params, entity, ok := h.bindReport(c)
	if !ok {
		return
	}
	asOf, err := dto.ParseDate(params.AsOf)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	tb, err := h.reportingService.TrialBalance(c.Request.Context(), entity, asOf)
	if err != nil {
		respondError(c, err, "Failed to generate trial balance report")
		return
	}

	logger.Info("Trial balance report generated successfully", slog.String("entity", entity.String()), slog.Int("row_count", len(tb.Rows)))
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(tb))
}

// getProfitAndLoss godoc
// @Summary Generate profit and loss report
// @Description Sums income and expense movements within an inclusive date window.
// @Tags reports
// @Produce json
// @Param entityType query string false "ADMIN or VENDOR; defaults to the caller's books"
// @Param entityId query string false "Vendor ID when entityType is VENDOR"
// @Param startDate query string false "Start date (YYYY-MM-DD)" default(first day of current month)
// @Param endDate query string false "End date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.ProfitAndLossResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	params, entity, ok := h.bindReport(c)
	if !ok {
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := today
	if d, err := dto.ParseDate(params.StartDate); err != nil {
		respondBadRequest(c, err.Error())
		return
	} else if d != nil {
		start = *d
	}
	if d, err := dto.ParseDate(params.EndDate); err != nil {
		respondBadRequest(c, err.Error())
		return
	} else if d != nil {
		end = *d
	}

	pl, err := h.reportingService.ProfitAndLoss(c.Request.Context(), entity, start, end)
	if err != nil {
		respondError(c, err, "Failed to generate profit and loss report")
		return
	}

	logger.Info("Profit and loss report generated successfully", slog.String("entity", entity.String()))
	c.JSON(http.StatusOK, dto.ToProfitAndLossResponse(pl))
}

// getBalanceSheet godoc
// @Summary Generate balance sheet report
// @Description Sums asset, liability and equity balances as of a date, with retained earnings folded into equity.
// @Tags reports
// @Produce json
// @Param entityType query string false "ADMIN or VENDOR; defaults to the caller's books"
// @Param entityId query string false "Vendor ID when entityType is VENDOR"
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	params, entity, ok := h.bindReport(c)
	if !ok {
		return
	}
	asOf, err := dto.ParseDate(params.AsOf)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	bs, err := h.reportingService.BalanceSheet(c.Request.Context(), entity, asOf)
	if err != nil {
		respondError(c, err, "Failed to generate balance sheet report")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(bs))
}

// getLedger godoc
// @Summary Ledger lines with running balance
// @Description Returns posted ledger lines newest first. The running balance accumulates over the returned page.
// @Tags reports
// @Produce json
// @Param entityType query string false "ADMIN or VENDOR; defaults to the caller's books"
// @Param entityId query string false "Vendor ID when entityType is VENDOR"
// @Param accountId query string false "Account filter"
// @Param voucherId query string false "Voucher filter"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.ListLedgerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /reports/ledger [get]
func (h *reportingHandler) getLedger(c *gin.Context) {
	var params dto.LedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	entity, _, ok := h.resolve(c, params.EntityParams)
	if !ok {
		return
	}

	filter := domain.LedgerFilter{Entity: entity, AccountID: params.AccountID, VoucherID: params.VoucherID}
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
	lines, total, err := h.reportingService.Ledger(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err, "Failed to load ledger")
		return
	}
	if lines == nil {
		lines = []domain.LedgerLine{}
	}
	c.JSON(http.StatusOK, dto.ListLedgerResponse{Data: lines, Pagination: pagination.New(page, total)})
}

// getVendorPayables godoc
// @Summary Vendor payable summary
// @Description Returns the cached payable of one vendor, or of every vendor for admins.
// @Tags reports
// @Produce json
// @Param vendorId query string false "Vendor ID"
// @Success 200 {object} dto.VendorPayablesResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /reports/vendor-payables [get]
func (h *reportingHandler) getVendorPayables(c *gin.Context) {
	vendorID, ok := h.vendorScope(c, c.Query("vendorId"))
	if !ok {
		return
	}
	payables, err := h.reportingService.VendorPayableReport(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err, "Failed to load vendor payables")
		return
	}
	if payables == nil {
		payables = []domain.VendorPayable{}
	}
	c.JSON(http.StatusOK, dto.VendorPayablesResponse{Data: payables})
}

// getCommissions godoc
// @Summary Commission records
// @Tags reports
// @Produce json
// @Param vendorId query string false "Vendor ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.ListCommissionsResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /reports/commissions [get]
func (h *reportingHandler) getCommissions(c *gin.Context) {
	var params dto.PageParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	vendorID, ok := h.vendorScope(c, c.Query("vendorId"))
	if !ok {
		return
	}

	page := params.ToPageRequest()
	records, total, err := h.reportingService.ListCommissions(c.Request.Context(), vendorID, page)
	if err != nil {
		respondError(c, err, "Failed to list commissions")
		return
	}
	if records == nil {
		records = []domain.CommissionRecord{}
	}
	c.JSON(http.StatusOK, dto.ListCommissionsResponse{Data: records, Pagination: pagination.New(page, total)})
}
