package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/dto"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/SscSPs/marketplace_ledger/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// voucherHandler exposes the voucher state machine.
type voucherHandler struct {
	entityScope
	voucherService portssvc.VoucherSvcFacade
}

func newVoucherHandler(vs portssvc.VoucherSvcFacade, access portssvc.EntityAccessValidator) *voucherHandler {
	return &voucherHandler{
		entityScope:    entityScope{access: access},
		voucherService: vs,
	}
}

// RegisterVoucherRoutes registers routes related to vouchers.
func RegisterVoucherRoutes(rg *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade, access portssvc.EntityAccessValidator) {
	h := newVoucherHandler(voucherService, access)

	vouchers := rg.Group("/vouchers")
	{
		vouchers.POST("", h.createVoucher)
		vouchers.GET("", h.listVouchers)
		vouchers.GET("/:voucherID", h.getVoucher)
		vouchers.POST("/:voucherID/post", h.postVoucher)
		vouchers.POST("/:voucherID/lock", h.lockVoucher)
		vouchers.POST("/:voucherID/reverse", h.reverseVoucher)
		vouchers.POST("/:voucherID/cancel", h.cancelVoucher)
	}
}

// createVoucher godoc
// @Summary Create a draft voucher
// @Description Validates the entry set (balanced, non-zero, one side per line) and stores a DRAFT voucher with its number.
// @Tags vouchers
// @Accept json
// @Produce json
// @Param voucher body dto.CreateVoucherRequest true "Voucher header and entries"
// @Success 201 {object} dto.VoucherResponse
// @Failure 400 {object} dto.ErrorResponse "Unbalanced, zero or malformed entries"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Unknown account"
// @Security BearerAuth
// @Router /vouchers [post]
func (h *voucherHandler) createVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}
	entity, p, ok := h.resolve(c, req.EntityParams)
	if !ok {
		return
	}

	voucher, err := h.voucherService.CreateVoucher(c.Request.Context(), req.ToSpec(entity), p.ActorID)
	if err != nil {
		respondError(c, err, "Failed to create voucher")
		return
	}

	logger.Info("Voucher created", slog.String("voucher_id", voucher.VoucherID), slog.String("voucher_number", voucher.VoucherNumber))
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(voucher))
}

// getVoucher godoc
// @Summary Get a voucher
// @Tags vouchers
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /vouchers/{voucherID} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	voucher, err := h.voucherService.GetVoucher(c.Request.Context(), c.Param("voucherID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve voucher")
		return
	}
	if !h.allow(c, voucher.Entity, p) {
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// listVouchers godoc
// @Summary List vouchers
// @Tags vouchers
// @Produce json
// @Param entityType query string false "ADMIN or VENDOR; defaults to the caller's books"
// @Param entityId query string false "Vendor ID when entityType is VENDOR"
// @Param status query string false "DRAFT, POSTED, REVERSED or CANCELLED"
// @Param voucherType query string false "Voucher type"
// @Param vendorId query string false "Vendor the voucher concerns"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.ListVouchersResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /vouchers [get]
func (h *voucherHandler) listVouchers(c *gin.Context) {
	var params dto.ListVouchersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	entity, _, ok := h.resolve(c, params.EntityParams)
	if !ok {
		return
	}

	filter := domain.VoucherFilter{Entity: &entity, VendorID: params.VendorID}
	if params.Status != "" {
		status := domain.VoucherStatus(params.Status)
		filter.Status = &status
	}
	if params.VoucherType != "" {
		vt := domain.VoucherType(params.VoucherType)
		if !vt.IsValid() {
			respondBadRequest(c, "unknown voucher type "+params.VoucherType)
			return
		}
		filter.VoucherType = &vt
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
	vouchers, total, err := h.voucherService.ListVouchers(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err, "Failed to list vouchers")
		return
	}
	c.JSON(http.StatusOK, dto.ListVouchersResponse{
		Data:       dto.ToListVoucherResponse(vouchers),
		Pagination: pagination.New(page, total),
	})
}

// postVoucher godoc
// @Summary Post a draft voucher
// @Description Moves the voucher to POSTED and writes its ledger entries.
// @Tags vouchers
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Voucher is not a draft"
// @Failure 423 {object} dto.ErrorResponse "Voucher or period is locked"
// @Security BearerAuth
// @Router /vouchers/{voucherID}/post [post]
func (h *voucherHandler) postVoucher(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	voucher, err := h.voucherService.PostVoucher(c.Request.Context(), c.Param("voucherID"), p.ActorID)
	if err != nil {
		respondError(c, err, "Failed to post voucher")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Voucher posted", slog.String("voucher_number", voucher.VoucherNumber))
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// lockVoucher godoc
// @Summary Lock a posted admin voucher
// @Tags vouchers
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /vouchers/{voucherID}/lock [post]
func (h *voucherHandler) lockVoucher(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	voucher, err := h.voucherService.LockVoucher(c.Request.Context(), c.Param("voucherID"), p.ActorID)
	if err != nil {
		respondError(c, err, "Failed to lock voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// reverseVoucher godoc
// @Summary Reverse a posted voucher
// @Description Posts a REVERSAL voucher with debits and credits swapped and marks the original REVERSED.
// @Tags vouchers
// @Accept json
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Param request body dto.ReverseVoucherRequest true "Reason and optional date"
// @Success 201 {object} dto.VoucherResponse "The reversal voucher"
// @Failure 409 {object} dto.ErrorResponse "Voucher cannot be reversed"
// @Failure 423 {object} dto.ErrorResponse "Voucher is locked"
// @Security BearerAuth
// @Router /vouchers/{voucherID}/reverse [post]
func (h *voucherHandler) reverseVoucher(c *gin.Context) {
	var req dto.ReverseVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	reversal, err := h.voucherService.ReverseVoucher(c.Request.Context(), c.Param("voucherID"), req.Reason, date, p.ActorID)
	if err != nil {
		respondError(c, err, "Failed to reverse voucher")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Voucher reversed",
		slog.String("voucher_id", c.Param("voucherID")), slog.String("reversal_number", reversal.VoucherNumber))
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(reversal))
}

// cancelVoucher godoc
// @Summary Cancel a draft voucher
// @Tags vouchers
// @Accept json
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Param request body dto.CancelVoucherRequest true "Reason"
// @Success 200 {object} dto.VoucherResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /vouchers/{voucherID}/cancel [post]
func (h *voucherHandler) cancelVoucher(c *gin.Context) {
	var req dto.CancelVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}
	voucher, err := h.voucherService.CancelVoucher(c.Request.Context(), c.Param("voucherID"), req.Reason, p.ActorID)
	if err != nil {
		respondError(c, err, "Failed to cancel voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}
