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

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	entityScope
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, access portssvc.EntityAccessValidator) *accountHandler {
	return &accountHandler{
		entityScope:    entityScope{access: access},
		accountService: as,
	}
}

// RegisterAccountRoutes registers routes related to accounts and entity provisioning.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, access portssvc.EntityAccessValidator) {
	h := newAccountHandler(accountService, access)

	rg.POST("/entities/provision", h.provisionEntity)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.PUT("/:accountID", h.updateAccount)
		accounts.DELETE("/:accountID", h.deleteAccount)
	}
}

// provisionEntity godoc
// @Summary Provision an entity's system accounts
// @Description Creates the system chart of accounts for the admin books or a vendor. Existing accounts are kept.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body dto.ProvisionEntityRequest true "Entity to provision"
// @Success 200 {object} dto.ProvisionEntityResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /entities/provision [post]
func (h *accountHandler) provisionEntity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ProvisionEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}
	entity, p, ok := h.resolve(c, dto.EntityParams{EntityType: req.EntityType, EntityID: req.EntityID})
	if !ok {
		return
	}

	created, err := h.accountService.ProvisionEntity(c.Request.Context(), entity, p.ActorID)
	if err != nil {
		respondError(c, err, "Failed to provision entity")
		return
	}

	logger.Info("Entity provisioned", slog.String("entity", entity.String()), slog.Int("created", len(created)))
	c.JSON(http.StatusOK, dto.ProvisionEntityResponse{
		EntityType: entity.Type,
		EntityID:   entity.ID,
		Created:    dto.ToListAccountResponse(created),
	})
}

// createAccount godoc
// @Summary Create a new account
// @Description Creates a user-defined account in an entity's chart. The code is assigned from the class.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "No access to the entity"
// @Failure 500 {object} dto.ErrorResponse "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}
	entity, p, ok := h.resolve(c, req.EntityParams)
	if !ok {
		return
	}

	logger.Info("Received request to create account", slog.String("account_name", req.Name), slog.String("class", string(req.Class)))
	newAccount, err := h.accountService.CreateAccount(c.Request.Context(), req.ToCommand(entity), p.ActorID)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", newAccount.AccountID), slog.String("code", newAccount.Code))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(newAccount))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 403 {object} dto.ErrorResponse "No access to the account's entity"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), c.Param("accountID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	if !h.allow(c, account.Entity, p) {
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List an entity's chart of accounts
// @Tags accounts
// @Produce  json
// @Param   entityType query string false "ADMIN or VENDOR; defaults to the caller's books"
// @Param   entityId query string false "Vendor ID when entityType is VENDOR"
// @Param   class query string false "Account class filter"
// @Param   activeOnly query bool false "Only active accounts"
// @Param   page query int false "Page number" default(1)
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	entity, _, ok := h.resolve(c, params.EntityParams)
	if !ok {
		return
	}

	page := params.ToPageRequest()
	query := portssvc.ListAccountsParams{Entity: entity, ActiveOnly: params.ActiveOnly, Page: page}
	if params.Class != "" {
		class := domain.AccountClass(params.Class)
		query.Class = &class
	}

	accounts, total, err := h.accountService.ListAccounts(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}

	logger.Info("Accounts listed successfully", slog.Int("count", len(accounts)), slog.Int("total", total))
	c.JSON(http.StatusOK, dto.ListAccountsResponse{
		Data:       dto.ToListAccountResponse(accounts),
		Pagination: pagination.New(page, total),
	})
}

// updateAccount godoc
// @Summary Update an account
// @Description Changes the name, description or active flag. System and protected accounts cannot be edited.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Account is immutable"
// @Security BearerAuth
// @Router /accounts/{accountID} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}
	p, ok := h.principal(c)
	if !ok {
		return
	}

	updated, err := h.accountService.UpdateAccount(c.Request.Context(), accountID, req.ToCommand(), p.ActorID)
	if err != nil {
		respondError(c, err, "Failed to update account")
		return
	}

	logger.Info("Account updated successfully", slog.String("account_id", accountID))
	c.JSON(http.StatusOK, dto.ToAccountResponse(updated))
}

// deleteAccount godoc
// @Summary Delete an account
// @Description Deletes an unprotected account that no voucher references.
// @Tags accounts
// @Param   accountID path string true "Account ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Account is immutable or referenced"
// @Security BearerAuth
// @Router /accounts/{accountID} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	accountID := c.Param("accountID")
	p, ok := h.principal(c)
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), accountID, p.ActorID); err != nil {
		respondError(c, err, "Failed to delete account")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Account deleted", slog.String("account_id", accountID))
	c.Status(http.StatusNoContent)
}
