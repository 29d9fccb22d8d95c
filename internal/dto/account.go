package dto

import (
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/utils/pagination"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	EntityParams
	Name            string              `json:"name" binding:"required"`
	Class           domain.AccountClass `json:"class" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	ParentAccountID *string             `json:"parentAccountID"`
	Description     string              `json:"description"`
}

// ToCommand converts the request for the given books.
func (r CreateAccountRequest) ToCommand(entity domain.EntityRef) portssvc.CreateAccountCmd {
	return portssvc.CreateAccountCmd{
		Entity:          entity,
		Class:           r.Class,
		Name:            r.Name,
		ParentAccountID: r.ParentAccountID,
		Description:     r.Description,
	}
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// ToCommand converts the request.
func (r UpdateAccountRequest) ToCommand() portssvc.UpdateAccountCmd {
	return portssvc.UpdateAccountCmd{Name: r.Name, Description: r.Description, IsActive: r.IsActive}
}

// ProvisionEntityRequest names the books to provision.
type ProvisionEntityRequest struct {
	EntityType string `json:"entityType" binding:"required,oneof=ADMIN VENDOR"`
	EntityID   string `json:"entityId"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	EntityParams
	PageParams
	Class      string `form:"class" binding:"omitempty,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	ActiveOnly bool   `form:"activeOnly"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string              `json:"accountID"`
	EntityType      domain.EntityType   `json:"entityType"`
	EntityID        string              `json:"entityId,omitempty"`
	Code            string              `json:"code"`
	Name            string              `json:"name"`
	Class           domain.AccountClass `json:"class"`
	Nature          domain.Nature       `json:"nature"`
	ParentAccountID *string             `json:"parentAccountID,omitempty"`
	Description     string              `json:"description"`
	Key             string              `json:"key,omitempty"`
	IsSystem        bool                `json:"isSystem"`
	CanDelete       bool                `json:"canDelete"`
	IsActive        bool                `json:"isActive"`
	CreatedAt       time.Time           `json:"createdAt"`
	CreatedBy       string              `json:"createdBy"`
	LastUpdatedAt   time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy   string              `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	resp := AccountResponse{
		AccountID:       acc.AccountID,
		EntityType:      acc.Entity.Type,
		EntityID:        acc.Entity.ID,
		Code:            acc.Code,
		Name:            acc.Name,
		Class:           acc.Class,
		Nature:          acc.Nature,
		ParentAccountID: acc.ParentAccountID,
		Description:     acc.Description,
		IsSystem:        acc.IsSystem,
		CanDelete:       acc.CanDelete,
		IsActive:        acc.IsActive,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
	if acc.Key != nil {
		resp.Key = string(*acc.Key)
	}
	return resp
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Data       []AccountResponse     `json:"data"`
	Pagination pagination.Pagination `json:"pagination"`
}

// ProvisionEntityResponse lists the system accounts created by provisioning.
type ProvisionEntityResponse struct {
	EntityType domain.EntityType `json:"entityType"`
	EntityID   string            `json:"entityId,omitempty"`
	Created    []AccountResponse `json:"created"`
}
