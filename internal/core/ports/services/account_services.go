package services

import (
	"context"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// CreateAccountCmd carries the fields of a new user-defined account.
type CreateAccountCmd struct {
	Entity          domain.EntityRef
	Class           domain.AccountClass
	Name            string
	ParentAccountID *string
	Description     string
}

// UpdateAccountCmd carries optional changes; nil fields are left as they are.
type UpdateAccountCmd struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// ListAccountsParams narrows an account listing.
type ListAccountsParams struct {
	Entity     domain.EntityRef
	Class      *domain.AccountClass
	ActiveOnly bool
	Page       domain.PageRequest
}

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccount retrieves a specific account by its unique identifier.
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves a page of an entity's chart of accounts and the total count.
	ListAccounts(ctx context.Context, params ListAccountsParams) ([]domain.Account, int, error)

	// ResolveAccount returns the active account registered under a well-known key.
	ResolveAccount(ctx context.Context, entity domain.EntityRef, key domain.AccountKey, subject string) (*domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount creates a user-defined account with the next code of its class.
	CreateAccount(ctx context.Context, cmd CreateAccountCmd, actorID string) (*domain.Account, error)

	// UpdateAccount changes the name, description or active flag of an unprotected account.
	UpdateAccount(ctx context.Context, accountID string, cmd UpdateAccountCmd, actorID string) (*domain.Account, error)

	// DeleteAccount removes an unprotected, unreferenced account.
	DeleteAccount(ctx context.Context, accountID string, actorID string) error

	// ProvisionEntity creates the entity's missing system accounts and returns the ones created.
	ProvisionEntity(ctx context.Context, entity domain.EntityRef, actorID string) ([]domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
