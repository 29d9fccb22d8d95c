package repositories

import (
	"context"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// AccountReferences counts the rows that still point at an account.
type AccountReferences struct {
	LedgerEntries int
	DraftEntries  int
	Children      int
}

// Any reports whether anything references the account.
func (r AccountReferences) Any() bool {
	return r.LedgerEntries > 0 || r.DraftEntries > 0 || r.Children > 0
}

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing ids are simply absent from the map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountByKey retrieves the account registered under a well-known key for an entity.
	FindAccountByKey(ctx context.Context, entity domain.EntityRef, key domain.AccountKey, subject string) (*domain.Account, error)

	// ListAccounts retrieves a page of an entity's accounts ordered by code, and the total count.
	ListAccounts(ctx context.Context, entity domain.EntityRef, class *domain.AccountClass, activeOnly bool, limit int, offset int) ([]domain.Account, int, error)

	// CountAccountReferences reports what still references the account.
	CountAccountReferences(ctx context.Context, accountID string) (AccountReferences, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A clashing code or key returns apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's mutable details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount removes an account.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
