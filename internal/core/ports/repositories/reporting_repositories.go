package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetAccountTotals returns, for each account of the entity, the debit and credit sums of
	// ledger entries dated within [from, to]. A nil from means since the beginning. Accounts
	// without movement are included with zero totals. Rows are ordered by account code.
	GetAccountTotals(ctx context.Context, entity domain.EntityRef, from *time.Time, to time.Time, activeOnly bool) ([]domain.AccountTotals, error)
}
