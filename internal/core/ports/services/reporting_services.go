package services

import (
	"context"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// ReportingSvc derives statements from the ledger. Nothing here mutates state.
type ReportingSvc interface {
	// TrialBalance lists every active account as of asOf (nil means now).
	TrialBalance(ctx context.Context, entity domain.EntityRef, asOf *time.Time) (*domain.TrialBalance, error)

	// ProfitAndLoss sums income and expense movements within [start, end].
	ProfitAndLoss(ctx context.Context, entity domain.EntityRef, start, end time.Time) (*domain.ProfitAndLoss, error)

	// BalanceSheet sums asset, liability and equity balances as of asOf and folds in retained earnings.
	BalanceSheet(ctx context.Context, entity domain.EntityRef, asOf *time.Time) (*domain.BalanceSheet, error)

	// Ledger returns a newest-first page of ledger lines with a running balance over the page.
	Ledger(ctx context.Context, filter domain.LedgerFilter, page domain.PageRequest) ([]domain.LedgerLine, int, error)

	// VendorPayableReport returns the cached payable of one vendor, or of all vendors when vendorID is empty.
	VendorPayableReport(ctx context.Context, vendorID string) ([]domain.VendorPayable, error)

	// ListCommissions returns a page of commission records, optionally for one vendor.
	ListCommissions(ctx context.Context, vendorID string, page domain.PageRequest) ([]domain.CommissionRecord, int, error)
}
