package repositories

import (
	"context"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// LedgerReader defines read operations on the append-only ledger
type LedgerReader interface {
	// ListLedgerEntriesByVoucher returns a voucher's ledger entries by line number.
	ListLedgerEntriesByVoucher(ctx context.Context, voucherID string) ([]domain.LedgerEntry, error)

	// ListLedgerLines returns a page of ledger lines, newest first, and the total count.
	// RunningBalance is left zero.
	ListLedgerLines(ctx context.Context, filter domain.LedgerFilter, limit int, offset int) ([]domain.LedgerLine, int, error)

	// SumPostedVoucherLedgers returns ledger totals and leftover draft counts for every
	// voucher that has been posted (POSTED or REVERSED), optionally for one entity.
	SumPostedVoucherLedgers(ctx context.Context, entity *domain.EntityRef) ([]domain.VoucherLedgerTotals, error)
}

// LedgerWriter appends to the ledger. There is no update or delete.
type LedgerWriter interface {
	InsertLedgerEntries(ctx context.Context, entries []domain.LedgerEntry) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
