package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// VoucherReader defines read operations for voucher data
type VoucherReader interface {
	// FindVoucherByID retrieves a voucher with its draft entries, or its ledger entries once posted.
	FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// ListVouchers retrieves a page of voucher headers, newest first, and the total count.
	ListVouchers(ctx context.Context, filter domain.VoucherFilter, limit int, offset int) ([]domain.Voucher, int, error)

	// ListPostedVendorVouchers returns the headers of POSTED vouchers concerning a vendor,
	// or any vendor when vendorID is empty, oldest first.
	ListPostedVendorVouchers(ctx context.Context, vendorID string) ([]domain.Voucher, error)
}

// VoucherWriter defines write operations for voucher data. The Mark* methods are
// conditional updates: when the row is not in the expected state they change nothing
// and return apperrors.ErrInvalidState.
type VoucherWriter interface {
	// SaveVoucher persists a voucher header and its draft entries. A clashing number returns apperrors.ErrDuplicate.
	SaveVoucher(ctx context.Context, voucher domain.Voucher) error

	// FindVoucherForUpdate reads a voucher and its draft entries and locks the row until the transaction ends.
	FindVoucherForUpdate(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// DeleteDraftEntries removes the draft entries of a voucher.
	DeleteDraftEntries(ctx context.Context, voucherID string) error

	// MarkVoucherPosted flips DRAFT to POSTED.
	MarkVoucherPosted(ctx context.Context, voucherID string, actorID string, at time.Time) error

	// MarkVoucherLocked sets the lock flag on an unlocked POSTED voucher.
	MarkVoucherLocked(ctx context.Context, voucherID string, actorID string, at time.Time) error

	// MarkVoucherReversed flips an unlocked POSTED voucher to REVERSED and links its reversal.
	MarkVoucherReversed(ctx context.Context, voucherID string, reversedByID string, reason string, actorID string, at time.Time) error

	// MarkVoucherCancelled flips DRAFT to CANCELLED.
	MarkVoucherCancelled(ctx context.Context, voucherID string, reason string, actorID string, at time.Time) error
}

// VoucherRepositoryFacade combines all voucher-related repository interfaces
type VoucherRepositoryFacade interface {
	VoucherReader
	VoucherWriter
}
