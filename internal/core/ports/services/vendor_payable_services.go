package services

import (
	"context"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
)

// VendorPayableUpdater keeps the payable cache in step with postings.
type VendorPayableUpdater interface {
	// ApplyPosted applies the delta of a freshly posted voucher.
	ApplyPosted(ctx context.Context, tx portsrepo.TxRepositories, voucher domain.Voucher) error

	// ApplyReversed undoes the delta of a voucher that was just reversed.
	ApplyReversed(ctx context.Context, tx portsrepo.TxRepositories, original domain.Voucher, reversal domain.Voucher) error
}

// VendorPayableSvcFacade combines the payable cache operations.
type VendorPayableSvcFacade interface {
	VendorPayableUpdater

	// RebuildVendorPayables recomputes the cache from posted vouchers, overwrites it and
	// returns the vendors whose cached balance drifted.
	RebuildVendorPayables(ctx context.Context, vendorID string, actorID string) ([]domain.VendorPayableDrift, error)
}
