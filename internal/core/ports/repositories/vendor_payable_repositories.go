package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// VendorPayableReader defines read operations for the vendor payable cache
type VendorPayableReader interface {
	FindVendorPayable(ctx context.Context, vendorID string) (*domain.VendorPayable, error)
	ListVendorPayables(ctx context.Context) ([]domain.VendorPayable, error)
}

// VendorPayableWriter defines write operations for the vendor payable cache
type VendorPayableWriter interface {
	// ApplyVendorPayableDelta adds the delta to the vendor's row, creating it when missing.
	ApplyVendorPayableDelta(ctx context.Context, delta domain.VendorPayableDelta, at time.Time) error

	// SaveVendorPayable overwrites the vendor's row.
	SaveVendorPayable(ctx context.Context, payable domain.VendorPayable) error
}

// VendorPayableRepositoryFacade combines all vendor payable repository interfaces
type VendorPayableRepositoryFacade interface {
	VendorPayableReader
	VendorPayableWriter
}
