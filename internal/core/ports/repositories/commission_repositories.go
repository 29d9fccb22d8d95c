package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// CommissionRepositoryFacade persists commission records
type CommissionRepositoryFacade interface {
	SaveCommission(ctx context.Context, record domain.CommissionRecord) error
	FindCommissionByVoucherID(ctx context.Context, voucherID string) (*domain.CommissionRecord, error)
	ListCommissions(ctx context.Context, vendorID string, limit int, offset int) ([]domain.CommissionRecord, int, error)
	UpdateCommissionStatus(ctx context.Context, commissionID string, status domain.CommissionStatus) error
}

// PaymentRepositoryFacade persists captured payments awaiting settlement
type PaymentRepositoryFacade interface {
	// SavePayment persists a payment. A clashing id returns apperrors.ErrDuplicate.
	SavePayment(ctx context.Context, payment domain.PaymentTransaction) error

	// FindPaymentsForUpdate loads and locks the payments. Missing ids are absent from the map.
	FindPaymentsForUpdate(ctx context.Context, paymentIDs []string) (map[string]domain.PaymentTransaction, error)

	// MarkPaymentsSettled flips PENDING payments to SETTLED.
	MarkPaymentsSettled(ctx context.Context, paymentIDs []string, settlementID string, at time.Time) error
}
