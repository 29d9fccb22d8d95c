package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

func (r *repos) SaveCommission(_ context.Context, record domain.CommissionRecord) error {
	return r.write(func(st *state) error {
		if _, exists := st.commissions[record.CommissionID]; exists {
			return fmt.Errorf("%w: commission %s", apperrors.ErrDuplicate, record.CommissionID)
		}
		st.commissions[record.CommissionID] = record
		return nil
	})
}

func (r *repos) FindCommissionByVoucherID(_ context.Context, voucherID string) (*domain.CommissionRecord, error) {
	var found *domain.CommissionRecord
	r.read(func(st *state) {
		for _, c := range st.commissions {
			if c.VoucherID == voucherID {
				rec := c
				found = &rec
				return
			}
		}
	})
	if found == nil {
		return nil, fmt.Errorf("%w: commission for voucher %s", apperrors.ErrNotFound, voucherID)
	}
	return found, nil
}

func (r *repos) ListCommissions(_ context.Context, vendorID string, limit int, offset int) ([]domain.CommissionRecord, int, error) {
	var all []domain.CommissionRecord
	r.read(func(st *state) {
		for _, c := range st.commissions {
			if vendorID == "" || c.VendorID == vendorID {
				all = append(all, c)
			}
		}
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].OrderID > all[j].OrderID
	})
	return paginate(all, limit, offset), len(all), nil
}

func (r *repos) UpdateCommissionStatus(_ context.Context, commissionID string, status domain.CommissionStatus) error {
	return r.write(func(st *state) error {
		c, ok := st.commissions[commissionID]
		if !ok {
			return fmt.Errorf("%w: commission %s", apperrors.ErrNotFound, commissionID)
		}
		c.Status = status
		st.commissions[commissionID] = c
		return nil
	})
}

func (r *repos) SavePayment(_ context.Context, payment domain.PaymentTransaction) error {
	return r.write(func(st *state) error {
		if _, exists := st.payments[payment.PaymentID]; exists {
			return fmt.Errorf("%w: payment %s", apperrors.ErrDuplicate, payment.PaymentID)
		}
		st.payments[payment.PaymentID] = payment
		return nil
	})
}

func (r *repos) FindPaymentsForUpdate(_ context.Context, paymentIDs []string) (map[string]domain.PaymentTransaction, error) {
	out := make(map[string]domain.PaymentTransaction, len(paymentIDs))
	r.read(func(st *state) {
		for _, id := range paymentIDs {
			if p, ok := st.payments[id]; ok {
				out[id] = p
			}
		}
	})
	return out, nil
}

func (r *repos) MarkPaymentsSettled(_ context.Context, paymentIDs []string, settlementID string, at time.Time) error {
	return r.write(func(st *state) error {
		for _, id := range paymentIDs {
			p, ok := st.payments[id]
			if !ok {
				return fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, id)
			}
			if p.Status != domain.PaymentPending {
				return fmt.Errorf("%w: payment %s is %s", apperrors.ErrInvalidState, id, p.Status)
			}
		}
		for _, id := range paymentIDs {
			p := st.payments[id]
			p.Status = domain.PaymentSettled
			p.SettlementID = &settlementID
			p.SettledAt = &at
			st.payments[id] = p
		}
		return nil
	})
}
