package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

func loadVoucher(st *state, voucherID string) (*domain.Voucher, error) {
	v, ok := st.vouchers[voucherID]
	if !ok {
		return nil, fmt.Errorf("%w: voucher %s", apperrors.ErrNotFound, voucherID)
	}
	v.Entries = append([]domain.DraftEntry(nil), st.drafts[voucherID]...)
	v.LedgerEntries = nil
	for _, le := range st.ledger {
		if le.VoucherID == voucherID {
			v.LedgerEntries = append(v.LedgerEntries, le)
		}
	}
	sort.Slice(v.LedgerEntries, func(i, j int) bool { return v.LedgerEntries[i].LineNo < v.LedgerEntries[j].LineNo })
	return &v, nil
}

func (r *repos) FindVoucherByID(_ context.Context, voucherID string) (*domain.Voucher, error) {
	var (
		v   *domain.Voucher
		err error
	)
	r.read(func(st *state) { v, err = loadVoucher(st, voucherID) })
	return v, err
}

// FindVoucherForUpdate needs no row lock here: transactions are already serialized.
func (r *repos) FindVoucherForUpdate(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	return r.FindVoucherByID(ctx, voucherID)
}

func voucherMatches(v domain.Voucher, f domain.VoucherFilter) bool {
	switch {
	case f.Entity != nil && v.Entity != *f.Entity:
		return false
	case f.Status != nil && v.Status != *f.Status:
		return false
	case f.VoucherType != nil && v.VoucherType != *f.VoucherType:
		return false
	case f.VendorID != "" && v.VendorID != f.VendorID:
		return false
	}
	return inWindow(v.VoucherDate, f.From, f.To)
}

func sortVouchersNewestFirst(vs []domain.Voucher) {
	sort.Slice(vs, func(i, j int) bool {
		if !vs[i].VoucherDate.Equal(vs[j].VoucherDate) {
			return vs[i].VoucherDate.After(vs[j].VoucherDate)
		}
		if !vs[i].CreatedAt.Equal(vs[j].CreatedAt) {
			return vs[i].CreatedAt.After(vs[j].CreatedAt)
		}
		return vs[i].VoucherNumber > vs[j].VoucherNumber
	})
}

func (r *repos) ListVouchers(_ context.Context, filter domain.VoucherFilter, limit int, offset int) ([]domain.Voucher, int, error) {
	var all []domain.Voucher
	r.read(func(st *state) {
		for _, v := range st.vouchers {
			if voucherMatches(v, filter) {
				all = append(all, v)
			}
		}
	})
	sortVouchersNewestFirst(all)
	return paginate(all, limit, offset), len(all), nil
}

func (r *repos) ListPostedVendorVouchers(_ context.Context, vendorID string) ([]domain.Voucher, error) {
	var out []domain.Voucher
	r.read(func(st *state) {
		for _, v := range st.vouchers {
			if v.Status != domain.VoucherPosted || v.VendorID == "" {
				continue
			}
			if vendorID != "" && v.VendorID != vendorID {
				continue
			}
			out = append(out, v)
		}
	})
	sortVouchersNewestFirst(out)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *repos) SaveVoucher(_ context.Context, voucher domain.Voucher) error {
	return r.write(func(st *state) error {
		if _, exists := st.vouchers[voucher.VoucherID]; exists {
			return fmt.Errorf("%w: voucher %s", apperrors.ErrDuplicate, voucher.VoucherID)
		}
		for _, v := range st.vouchers {
			if v.Entity == voucher.Entity && v.VoucherNumber == voucher.VoucherNumber {
				return fmt.Errorf("%w: voucher number %s in %s", apperrors.ErrDuplicate, voucher.VoucherNumber, voucher.Entity)
			}
		}
		drafts := append([]domain.DraftEntry(nil), voucher.Entries...)
		voucher.Entries = nil
		voucher.LedgerEntries = nil
		st.vouchers[voucher.VoucherID] = voucher
		if len(drafts) > 0 {
			st.drafts[voucher.VoucherID] = drafts
		}
		return nil
	})
}

func (r *repos) DeleteDraftEntries(_ context.Context, voucherID string) error {
	return r.write(func(st *state) error {
		delete(st.drafts, voucherID)
		return nil
	})
}

// transition applies fn to the voucher when guard accepts its current state.
func (r *repos) transition(voucherID string, guard func(domain.Voucher) bool, fn func(*domain.Voucher)) error {
	return r.write(func(st *state) error {
		v, ok := st.vouchers[voucherID]
		if !ok {
			return fmt.Errorf("%w: voucher %s", apperrors.ErrNotFound, voucherID)
		}
		if !guard(v) {
			return fmt.Errorf("%w: voucher %s is %s", apperrors.ErrInvalidState, v.VoucherNumber, v.Status)
		}
		fn(&v)
		st.vouchers[voucherID] = v
		return nil
	})
}

func (r *repos) MarkVoucherPosted(_ context.Context, voucherID string, actorID string, at time.Time) error {
	return r.transition(voucherID,
		func(v domain.Voucher) bool { return v.Status == domain.VoucherDraft && !v.IsLocked },
		func(v *domain.Voucher) {
			v.Status = domain.VoucherPosted
			v.PostedBy = &actorID
			v.PostedAt = &at
			v.Touch(actorID, at)
		})
}

func (r *repos) MarkVoucherLocked(_ context.Context, voucherID string, actorID string, at time.Time) error {
	return r.transition(voucherID,
		func(v domain.Voucher) bool { return v.Status == domain.VoucherPosted && !v.IsLocked },
		func(v *domain.Voucher) {
			v.IsLocked = true
			v.LockedBy = &actorID
			v.LockedAt = &at
			v.Touch(actorID, at)
		})
}

func (r *repos) MarkVoucherReversed(_ context.Context, voucherID string, reversedByID string, reason string, actorID string, at time.Time) error {
	return r.transition(voucherID,
		func(v domain.Voucher) bool {
			return v.Status == domain.VoucherPosted && !v.IsLocked && !v.IsReversed
		},
		func(v *domain.Voucher) {
			v.Status = domain.VoucherReversed
			v.IsReversed = true
			v.ReversedByID = &reversedByID
			v.ReversalReason = reason
			v.Touch(actorID, at)
		})
}

func (r *repos) MarkVoucherCancelled(_ context.Context, voucherID string, reason string, actorID string, at time.Time) error {
	return r.transition(voucherID,
		func(v domain.Voucher) bool { return v.Status == domain.VoucherDraft },
		func(v *domain.Voucher) {
			v.Status = domain.VoucherCancelled
			v.CancelledBy = &actorID
			v.CancelledAt = &at
			v.CancelReason = reason
			v.Touch(actorID, at)
		})
}
