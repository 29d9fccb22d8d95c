package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (r *repos) InsertLedgerEntries(_ context.Context, entries []domain.LedgerEntry) error {
	return r.write(func(st *state) error {
		st.ledger = append(st.ledger, entries...)
		return nil
	})
}

func (r *repos) ListLedgerEntriesByVoucher(_ context.Context, voucherID string) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	r.read(func(st *state) {
		for _, le := range st.ledger {
			if le.VoucherID == voucherID {
				out = append(out, le)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, nil
}

func (r *repos) ListLedgerLines(_ context.Context, filter domain.LedgerFilter, limit int, offset int) ([]domain.LedgerLine, int, error) {
	var all []domain.LedgerLine
	r.read(func(st *state) {
		for _, le := range st.ledger {
			if le.Entity != filter.Entity {
				continue
			}
			if filter.AccountID != "" && le.AccountID != filter.AccountID {
				continue
			}
			if filter.VoucherID != "" && le.VoucherID != filter.VoucherID {
				continue
			}
			if !inWindow(le.EntryDate, filter.From, filter.To) {
				continue
			}
			v := st.vouchers[le.VoucherID]
			acc := st.accounts[le.AccountID]
			all = append(all, domain.LedgerLine{
				LedgerEntry:   le,
				VoucherNumber: v.VoucherNumber,
				Narration:     v.Narration,
				AccountCode:   acc.Code,
				AccountName:   acc.Name,
			})
		}
	})
	sort.Slice(all, func(i, j int) bool { return ledgerLineAfter(all[i], all[j]) })
	return paginate(all, limit, offset), len(all), nil
}

// ledgerLineAfter orders lines newest first: entry date, creation time, voucher number, line.
func ledgerLineAfter(a, b domain.LedgerLine) bool {
	if !a.EntryDate.Equal(b.EntryDate) {
		return a.EntryDate.After(b.EntryDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if a.VoucherNumber != b.VoucherNumber {
		return a.VoucherNumber > b.VoucherNumber
	}
	return a.LineNo > b.LineNo
}

func (r *repos) SumPostedVoucherLedgers(_ context.Context, entity *domain.EntityRef) ([]domain.VoucherLedgerTotals, error) {
	var out []domain.VoucherLedgerTotals
	r.read(func(st *state) {
		sums := make(map[string]*domain.VoucherLedgerTotals)
		for id, v := range st.vouchers {
			if v.Status != domain.VoucherPosted && v.Status != domain.VoucherReversed {
				continue
			}
			if entity != nil && v.Entity != *entity {
				continue
			}
			sums[id] = &domain.VoucherLedgerTotals{
				Voucher:    v,
				Debit:      decimal.Zero,
				Credit:     decimal.Zero,
				DraftsLeft: len(st.drafts[id]),
			}
		}
		for _, le := range st.ledger {
			if t, ok := sums[le.VoucherID]; ok {
				t.Debit = t.Debit.Add(le.Debit)
				t.Credit = t.Credit.Add(le.Credit)
			}
		}
		for _, t := range sums {
			out = append(out, *t)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Voucher.VoucherNumber < out[j].Voucher.VoucherNumber })
	return out, nil
}

func (r *repos) GetAccountTotals(_ context.Context, entity domain.EntityRef, from *time.Time, to time.Time, activeOnly bool) ([]domain.AccountTotals, error) {
	var out []domain.AccountTotals
	r.read(func(st *state) {
		idx := make(map[string]int)
		for _, acc := range st.accounts {
			if acc.Entity != entity || (activeOnly && !acc.IsActive) {
				continue
			}
			idx[acc.AccountID] = len(out)
			out = append(out, domain.AccountTotals{Account: acc, Debit: decimal.Zero, Credit: decimal.Zero})
		}
		for _, le := range st.ledger {
			i, ok := idx[le.AccountID]
			if !ok || !inWindow(le.EntryDate, from, &to) {
				continue
			}
			out[i].Debit = out[i].Debit.Add(le.Debit)
			out[i].Credit = out[i].Credit.Add(le.Credit)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Account.Code < out[j].Account.Code })
	return out, nil
}
