// Package accounting holds the pure double-entry arithmetic shared by services and repositories.
package accounting

import (
	"fmt"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MoneyScale is the number of decimal places every stored amount carries.
const MoneyScale = 4

// WithinScale reports whether d has no more than MoneyScale decimal places.
func WithinScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

// NatureBalance returns the balance of an account from its debit and credit sums:
// debit - credit for DEBIT natured accounts, credit - debit otherwise.
func NatureBalance(nature domain.Nature, debit, credit decimal.Decimal) decimal.Decimal {
	if nature == domain.DebitNature {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// ValidateEntries checks a requested entry set and returns its totals.
// Every entry must carry exactly one positive side with at most MoneyScale decimal
// places, the total must be non-zero and debits must equal credits.
func ValidateEntries(entries []domain.EntrySpec) (decimal.Decimal, decimal.Decimal, error) {
	if len(entries) == 0 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: voucher has no entries", apperrors.ErrMalformedEntry)
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, e := range entries {
		if e.AccountID == "" {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: line %d has no account", apperrors.ErrMalformedEntry, i+1)
		}
		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrMalformedEntry, i+1)
		}
		if e.Debit.IsPositive() == e.Credit.IsPositive() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: line %d must have exactly one of debit or credit", apperrors.ErrMalformedEntry, i+1)
		}
		if !WithinScale(e.Debit) || !WithinScale(e.Credit) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: line %d has more than %d decimal places", apperrors.ErrMalformedEntry, i+1, MoneyScale)
		}
		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
	}

	if totalDebit.IsZero() && totalCredit.IsZero() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: voucher total is zero", apperrors.ErrZeroAmount)
	}
	if !totalDebit.Equal(totalCredit) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalancedVoucher, totalDebit.String(), totalCredit.String())
	}
	return totalDebit, totalCredit, nil
}

// CommissionAmount is amount * rate / 100, rounded half away from zero to 2 places.
func CommissionAmount(amount, ratePercent decimal.Decimal) decimal.Decimal {
	return amount.Mul(ratePercent).Div(hundred).Round(2)
}

// ReversalEntries mirrors posted ledger entries with the sides swapped.
func ReversalEntries(entries []domain.LedgerEntry) []domain.EntrySpec {
	out := make([]domain.EntrySpec, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.EntrySpec{
			AccountID:  e.AccountID,
			Debit:      e.Credit,
			Credit:     e.Debit,
			CostCenter: e.CostCenter,
			Department: e.Department,
			Reference:  e.Reference,
		})
	}
	return out
}

// Dr is a debit line.
func Dr(accountID string, amount decimal.Decimal) domain.EntrySpec {
	return domain.EntrySpec{AccountID: accountID, Debit: amount, Credit: decimal.Zero}
}

// Cr is a credit line.
func Cr(accountID string, amount decimal.Decimal) domain.EntrySpec {
	return domain.EntrySpec{AccountID: accountID, Debit: decimal.Zero, Credit: amount}
}
