package services_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func march(day int) time.Time {
	return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
}

// bookVendorMonth books a sale, its delivery and the customer payment for vendorID.
func bookVendorMonth(t *testing.T, f *ledgerFixture) {
	t.Helper()
	events := []domain.AccountingEvent{
		domain.OrderConfirmed{OrderID: "o-1", VendorID: vendorID, Amount: dec("1000"), CommissionRate: dec("10"), Date: march(3)},
		domain.OrderDelivered{OrderID: "o-1", VendorID: vendorID, CostAmount: dec("600"), Date: march(5)},
		domain.PaymentReceived{PaymentID: "p-1", OrderID: "o-1", VendorID: vendorID, Amount: dec("1000"), CommissionRate: dec("10"), Date: march(6)},
	}
	for _, ev := range events {
		_, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, ev, adminActor)
		require.NoError(t, err)
	}
}

func TestTrialBalance(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)
	bookVendorMonth(t, f)
	vendor := domain.VendorEntity(vendorID)

	tb, err := f.svc.Reporting.TrialBalance(f.ctx, vendor, nil)
	require.NoError(t, err)

	assert.Len(t, tb.Rows, len(domain.VendorSystemAccounts))
	assert.True(t, tb.TotalDebit.Equal(dec("2600")))
	assert.True(t, tb.TotalCredit.Equal(dec("2600")))
	assert.True(t, tb.Difference.IsZero())
	for i := 1; i < len(tb.Rows); i++ {
		assert.Less(t, tb.Rows[i-1].AccountCode, tb.Rows[i].AccountCode, "rows are ordered by account code")
	}

	asOf := march(4)
	early, err := f.svc.Reporting.TrialBalance(f.ctx, vendor, &asOf)
	require.NoError(t, err)
	assert.True(t, early.TotalDebit.Equal(dec("1000")), "only the sale is dated on or before the 4th")
	assert.Equal(t, asOf, early.AsOf)

	_, err = f.svc.Reporting.TrialBalance(f.ctx, domain.EntityRef{Type: "BROKER"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestProfitAndLoss(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)
	bookVendorMonth(t, f)
	vendor := domain.VendorEntity(vendorID)

	pl, err := f.svc.Reporting.ProfitAndLoss(f.ctx, vendor, march(1), march(31))
	require.NoError(t, err)

	require.Len(t, pl.Income, 1)
	assert.True(t, pl.TotalIncome.Equal(dec("1000")))
	assert.Len(t, pl.Expenses, 2, "accounts without movement are left out")
	assert.True(t, pl.TotalExpense.Equal(dec("700")))
	assert.True(t, pl.NetProfit.Equal(dec("300")))

	narrow, err := f.svc.Reporting.ProfitAndLoss(f.ctx, vendor, march(4), march(5))
	require.NoError(t, err)
	assert.Empty(t, narrow.Income)
	assert.True(t, narrow.NetProfit.Equal(dec("-600")))

	_, err = f.svc.Reporting.ProfitAndLoss(f.ctx, vendor, march(5), march(4))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBalanceSheet_FoldsRetainedEarnings(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)
	bookVendorMonth(t, f)

	bs, err := f.svc.Reporting.BalanceSheet(f.ctx, domain.VendorEntity(vendorID), nil)
	require.NoError(t, err)

	assert.True(t, bs.TotalAssets.Equal(dec("300")))
	assert.True(t, bs.TotalLiabilities.IsZero())
	assert.True(t, bs.TotalEquity.IsZero())
	assert.True(t, bs.RetainedEarnings.Equal(dec("300")))
	assert.True(t, bs.Difference.IsZero())

	admin, err := f.svc.Reporting.BalanceSheet(f.ctx, domain.AdminEntity(), nil)
	require.NoError(t, err)
	assert.True(t, admin.Difference.IsZero())
	assert.True(t, admin.RetainedEarnings.Equal(dec("100")), "commission income")
}

func TestLedger_RunningBalance(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision()
	admin := domain.AdminEntity()
	bank := f.account(admin, domain.KeyPlatformBank, "")
	equity := f.account(admin, domain.KeyOwnerEquity, "")

	postings := []struct {
		day          int
		debit, credit string
	}{
		{10, "100", "0"},
		{11, "50", "0"},
		{12, "0", "30"},
	}
	for _, p := range postings {
		v, err := f.svc.Voucher.CreateVoucher(f.ctx, domain.VoucherSpec{
			Entity:      admin,
			VoucherType: domain.VoucherJournal,
			VoucherDate: march(p.day),
			Entries: []domain.EntrySpec{
				entry(bank.AccountID, p.debit, p.credit),
				entry(equity.AccountID, p.credit, p.debit),
			},
		}, adminActor)
		require.NoError(t, err)
		_, err = f.svc.Voucher.PostVoucher(f.ctx, v.VoucherID, adminActor)
		require.NoError(t, err)
	}

	lines, total, err := f.svc.Reporting.Ledger(f.ctx, domain.LedgerFilter{Entity: admin, AccountID: bank.AccountID}, domain.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, 3, total)
	require.Len(t, lines, 3)
	assert.Equal(t, march(12), lines[0].EntryDate, "newest first")
	assert.True(t, lines[0].RunningBalance.Equal(dec("120")))
	assert.True(t, lines[1].RunningBalance.Equal(dec("150")))
	assert.True(t, lines[2].RunningBalance.Equal(dec("100")))
	assert.Equal(t, bank.Code, lines[0].AccountCode)

	from, to := march(11), march(11)
	window, total, err := f.svc.Reporting.Ledger(f.ctx, domain.LedgerFilter{Entity: admin, AccountID: bank.AccountID, From: &from, To: &to}, domain.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, window, 1)
	assert.True(t, window[0].RunningBalance.Equal(dec("50")))

	empty, _, err := f.svc.Reporting.Ledger(f.ctx, domain.LedgerFilter{Entity: domain.VendorEntity("nobody")}, domain.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

// sameJSON asserts that two report values serialize identically.
func sameJSON(t *testing.T, first, second any, report string) {
	t.Helper()
	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b), report)
}

func TestReports_RepeatedReadsAreIdentical(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)
	bookVendorMonth(t, f)
	vendor := domain.VendorEntity(vendorID)
	asOf := march(31)

	tests := []struct {
		name      string
		reporting portssvc.ReportingSvc
	}{
		{"direct", f.svc.Reporting},
		{"cached", services.NewCachedReportingService(f.svc.Reporting, newReportCache(t), services.WithClock(func() time.Time { return testNow }))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, at := range []*time.Time{nil, &asOf} {
				tb1, err := tt.reporting.TrialBalance(f.ctx, vendor, at)
				require.NoError(t, err)
				tb2, err := tt.reporting.TrialBalance(f.ctx, vendor, at)
				require.NoError(t, err)
				sameJSON(t, tb1, tb2, "trial balance")

				bs1, err := tt.reporting.BalanceSheet(f.ctx, vendor, at)
				require.NoError(t, err)
				bs2, err := tt.reporting.BalanceSheet(f.ctx, vendor, at)
				require.NoError(t, err)
				sameJSON(t, bs1, bs2, "balance sheet")
			}

			pl1, err := tt.reporting.ProfitAndLoss(f.ctx, vendor, march(1), march(31))
			require.NoError(t, err)
			pl2, err := tt.reporting.ProfitAndLoss(f.ctx, vendor, march(1), march(31))
			require.NoError(t, err)
			sameJSON(t, pl1, pl2, "profit and loss")

			filter := domain.LedgerFilter{Entity: vendor}
			page := domain.PageRequest{Page: 1, Limit: 50}
			l1, n1, err := tt.reporting.Ledger(f.ctx, filter, page)
			require.NoError(t, err)
			l2, n2, err := tt.reporting.Ledger(f.ctx, filter, page)
			require.NoError(t, err)
			assert.Equal(t, n1, n2)
			assert.NotEmpty(t, l1)
			sameJSON(t, l1, l2, "ledger")
		})
	}
}

func TestRebuildVendorPayables_CorrectsDrift(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)
	bookVendorMonth(t, f)

	drifts, err := f.svc.VendorPayable.RebuildVendorPayables(f.ctx, "", adminActor)
	require.NoError(t, err)
	assert.Empty(t, drifts, "a consistent cache does not drift")

	require.NoError(t, f.repos.VendorPayableRepo.SaveVendorPayable(f.ctx, domain.VendorPayable{
		VendorID: vendorID, Balance: dec("5"),
	}))

	drifts, err = f.svc.VendorPayable.RebuildVendorPayables(f.ctx, vendorID, adminActor)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, vendorID, drifts[0].VendorID)
	assert.True(t, drifts[0].Cached.Equal(dec("5")))
	assert.True(t, drifts[0].Rebuilt.Equal(dec("900")))
	assert.True(t, drifts[0].Drift.Equal(dec("895")))

	p := payableBalance(t, f)
	assert.True(t, p.Balance.Equal(dec("900")))
	require.NotNil(t, p.LastReconciledAt)
	assert.Equal(t, testNow, *p.LastReconciledAt)

	logs, _, err := f.svc.Audit.ListAuditLogs(f.ctx, domain.AuditFilter{Action: domain.AuditPayablesRebuilt}, domain.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestCheckIntegrity(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)
	bookVendorMonth(t, f)

	issues, err := f.svc.Integrity.CheckIntegrity(f.ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, issues)

	admin := domain.AdminEntity()
	vouchers, _, err := f.svc.Voucher.ListVouchers(f.ctx, domain.VoucherFilter{Entity: &admin}, domain.PageRequest{Page: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, vouchers, 1)
	target := vouchers[0]

	require.NoError(t, f.repos.LedgerRepo.InsertLedgerEntries(f.ctx, []domain.LedgerEntry{{
		EntryID:   "stray",
		VoucherID: target.VoucherID,
		LineNo:    99,
		Entity:    admin,
		AccountID: f.account(admin, domain.KeyPlatformBank, "").AccountID,
		EntryDate: target.VoucherDate,
		Debit:     dec("1"),
		Credit:    dec("0"),
	}}))

	issues, err = f.svc.Integrity.CheckIntegrity(f.ctx, &admin)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, target.VoucherID, issues[0].VoucherID)
	assert.Equal(t, "ledger entries are unbalanced", issues[0].Problem)

	vendor := domain.VendorEntity(vendorID)
	issues, err = f.svc.Integrity.CheckIntegrity(f.ctx, &vendor)
	require.NoError(t, err)
	assert.Empty(t, issues)
}
