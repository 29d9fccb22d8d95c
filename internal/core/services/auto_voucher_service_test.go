package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/SscSPs/marketplace_ledger/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderConfirmed(orderID string) domain.OrderConfirmed {
	return domain.OrderConfirmed{
		OrderID:        orderID,
		VendorID:       vendorID,
		Amount:         dec("1000"),
		CommissionRate: dec("10"),
		Date:           testNow,
	}
}

func payment(paymentID string, amount string) *domain.PaymentReceived {
	return &domain.PaymentReceived{
		PaymentID:      paymentID,
		OrderID:        "o-" + paymentID,
		VendorID:       vendorID,
		Amount:         dec(amount),
		CommissionRate: dec("10"),
		Date:           testNow,
	}
}

func countVouchers(t *testing.T, f *ledgerFixture) int {
	t.Helper()
	_, total, err := f.svc.Voucher.ListVouchers(f.ctx, domain.VoucherFilter{}, domain.PageRequest{Page: 1, Limit: 1})
	require.NoError(t, err)
	return total
}

func payableBalance(t *testing.T, f *ledgerFixture) domain.VendorPayable {
	t.Helper()
	rows, err := f.svc.Reporting.VendorPayableReport(f.ctx, vendorID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]
}

func TestCreateAutoVoucher_OrderConfirmed(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)

	result, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, orderConfirmed("o-1"), adminActor)
	require.NoError(t, err)

	require.Len(t, result.Vouchers, 2)
	sales, commission := result.Vouchers[0], result.Vouchers[1]

	assert.Equal(t, domain.VoucherSales, sales.VoucherType)
	assert.Equal(t, domain.VendorEntity(vendorID), sales.Entity)
	assert.Equal(t, domain.VoucherPosted, sales.Status)
	assert.True(t, sales.IsAuto)
	require.NotNil(t, sales.EventType)
	assert.Equal(t, domain.EventOrderConfirmed, *sales.EventType)
	assert.True(t, sales.TotalDebit.Equal(dec("1000")))
	assert.True(t, sales.TotalCredit.Equal(dec("1000")))
	assert.Equal(t, "o-1", sales.SourceRef)

	assert.Equal(t, domain.VoucherCommission, commission.VoucherType)
	assert.True(t, commission.Entity.IsAdmin())
	assert.Equal(t, vendorID, commission.VendorID)
	assert.True(t, commission.TotalDebit.Equal(dec("100")))
	assert.True(t, commission.TotalCredit.Equal(dec("100")))

	require.Len(t, result.Commissions, 1)
	record := result.Commissions[0]
	assert.Equal(t, domain.CommissionRecognized, record.Status)
	assert.True(t, record.Amount.Equal(dec("100")))
	assert.Equal(t, commission.VoucherID, record.VoucherID)

	vendor := domain.VendorEntity(vendorID)
	assert.True(t, f.trialRow(vendor, f.account(vendor, domain.KeyCustomerReceivable, "").AccountID).Balance.Equal(dec("1000")))
	assert.True(t, f.trialRow(vendor, f.account(vendor, domain.KeySalesRevenue, "").AccountID).Balance.Equal(dec("1000")))
	admin := domain.AdminEntity()
	assert.True(t, f.trialRow(admin, f.account(admin, domain.KeyCommissionIncome, "").AccountID).Balance.Equal(dec("100")))

	p := payableBalance(t, f)
	assert.True(t, p.TotalSales.Equal(dec("1000")))
	assert.True(t, p.TotalCommission.Equal(dec("100")))
	assert.True(t, p.Balance.Equal(dec("900")))
	assert.EqualValues(t, 1, p.OrderCount)
}

func TestCreateAutoVoucher_ZeroCommissionBooksSaleOnly(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)
	ev := orderConfirmed("o-free")
	ev.CommissionRate = dec("0")

	result, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, &ev, adminActor)

	require.NoError(t, err)
	require.Len(t, result.Vouchers, 1)
	assert.Equal(t, domain.VoucherSales, result.Vouchers[0].VoucherType)
	assert.Empty(t, result.Commissions)
}

func TestCreateAutoVoucher_ReplayIsRejected(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)

	_, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, orderConfirmed("o-1"), adminActor)
	require.NoError(t, err)
	before := countVouchers(t, f)

	_, err = f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, orderConfirmed("o-1"), adminActor)

	assert.ErrorIs(t, err, apperrors.ErrEventAlreadyProcessed)
	assert.Equal(t, "EVENT_ALREADY_PROCESSED", apperrors.Kind(err))
	assert.Equal(t, before, countVouchers(t, f))
}

func TestCreateAutoVoucher_UnprovisionedVendorRollsBack(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision()

	_, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, orderConfirmed("o-1"), adminActor)

	require.ErrorIs(t, err, apperrors.ErrAccountResolution)
	assert.Zero(t, countVouchers(t, f))

	// the failed attempt must not have consumed the event
	f.provision(vendorID)
	_, err = f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, orderConfirmed("o-1"), adminActor)
	assert.NoError(t, err)
}

func TestCreateAutoVoucher_InvalidPayloads(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)

	tests := []struct {
		name string
		ev   domain.AccountingEvent
	}{
		{"nil event", nil},
		{"missing order id", domain.OrderConfirmed{VendorID: vendorID, Amount: dec("10"), CommissionRate: dec("5")}},
		{"zero amount", domain.OrderConfirmed{OrderID: "o", VendorID: vendorID, Amount: dec("0"), CommissionRate: dec("5")}},
		{"rate above 100", domain.OrderConfirmed{OrderID: "o", VendorID: vendorID, Amount: dec("10"), CommissionRate: dec("101")}},
		{"negative cost", domain.OrderDelivered{OrderID: "o", VendorID: vendorID, CostAmount: dec("-1")}},
		{"negative fee", domain.SettlementReceived{SettlementID: "s", PaymentIDs: []string{"p"}, GatewayFee: dec("-1")}},
		{"no payments", domain.SettlementReceived{SettlementID: "s", GatewayFee: dec("0")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, tt.ev, adminActor)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
	assert.Zero(t, countVouchers(t, f))
}

func TestCreateAutoVoucher_OrderDelivered(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)

	result, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, domain.OrderDelivered{
		OrderID: "o-1", VendorID: vendorID, CostAmount: dec("600"),
	}, adminActor)

	require.NoError(t, err)
	require.Len(t, result.Vouchers, 1)
	v := result.Vouchers[0]
	assert.Equal(t, domain.VoucherDelivery, v.VoucherType)
	assert.Equal(t, testNow.Truncate(24*time.Hour), v.VoucherDate, "a missing event date books on today")
	vendor := domain.VendorEntity(vendorID)
	assert.True(t, f.trialRow(vendor, f.account(vendor, domain.KeyCostOfGoodsSold, "").AccountID).Balance.Equal(dec("600")))
	assert.True(t, f.trialRow(vendor, f.account(vendor, domain.KeyInventory, "").AccountID).Balance.Equal(dec("-600")))
}

func TestCreateAutoVoucher_PaymentThenSettlement(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)
	admin := domain.AdminEntity()
	vendor := domain.VendorEntity(vendorID)

	paid, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, payment("p-1", "1000"), adminActor)
	require.NoError(t, err)
	require.Len(t, paid.Vouchers, 2)
	assert.True(t, paid.Vouchers[0].Entity.IsAdmin())
	assert.Equal(t, domain.VoucherReceipt, paid.Vouchers[0].VoucherType)
	assert.Equal(t, vendor, paid.Vouchers[1].Entity)
	assert.True(t, f.trialRow(vendor, f.account(vendor, domain.KeyPlatformReceivable, "").AccountID).Balance.Equal(dec("900")))
	assert.True(t, f.trialRow(vendor, f.account(vendor, domain.KeyCommissionExpense, "").AccountID).Balance.Equal(dec("100")))

	_, err = f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, payment("p-2", "500"), adminActor)
	require.NoError(t, err)

	settled, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, domain.SettlementReceived{
		SettlementID: "s-1",
		PaymentIDs:   []string{"p-1", "p-2"},
		GatewayFee:   dec("30"),
		Date:         testNow,
	}, adminActor)
	require.NoError(t, err)
	require.Len(t, settled.Vouchers, 1)
	st := settled.Vouchers[0]
	assert.Equal(t, domain.VoucherSettlement, st.VoucherType)
	assert.True(t, st.TotalDebit.Equal(dec("3000")))

	assert.True(t, f.trialRow(admin, f.account(admin, domain.KeyPlatformBank, "").AccountID).Balance.Equal(dec("1470")))
	assert.True(t, f.trialRow(admin, f.account(admin, domain.KeyGatewayFees, "").AccountID).Balance.Equal(dec("30")))
	assert.True(t, f.trialRow(admin, f.account(admin, domain.KeyGatewayClearing, "").AccountID).Balance.IsZero())
	assert.True(t, f.trialRow(admin, f.account(admin, domain.KeyCustomerAdvances, "").AccountID).Balance.IsZero())
	assert.True(t, f.trialRow(admin, f.account(admin, domain.KeyVendorPayable, vendorID).AccountID).Balance.Equal(dec("1350")))
	assert.True(t, f.trialRow(admin, f.account(admin, domain.KeyCommissionReceivable, "").AccountID).Balance.Equal(dec("-150")))

	tb, err := f.svc.Reporting.TrialBalance(f.ctx, admin, nil)
	require.NoError(t, err)
	assert.True(t, tb.Difference.IsZero())

	_, err = f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, domain.SettlementReceived{
		SettlementID: "s-2", PaymentIDs: []string{"p-1"}, GatewayFee: dec("0"),
	}, adminActor)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState, "a settled payment cannot settle again")
}

func TestCreateAutoVoucher_SettlementRejections(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)
	_, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, payment("p-1", "100"), adminActor)
	require.NoError(t, err)
	before := countVouchers(t, f)

	tests := []struct {
		name    string
		ids     []string
		fee     string
		wantErr error
	}{
		{"unknown payment", []string{"p-1", "p-404"}, "0", apperrors.ErrNotFound},
		{"payment listed twice", []string{"p-1", "p-1"}, "0", apperrors.ErrValidation},
		{"fee above gross", []string{"p-1"}, "100.01", apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, domain.SettlementReceived{
				SettlementID: "s-" + tt.name, PaymentIDs: tt.ids, GatewayFee: dec(tt.fee),
			}, adminActor)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, before, countVouchers(t, f))
}

func TestCreateAutoVoucher_PayoutAndRefundMovePayables(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)
	_, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, orderConfirmed("o-1"), adminActor)
	require.NoError(t, err)

	payout, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, domain.VendorPayout{
		PayoutID: "po-1", VendorID: vendorID, Amount: dec("400"),
	}, adminActor)
	require.NoError(t, err)
	require.Len(t, payout.Vouchers, 2)
	assert.Equal(t, domain.VoucherPayout, payout.Vouchers[0].VoucherType)

	refund, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, domain.RefundInitiated{
		RefundID: "r-1", OrderID: "o-1", VendorID: vendorID, Amount: dec("50"),
	}, adminActor)
	require.NoError(t, err)
	require.Len(t, refund.Vouchers, 2)

	p := payableBalance(t, f)
	assert.True(t, p.TotalPaid.Equal(dec("400")))
	assert.True(t, p.TotalRefunds.Equal(dec("50")))
	assert.True(t, p.Balance.Equal(dec("450")))
	assert.Equal(t, refund.Vouchers[1].VoucherID, p.LastVoucherID)

	// reversing the payout puts the amount back
	_, err = f.svc.Voucher.ReverseVoucher(f.ctx, payout.Vouchers[0].VoucherID, "bounced transfer", nil, adminActor)
	require.NoError(t, err)
	assert.True(t, payableBalance(t, f).Balance.Equal(dec("850")))
}

func TestReverseCommissionVoucher_MarksRecordReversed(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)
	result, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, orderConfirmed("o-1"), adminActor)
	require.NoError(t, err)

	_, err = f.svc.Voucher.ReverseVoucher(f.ctx, result.Vouchers[1].VoucherID, "commission waived", nil, adminActor)
	require.NoError(t, err)

	records, total, err := f.svc.Reporting.ListCommissions(f.ctx, vendorID, domain.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, domain.CommissionReversed, records[0].Status)
	assert.True(t, payableBalance(t, f).Balance.Equal(dec("1000")))
}

func TestAutoVouchers_CannotBeLocked(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)
	result, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, orderConfirmed("o-1"), adminActor)
	require.NoError(t, err)

	_, err = f.svc.Voucher.LockVoucher(f.ctx, result.Vouchers[1].VoucherID, adminActor)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestSupportedEvents(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	assert.Equal(t, domain.AllEventTypes, f.svc.AutoVoucher.SupportedEvents())
}

func TestEventValidator_DecimalTags(t *testing.T) {
	v := services.NewEventValidator()
	ok := domain.VendorPayout{PayoutID: "p", VendorID: vendorID, Amount: dec("0.01")}
	assert.NoError(t, v.Struct(ok))

	bad := ok
	bad.Amount = dec("0")
	assert.Error(t, v.Struct(bad))

	bad.Amount = dec("0.00001")
	assert.Error(t, v.Struct(bad))
}

func TestCreateAutoVoucher_RejectsAmountsBeyondStoredScale(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision(vendorID)

	tests := []struct {
		name string
		ev   domain.AccountingEvent
	}{
		{"amount", domain.OrderConfirmed{OrderID: "o-1", VendorID: vendorID, Amount: dec("10.00001"), CommissionRate: dec("5")}},
		{"commission rate", domain.OrderConfirmed{OrderID: "o-2", VendorID: vendorID, Amount: dec("10"), CommissionRate: dec("5.00001")}},
		{"gateway fee", domain.SettlementReceived{SettlementID: "s", PaymentIDs: []string{"p"}, GatewayFee: dec("0.00001")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AutoVoucher.CreateAutoVoucher(f.ctx, tt.ev, adminActor)
			assert.ErrorIs(t, err, apperrors.ErrMalformedEntry)
			assert.Equal(t, "MALFORMED_ENTRY", apperrors.Kind(err))
		})
	}
	assert.Zero(t, countVouchers(t, f))
}
