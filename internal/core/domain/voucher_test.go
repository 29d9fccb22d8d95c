package domain_test

import (
	"math"
	"testing"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatVoucherNumber(t *testing.T) {
	date := time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "SV25030007", domain.FormatVoucherNumber(domain.VoucherSales, date, 7))
	assert.Equal(t, "voucher:VENDOR:v1:SALES:2503",
		domain.VoucherSequenceScope(domain.VendorEntity("v1"), domain.VoucherSales, date))
}

func TestVoucher_Guards(t *testing.T) {
	draft := domain.Voucher{Status: domain.VoucherDraft, Entity: domain.AdminEntity()}
	posted := domain.Voucher{Status: domain.VoucherPosted, Entity: domain.AdminEntity()}
	vendorPosted := domain.Voucher{Status: domain.VoucherPosted, Entity: domain.VendorEntity("v1")}
	locked := domain.Voucher{Status: domain.VoucherPosted, Entity: domain.AdminEntity(), IsLocked: true}
	autoDraft := domain.Voucher{Status: domain.VoucherDraft, IsAuto: true}
	reversed := domain.Voucher{Status: domain.VoucherReversed, IsReversed: true}
	cancelled := domain.Voucher{Status: domain.VoucherCancelled}

	assert.NoError(t, draft.CanPost())
	assert.Error(t, posted.CanPost())
	assert.Error(t, cancelled.CanPost())

	assert.NoError(t, posted.CanLock())
	assert.Error(t, draft.CanLock())
	assert.Error(t, vendorPosted.CanLock())
	assert.Error(t, locked.CanLock())

	assert.NoError(t, posted.CanReverse())
	assert.Error(t, locked.CanReverse())
	assert.Error(t, reversed.CanReverse())
	assert.Error(t, draft.CanReverse())

	assert.NoError(t, draft.CanCancel())
	assert.Error(t, autoDraft.CanCancel())
	assert.Error(t, cancelled.CanCancel())
	assert.Error(t, posted.CanCancel())
}

func TestDeltaForVoucher(t *testing.T) {
	sales := domain.Voucher{
		VoucherID:   "v-sales",
		VoucherType: domain.VoucherSales,
		Entity:      domain.VendorEntity("vendor-1"),
		TotalDebit:  decimal.NewFromInt(1000),
	}
	d, ok := domain.DeltaForVoucher(sales)
	assert.True(t, ok)
	assert.Equal(t, "vendor-1", d.VendorID)
	assert.True(t, d.Sales.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, int64(1), d.Orders)

	payout := domain.Voucher{
		VoucherType: domain.VoucherPayout,
		Entity:      domain.AdminEntity(),
		VendorID:    "vendor-1",
		TotalDebit:  decimal.NewFromInt(300),
	}
	d, ok = domain.DeltaForVoucher(payout)
	assert.True(t, ok)
	assert.True(t, d.Paid.Equal(decimal.NewFromInt(300)))

	_, ok = domain.DeltaForVoucher(domain.Voucher{VoucherType: domain.VoucherJournal, Entity: domain.AdminEntity()})
	assert.False(t, ok)
}

func TestVendorPayable_ApplyAndNegate(t *testing.T) {
	now := time.Now()
	p := domain.VendorPayable{VendorID: "vendor-1"}
	p.Apply(domain.VendorPayableDelta{Sales: decimal.NewFromInt(1000), Orders: 1}, now)
	p.Apply(domain.VendorPayableDelta{Commission: decimal.NewFromInt(100)}, now)
	p.Apply(domain.VendorPayableDelta{Paid: decimal.NewFromInt(400)}, now)

	assert.True(t, p.TotalPayable.Equal(decimal.NewFromInt(900)))
	assert.True(t, p.Balance.Equal(decimal.NewFromInt(500)))

	refund := domain.VendorPayableDelta{Refunds: decimal.NewFromInt(50)}
	p.Apply(refund, now)
	p.Apply(refund.Negate(), now)
	assert.True(t, p.Balance.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, int64(1), p.OrderCount)
}

func TestAccountingPeriod_Overlaps(t *testing.T) {
	jan := domain.AccountingPeriod{
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, jan.Contains(time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)))
	assert.False(t, jan.Contains(jan.EndDate))
	assert.False(t, jan.Overlaps(jan.EndDate, jan.EndDate.AddDate(0, 1, 0)))
	assert.True(t, jan.Overlaps(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDecodeEvent(t *testing.T) {
	ev, err := domain.DecodeEvent(domain.EventOrderConfirmed,
		[]byte(`{"orderId":"o-1","vendorId":"v-1","amount":"1000","commissionRate":"10","date":"2025-03-01T00:00:00Z"}`))
	assert.NoError(t, err)
	oc, ok := ev.(*domain.OrderConfirmed)
	if assert.True(t, ok) {
		assert.Equal(t, "o-1", oc.SourceID())
		assert.True(t, oc.Amount.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, domain.EventOrderConfirmed, oc.EventType())
	}

	_, err = domain.DecodeEvent("ORDER_SHIPPED", []byte(`{}`))
	assert.Error(t, err)

	_, err = domain.DecodeEvent(domain.EventVendorPayout, []byte(`{"amount":`))
	assert.Error(t, err)
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, domain.PageRequest{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, domain.PageRequest{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, 0, domain.PageRequest{Page: 5}.Offset())
	assert.Equal(t, math.MaxInt32, domain.PageRequest{Page: math.MaxInt, Limit: 100}.Offset())
}
