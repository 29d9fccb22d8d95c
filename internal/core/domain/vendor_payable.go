package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VendorPayable is the cached payable position of one vendor.
type VendorPayable struct {
	VendorID         string          `json:"vendorID"`
	TotalSales       decimal.Decimal `json:"totalSales"`
	TotalCommission  decimal.Decimal `json:"totalCommission"`
	TotalRefunds     decimal.Decimal `json:"totalRefunds"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	TotalPayable     decimal.Decimal `json:"totalPayable"`
	Balance          decimal.Decimal `json:"balance"`
	OrderCount       int64           `json:"orderCount"`
	LastVoucherID    string          `json:"lastVoucherID,omitempty"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	LastReconciledAt *time.Time      `json:"lastReconciledAt,omitempty"`
}

// VendorPayableDelta is an incremental change to a vendor's cached payable.
type VendorPayableDelta struct {
	VendorID   string
	Sales      decimal.Decimal
	Commission decimal.Decimal
	Refunds    decimal.Decimal
	Paid       decimal.Decimal
	Orders     int64
	VoucherID  string
}

// IsZero reports whether applying the delta would change nothing.
func (d VendorPayableDelta) IsZero() bool {
	return d.Sales.IsZero() && d.Commission.IsZero() && d.Refunds.IsZero() && d.Paid.IsZero() && d.Orders == 0
}

// Negate returns the opposite delta, used when a voucher is reversed.
func (d VendorPayableDelta) Negate() VendorPayableDelta {
	return VendorPayableDelta{
		VendorID:   d.VendorID,
		Sales:      d.Sales.Neg(),
		Commission: d.Commission.Neg(),
		Refunds:    d.Refunds.Neg(),
		Paid:       d.Paid.Neg(),
		Orders:     -d.Orders,
		VoucherID:  d.VoucherID,
	}
}

// Apply adds the delta and recomputes derived totals.
func (p *VendorPayable) Apply(d VendorPayableDelta, at time.Time) {
	p.TotalSales = p.TotalSales.Add(d.Sales)
	p.TotalCommission = p.TotalCommission.Add(d.Commission)
	p.TotalRefunds = p.TotalRefunds.Add(d.Refunds)
	p.TotalPaid = p.TotalPaid.Add(d.Paid)
	p.OrderCount += d.Orders
	p.Recompute()
	if d.VoucherID != "" {
		p.LastVoucherID = d.VoucherID
	}
	p.UpdatedAt = at
}

// Recompute refreshes TotalPayable and Balance from the running totals.
func (p *VendorPayable) Recompute() {
	p.TotalPayable = p.TotalSales.Sub(p.TotalCommission).Sub(p.TotalRefunds)
	p.Balance = p.TotalPayable.Sub(p.TotalPaid)
}

// DeltaForVoucher returns the payable change a posted voucher causes, and false when
// the voucher does not touch vendor payables. Reversal vouchers are handled by negating
// the original's delta.
func DeltaForVoucher(v Voucher) (VendorPayableDelta, bool) {
	d := VendorPayableDelta{VendorID: v.VendorID, VoucherID: v.VoucherID}
	switch {
	case v.VoucherType == VoucherSales && v.Entity.Type == EntityVendor:
		d.VendorID = v.Entity.ID
		d.Sales = v.TotalDebit
		d.Orders = 1
	case v.VoucherType == VoucherCommission && v.Entity.IsAdmin() && v.VendorID != "":
		d.Commission = v.TotalDebit
	case v.VoucherType == VoucherRefund && v.Entity.IsAdmin() && v.VendorID != "":
		d.Refunds = v.TotalDebit
	case v.VoucherType == VoucherPayout && v.Entity.IsAdmin() && v.VendorID != "":
		d.Paid = v.TotalDebit
	default:
		return VendorPayableDelta{}, false
	}
	return d, true
}

// VendorPayableDrift compares a cached snapshot with the one rebuilt from the ledger.
type VendorPayableDrift struct {
	VendorID string          `json:"vendorID"`
	Cached   decimal.Decimal `json:"cachedBalance"`
	Rebuilt  decimal.Decimal `json:"rebuiltBalance"`
	Drift    decimal.Decimal `json:"drift"`
}
