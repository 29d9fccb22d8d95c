package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionStatus tracks a commission record.
type CommissionStatus string

const (
	CommissionRecognized CommissionStatus = "RECOGNIZED"
	CommissionReversed   CommissionStatus = "REVERSED"
)

// CommissionRecord is one commission-generating event and the voucher that booked it.
type CommissionRecord struct {
	CommissionID string           `json:"commissionID"`
	OrderID      string           `json:"orderID"`
	VendorID     string           `json:"vendorID"`
	OrderAmount  decimal.Decimal  `json:"orderAmount"`
	Rate         decimal.Decimal  `json:"rate"`
	Amount       decimal.Decimal  `json:"amount"`
	VoucherID    string           `json:"voucherID"`
	Status       CommissionStatus `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// PaymentStatus tracks a captured payment until the gateway settles it.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSettled PaymentStatus = "SETTLED"
)

// PaymentTransaction is a captured customer payment awaiting settlement.
type PaymentTransaction struct {
	PaymentID    string          `json:"paymentID"`
	OrderID      string          `json:"orderID"`
	VendorID     string          `json:"vendorID"`
	Amount       decimal.Decimal `json:"amount"`
	Commission   decimal.Decimal `json:"commission"`
	Status       PaymentStatus   `json:"status"`
	SettlementID *string         `json:"settlementID,omitempty"`
	SettledAt    *time.Time      `json:"settledAt,omitempty"`
	VoucherID    string          `json:"voucherID"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// NetAmount is what the vendor is owed for the payment.
func (p PaymentTransaction) NetAmount() decimal.Decimal {
	return p.Amount.Sub(p.Commission)
}
