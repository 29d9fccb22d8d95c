package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EventType is the closed set of marketplace events the auto-voucher engine books.
type EventType string

const (
	EventOrderConfirmed     EventType = "ORDER_CONFIRMED"
	EventOrderDelivered     EventType = "ORDER_DELIVERED"
	EventPaymentReceived    EventType = "PAYMENT_RECEIVED"
	EventSettlementReceived EventType = "SETTLEMENT_RECEIVED"
	EventVendorPayout       EventType = "VENDOR_PAYOUT"
	EventRefundInitiated    EventType = "REFUND_INITIATED"
)

// AllEventTypes lists every supported event type.
var AllEventTypes = []EventType{
	EventOrderConfirmed,
	EventOrderDelivered,
	EventPaymentReceived,
	EventSettlementReceived,
	EventVendorPayout,
	EventRefundInitiated,
}

// IsValid reports whether t is a supported event type.
func (t EventType) IsValid() bool {
	_, ok := eventFactories[t]
	return ok
}

var eventFactories = map[EventType]func() AccountingEvent{
	EventOrderConfirmed:     func() AccountingEvent { return &OrderConfirmed{} },
	EventOrderDelivered:     func() AccountingEvent { return &OrderDelivered{} },
	EventPaymentReceived:    func() AccountingEvent { return &PaymentReceived{} },
	EventSettlementReceived: func() AccountingEvent { return &SettlementReceived{} },
	EventVendorPayout:       func() AccountingEvent { return &VendorPayout{} },
	EventRefundInitiated:    func() AccountingEvent { return &RefundInitiated{} },
}

// DecodeEvent unmarshals a JSON payload into the typed event for t. The returned value
// is a pointer to one of the payload structs.
func DecodeEvent(t EventType, payload []byte) (AccountingEvent, error) {
	factory, ok := eventFactories[t]
	if !ok {
		return nil, fmt.Errorf("unsupported event type %q", t)
	}
	ev := factory()
	if err := json.Unmarshal(payload, ev); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return ev, nil
}

// AccountingEvent is implemented by every event payload.
type AccountingEvent interface {
	EventType() EventType
	// SourceID identifies the business object that raised the event; together with the
	// type it makes the event idempotent.
	SourceID() string
	OccurredOn() time.Time
}

// OrderConfirmed books the vendor sale and the platform commission.
type OrderConfirmed struct {
	OrderID        string          `json:"orderId" validate:"required"`
	VendorID       string          `json:"vendorId" validate:"required"`
	Amount         decimal.Decimal `json:"amount" validate:"dgt0,dscale"`
	CommissionRate decimal.Decimal `json:"commissionRate" validate:"dpct,dscale"`
	Date           time.Time       `json:"date"`
}

func (e OrderConfirmed) EventType() EventType  { return EventOrderConfirmed }
func (e OrderConfirmed) SourceID() string      { return e.OrderID }
func (e OrderConfirmed) OccurredOn() time.Time { return e.Date }

// OrderDelivered books the cost of the goods that left the vendor's inventory.
type OrderDelivered struct {
	OrderID    string          `json:"orderId" validate:"required"`
	VendorID   string          `json:"vendorId" validate:"required"`
	CostAmount decimal.Decimal `json:"costAmount" validate:"dgt0,dscale"`
	Date       time.Time       `json:"date"`
}

func (e OrderDelivered) EventType() EventType  { return EventOrderDelivered }
func (e OrderDelivered) SourceID() string      { return e.OrderID }
func (e OrderDelivered) OccurredOn() time.Time { return e.Date }

// PaymentReceived books a captured customer payment on both sides.
type PaymentReceived struct {
	PaymentID      string          `json:"paymentId" validate:"required"`
	OrderID        string          `json:"orderId" validate:"required"`
	VendorID       string          `json:"vendorId" validate:"required"`
	Amount         decimal.Decimal `json:"amount" validate:"dgt0,dscale"`
	CommissionRate decimal.Decimal `json:"commissionRate" validate:"dpct,dscale"`
	Date           time.Time       `json:"date"`
}

func (e PaymentReceived) EventType() EventType  { return EventPaymentReceived }
func (e PaymentReceived) SourceID() string      { return e.PaymentID }
func (e PaymentReceived) OccurredOn() time.Time { return e.Date }

// SettlementReceived aggregates pending payments into one gateway settlement.
type SettlementReceived struct {
	SettlementID string          `json:"settlementId" validate:"required"`
	PaymentIDs   []string        `json:"paymentIds" validate:"required,min=1,dive,required"`
	GatewayFee   decimal.Decimal `json:"gatewayFee" validate:"dgte0,dscale"`
	Date         time.Time       `json:"date"`
}

func (e SettlementReceived) EventType() EventType  { return EventSettlementReceived }
func (e SettlementReceived) SourceID() string      { return e.SettlementID }
func (e SettlementReceived) OccurredOn() time.Time { return e.Date }

// VendorPayout books cash paid by the platform to a vendor, on both sides.
type VendorPayout struct {
	PayoutID string          `json:"payoutId" validate:"required"`
	VendorID string          `json:"vendorId" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"dgt0,dscale"`
	Date     time.Time       `json:"date"`
}

func (e VendorPayout) EventType() EventType  { return EventVendorPayout }
func (e VendorPayout) SourceID() string      { return e.PayoutID }
func (e VendorPayout) OccurredOn() time.Time { return e.Date }

// RefundInitiated books a customer refund charged back to the vendor.
type RefundInitiated struct {
	RefundID string          `json:"refundId" validate:"required"`
	OrderID  string          `json:"orderId" validate:"required"`
	VendorID string          `json:"vendorId" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"dgt0,dscale"`
	Date     time.Time       `json:"date"`
}

func (e RefundInitiated) EventType() EventType  { return EventRefundInitiated }
func (e RefundInitiated) SourceID() string      { return e.RefundID }
func (e RefundInitiated) OccurredOn() time.Time { return e.Date }

// AutoVoucherResult is what one event produced.
type AutoVoucherResult struct {
	EventType   EventType          `json:"eventType"`
	SourceID    string             `json:"sourceId"`
	Vouchers    []Voucher          `json:"vouchers"`
	Commissions []CommissionRecord `json:"commissions,omitempty"`
}
