package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountingPeriod is a row of accounting_periods.
type AccountingPeriod struct {
	PeriodID   string     `db:"period_id"`
	EntityType string     `db:"entity_type"`
	EntityID   string     `db:"entity_id"`
	Name       string     `db:"name"`
	StartDate  time.Time  `db:"start_date"`
	EndDate    time.Time  `db:"end_date"`
	IsClosed   bool       `db:"is_closed"`
	ClosedBy   *string    `db:"closed_by"`
	ClosedAt   *time.Time `db:"closed_at"`
	AuditFields
}

// VendorPayable is a row of the vendor_payables cache.
type VendorPayable struct {
	VendorID         string          `db:"vendor_id"`
	TotalSales       decimal.Decimal `db:"total_sales"`
	TotalCommission  decimal.Decimal `db:"total_commission"`
	TotalRefunds     decimal.Decimal `db:"total_refunds"`
	TotalPaid        decimal.Decimal `db:"total_paid"`
	TotalPayable     decimal.Decimal `db:"total_payable"`
	Balance          decimal.Decimal `db:"balance"`
	OrderCount       int64           `db:"order_count"`
	LastVoucherID    string          `db:"last_voucher_id"`
	UpdatedAt        time.Time       `db:"updated_at"`
	LastReconciledAt *time.Time      `db:"last_reconciled_at"`
}

// CommissionRecord is a row of commission_records.
type CommissionRecord struct {
	CommissionID string          `db:"commission_id"`
	OrderID      string          `db:"order_id"`
	VendorID     string          `db:"vendor_id"`
	OrderAmount  decimal.Decimal `db:"order_amount"`
	Rate         decimal.Decimal `db:"rate"`
	Amount       decimal.Decimal `db:"amount"`
	VoucherID    string          `db:"voucher_id"`
	Status       string          `db:"status"`
	CreatedAt    time.Time       `db:"created_at"`
}

// PaymentTransaction is a row of payment_transactions.
type PaymentTransaction struct {
	PaymentID    string          `db:"payment_id"`
	OrderID      string          `db:"order_id"`
	VendorID     string          `db:"vendor_id"`
	Amount       decimal.Decimal `db:"amount"`
	Commission   decimal.Decimal `db:"commission"`
	Status       string          `db:"status"`
	SettlementID *string         `db:"settlement_id"`
	SettledAt    *time.Time      `db:"settled_at"`
	VoucherID    string          `db:"voucher_id"`
	CreatedAt    time.Time       `db:"created_at"`
}

// AuditLog is a row of audit_logs. Before and After are jsonb.
type AuditLog struct {
	AuditID    string    `db:"audit_id"`
	Action     string    `db:"action"`
	EntityName string    `db:"entity_name"`
	EntityID   string    `db:"entity_id"`
	ActorID    string    `db:"actor_id"`
	ActorName  string    `db:"actor_name"`
	Before     []byte    `db:"before_data"`
	After      []byte    `db:"after_data"`
	CreatedAt  time.Time `db:"created_at"`
}

// IntegrationKey is a row of integration_keys.
type IntegrationKey struct {
	KeyID      string     `db:"key_id"`
	Name       string     `db:"name"`
	SecretHash string     `db:"secret_hash"`
	CreatedBy  string     `db:"created_by"`
	CreatedAt  time.Time  `db:"created_at"`
	LastUsedAt *time.Time `db:"last_used_at"`
	RevokedAt  *time.Time `db:"revoked_at"`
}
