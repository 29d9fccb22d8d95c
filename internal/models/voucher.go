package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Voucher is a row of the vouchers table.
type Voucher struct {
	VoucherID      string          `db:"voucher_id"`
	VoucherNumber  string          `db:"voucher_number"`
	VoucherType    string          `db:"voucher_type"`
	EntityType     string          `db:"entity_type"`
	EntityID       string          `db:"entity_id"`
	VoucherDate    time.Time       `db:"voucher_date"`
	Narration      string          `db:"narration"`
	TotalDebit     decimal.Decimal `db:"total_debit"`
	TotalCredit    decimal.Decimal `db:"total_credit"`
	Status         string          `db:"status"`
	IsLocked       bool            `db:"is_locked"`
	IsAuto         bool            `db:"is_auto"`
	EventType      *string         `db:"event_type"`
	SourceRef      string          `db:"source_ref"`
	VendorID       string          `db:"vendor_id"`
	IsReversed     bool            `db:"is_reversed"`
	ReversalOfID   *string         `db:"reversal_of_id"`
	ReversedByID   *string         `db:"reversed_by_id"`
	ReversalReason string          `db:"reversal_reason"`
	PostedBy       *string         `db:"posted_by"`
	PostedAt       *time.Time      `db:"posted_at"`
	LockedBy       *string         `db:"locked_by"`
	LockedAt       *time.Time      `db:"locked_at"`
	CancelledBy    *string         `db:"cancelled_by"`
	CancelledAt    *time.Time      `db:"cancelled_at"`
	CancelReason   string          `db:"cancel_reason"`
	AuditFields
}

// DraftEntry is a row of voucher_draft_entries.
type DraftEntry struct {
	EntryID    string          `db:"entry_id"`
	VoucherID  string          `db:"voucher_id"`
	LineNo     int             `db:"line_no"`
	AccountID  string          `db:"account_id"`
	Debit      decimal.Decimal `db:"debit"`
	Credit     decimal.Decimal `db:"credit"`
	CostCenter string          `db:"cost_center"`
	Department string          `db:"department"`
	Reference  string          `db:"reference"`
}

// LedgerEntry is a row of the append-only ledger_entries table.
type LedgerEntry struct {
	EntryID    string          `db:"entry_id"`
	VoucherID  string          `db:"voucher_id"`
	LineNo     int             `db:"line_no"`
	EntityType string          `db:"entity_type"`
	EntityID   string          `db:"entity_id"`
	AccountID  string          `db:"account_id"`
	EntryDate  time.Time       `db:"entry_date"`
	Debit      decimal.Decimal `db:"debit"`
	Credit     decimal.Decimal `db:"credit"`
	CostCenter string          `db:"cost_center"`
	Department string          `db:"department"`
	Reference  string          `db:"reference"`
	CreatedAt  time.Time       `db:"created_at"`
	CreatedBy  string          `db:"created_by"`
}
