package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// VoucherStatus indicates the lifecycle state of a voucher.
type VoucherStatus string

const (
	VoucherDraft     VoucherStatus = "DRAFT"
	VoucherPosted    VoucherStatus = "POSTED"
	VoucherReversed  VoucherStatus = "REVERSED"
	VoucherCancelled VoucherStatus = "CANCELLED"
)

// VoucherType classifies a voucher and selects its number prefix.
type VoucherType string

const (
	VoucherJournal    VoucherType = "JOURNAL"
	VoucherSales      VoucherType = "SALES"
	VoucherReceipt    VoucherType = "RECEIPT"
	VoucherPayout     VoucherType = "PAYOUT"
	VoucherRefund     VoucherType = "REFUND"
	VoucherCommission VoucherType = "COMMISSION"
	VoucherSettlement VoucherType = "SETTLEMENT"
	VoucherDelivery   VoucherType = "DELIVERY"
	VoucherReversal   VoucherType = "REVERSAL"
)

var voucherPrefixes = map[VoucherType]string{
	VoucherJournal:    "JV",
	VoucherSales:      "SV",
	VoucherReceipt:    "RC",
	VoucherPayout:     "PO",
	VoucherRefund:     "RF",
	VoucherCommission: "CM",
	VoucherSettlement: "ST",
	VoucherDelivery:   "DL",
	VoucherReversal:   "RV",
}

// IsValid reports whether t is a known voucher type.
func (t VoucherType) IsValid() bool {
	_, ok := voucherPrefixes[t]
	return ok
}

// Prefix returns the voucher number prefix for the type.
func (t VoucherType) Prefix() string {
	return voucherPrefixes[t]
}

// VoucherSequenceScope is the counter scope for voucher numbers: entity, type and month.
func VoucherSequenceScope(entity EntityRef, t VoucherType, date time.Time) string {
	return fmt.Sprintf("voucher:%s:%s:%s", entity.ScopeKey(), t, date.UTC().Format("0601"))
}

// FormatVoucherNumber renders {prefix}{YY}{MM}{NNNN}.
func FormatVoucherNumber(t VoucherType, date time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%04d", t.Prefix(), date.UTC().Format("0601"), seq)
}

// Voucher is a transaction header. While DRAFT it owns draft entries; once posted its
// entries live in the ledger.
type Voucher struct {
	VoucherID      string          `json:"voucherID"`
	VoucherNumber  string          `json:"voucherNumber"`
	VoucherType    VoucherType     `json:"voucherType"`
	Entity         EntityRef       `json:"entity"`
	VoucherDate    time.Time       `json:"voucherDate"`
	Narration      string          `json:"narration"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	Status         VoucherStatus   `json:"status"`
	IsLocked       bool            `json:"isLocked"`
	IsAuto         bool            `json:"isAuto"`
	EventType      *EventType      `json:"eventType,omitempty"`
	SourceRef      string          `json:"sourceRef,omitempty"`
	VendorID       string          `json:"vendorID,omitempty"`
	IsReversed     bool            `json:"isReversed"`
	ReversalOfID   *string         `json:"reversalOfID,omitempty"`
	ReversedByID   *string         `json:"reversedByID,omitempty"`
	ReversalReason string          `json:"reversalReason,omitempty"`
	PostedBy       *string         `json:"postedBy,omitempty"`
	PostedAt       *time.Time      `json:"postedAt,omitempty"`
	LockedBy       *string         `json:"lockedBy,omitempty"`
	LockedAt       *time.Time      `json:"lockedAt,omitempty"`
	CancelledBy    *string         `json:"cancelledBy,omitempty"`
	CancelledAt    *time.Time      `json:"cancelledAt,omitempty"`
	CancelReason   string          `json:"cancelReason,omitempty"`
	AuditFields

	Entries       []DraftEntry  `json:"entries,omitempty"`
	LedgerEntries []LedgerEntry `json:"ledgerEntries,omitempty"`
}

// CanPost checks the DRAFT -> POSTED transition.
func (v *Voucher) CanPost() error {
	if v.IsLocked {
		return fmt.Errorf("voucher %s is locked", v.VoucherNumber)
	}
	if v.Status != VoucherDraft {
		return fmt.Errorf("voucher %s is %s, only DRAFT vouchers can be posted", v.VoucherNumber, v.Status)
	}
	return nil
}

// CanLock checks the lock flag can be set.
func (v *Voucher) CanLock() error {
	switch {
	case !v.Entity.IsAdmin():
		return fmt.Errorf("only admin vouchers can be locked")
	case v.Status != VoucherPosted:
		return fmt.Errorf("voucher %s is %s, only POSTED vouchers can be locked", v.VoucherNumber, v.Status)
	case v.IsAuto:
		return fmt.Errorf("auto-generated voucher %s cannot be locked", v.VoucherNumber)
	case v.IsLocked:
		return fmt.Errorf("voucher %s is already locked", v.VoucherNumber)
	}
	return nil
}

// CanReverse checks the POSTED -> REVERSED transition.
func (v *Voucher) CanReverse() error {
	switch {
	case v.IsLocked:
		return fmt.Errorf("voucher %s is locked", v.VoucherNumber)
	case v.IsReversed || v.Status == VoucherReversed:
		return fmt.Errorf("voucher %s is already reversed", v.VoucherNumber)
	case v.Status != VoucherPosted:
		return fmt.Errorf("voucher %s is %s, only POSTED vouchers can be reversed", v.VoucherNumber, v.Status)
	case v.VoucherType == VoucherReversal:
		return fmt.Errorf("reversal voucher %s cannot itself be reversed", v.VoucherNumber)
	}
	return nil
}

// CanCancel checks the DRAFT -> CANCELLED transition.
func (v *Voucher) CanCancel() error {
	switch {
	case v.Status == VoucherCancelled:
		return fmt.Errorf("voucher %s is already cancelled", v.VoucherNumber)
	case v.Status != VoucherDraft:
		return fmt.Errorf("voucher %s is %s, only DRAFT vouchers can be cancelled", v.VoucherNumber, v.Status)
	case v.IsAuto:
		return fmt.Errorf("auto-generated voucher %s cannot be cancelled", v.VoucherNumber)
	}
	return nil
}

// DraftEntry is a debit-or-credit line on a DRAFT voucher.
type DraftEntry struct {
	EntryID    string          `json:"entryID"`
	VoucherID  string          `json:"voucherID"`
	LineNo     int             `json:"lineNo"`
	AccountID  string          `json:"accountID"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	CostCenter string          `json:"costCenter,omitempty"`
	Department string          `json:"department,omitempty"`
	Reference  string          `json:"reference,omitempty"`
}

// LedgerEntry is the immutable record materialized from a draft entry at posting time.
type LedgerEntry struct {
	EntryID    string          `json:"entryID"`
	VoucherID  string          `json:"voucherID"`
	LineNo     int             `json:"lineNo"`
	Entity     EntityRef       `json:"entity"`
	AccountID  string          `json:"accountID"`
	EntryDate  time.Time       `json:"entryDate"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	CostCenter string          `json:"costCenter,omitempty"`
	Department string          `json:"department,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	CreatedBy  string          `json:"createdBy"`
}

// EntrySpec is one requested line of a voucher.
type EntrySpec struct {
	AccountID  string
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	CostCenter string
	Department string
	Reference  string
}

// VoucherSpec describes a voucher to create.
type VoucherSpec struct {
	Entity      EntityRef
	VoucherType VoucherType
	VoucherDate time.Time
	Narration   string
	SourceRef   string
	VendorID    string
	IsAuto      bool
	EventType   *EventType
	Entries     []EntrySpec
}

// VoucherFilter narrows voucher listings.
type VoucherFilter struct {
	Entity      *EntityRef
	Status      *VoucherStatus
	VoucherType *VoucherType
	VendorID    string
	From        *time.Time
	To          *time.Time
}
