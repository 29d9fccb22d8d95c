package dto

import (
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/SscSPs/marketplace_ledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// VoucherEntryRequest is one debit-or-credit line of a new voucher.
type VoucherEntryRequest struct {
	AccountID  string          `json:"accountID"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	CostCenter string          `json:"costCenter"`
	Department string          `json:"department"`
	Reference  string          `json:"reference"`
}

// CreateVoucherRequest defines the data needed to create a DRAFT voucher.
type CreateVoucherRequest struct {
	EntityParams
	VoucherType string                `json:"voucherType" binding:"required"`
	VoucherDate string                `json:"voucherDate" binding:"required,datetime=2006-01-02"`
	Narration   string                `json:"narration"`
	SourceRef   string                `json:"sourceRef"`
	VendorID    string                `json:"vendorID"`
	Entries     []VoucherEntryRequest `json:"entries"`
}

// ToSpec converts the request for the given books. The date was checked by binding.
func (r CreateVoucherRequest) ToSpec(entity domain.EntityRef) domain.VoucherSpec {
	date, _ := time.Parse(DateLayout, r.VoucherDate)
	entries := make([]domain.EntrySpec, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = domain.EntrySpec{
			AccountID:  e.AccountID,
			Debit:      e.Debit,
			Credit:     e.Credit,
			CostCenter: e.CostCenter,
			Department: e.Department,
			Reference:  e.Reference,
		}
	}
	return domain.VoucherSpec{
		Entity:      entity,
		VoucherType: domain.VoucherType(r.VoucherType),
		VoucherDate: date,
		Narration:   r.Narration,
		SourceRef:   r.SourceRef,
		VendorID:    r.VendorID,
		Entries:     entries,
	}
}

// ReverseVoucherRequest carries the reversal reason and an optional date.
type ReverseVoucherRequest struct {
	Reason string `json:"reason" binding:"required"`
	Date   string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// CancelVoucherRequest carries the cancellation reason.
type CancelVoucherRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListVouchersParams defines query parameters for listing vouchers.
type ListVouchersParams struct {
	EntityParams
	PageParams
	Status      string `form:"status" binding:"omitempty,oneof=DRAFT POSTED REVERSED CANCELLED"`
	VoucherType string `form:"voucherType"`
	VendorID    string `form:"vendorId"`
	From        string `form:"from"`
	To          string `form:"to"`
}

// VoucherLineResponse is a draft or ledger line of a voucher.
type VoucherLineResponse struct {
	EntryID    string          `json:"entryID"`
	LineNo     int             `json:"lineNo"`
	AccountID  string          `json:"accountID"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	CostCenter string          `json:"costCenter,omitempty"`
	Department string          `json:"department,omitempty"`
	Reference  string          `json:"reference,omitempty"`
}

// VoucherResponse defines the data returned for a voucher.
type VoucherResponse struct {
	VoucherID      string                `json:"voucherID"`
	VoucherNumber  string                `json:"voucherNumber"`
	VoucherType    domain.VoucherType    `json:"voucherType"`
	EntityType     domain.EntityType     `json:"entityType"`
	EntityID       string                `json:"entityId,omitempty"`
	VoucherDate    string                `json:"voucherDate"`
	Narration      string                `json:"narration"`
	TotalDebit     decimal.Decimal       `json:"totalDebit"`
	TotalCredit    decimal.Decimal       `json:"totalCredit"`
	Status         domain.VoucherStatus  `json:"status"`
	IsLocked       bool                  `json:"isLocked"`
	IsAuto         bool                  `json:"isAuto"`
	IsReversed     bool                  `json:"isReversed"`
	EventType      string                `json:"eventType,omitempty"`
	SourceRef      string                `json:"sourceRef,omitempty"`
	VendorID       string                `json:"vendorID,omitempty"`
	ReversalOfID   *string               `json:"reversalOfID,omitempty"`
	ReversedByID   *string               `json:"reversedByID,omitempty"`
	ReversalReason string                `json:"reversalReason,omitempty"`
	CancelReason   string                `json:"cancelReason,omitempty"`
	PostedBy       *string               `json:"postedBy,omitempty"`
	PostedAt       *time.Time            `json:"postedAt,omitempty"`
	LockedBy       *string               `json:"lockedBy,omitempty"`
	LockedAt       *time.Time            `json:"lockedAt,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	CreatedBy      string                `json:"createdBy"`
	Lines          []VoucherLineResponse `json:"lines,omitempty"`
}

// ToVoucherResponse converts a domain.Voucher. Posted vouchers report their ledger
// lines, drafts their draft lines.
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	resp := VoucherResponse{
		VoucherID:      v.VoucherID,
		VoucherNumber:  v.VoucherNumber,
		VoucherType:    v.VoucherType,
		EntityType:     v.Entity.Type,
		EntityID:       v.Entity.ID,
		VoucherDate:    FormatDate(v.VoucherDate),
		Narration:      v.Narration,
		TotalDebit:     v.TotalDebit,
		TotalCredit:    v.TotalCredit,
		Status:         v.Status,
		IsLocked:       v.IsLocked,
		IsAuto:         v.IsAuto,
		IsReversed:     v.IsReversed,
		SourceRef:      v.SourceRef,
		VendorID:       v.VendorID,
		ReversalOfID:   v.ReversalOfID,
		ReversedByID:   v.ReversedByID,
		ReversalReason: v.ReversalReason,
		CancelReason:   v.CancelReason,
		PostedBy:       v.PostedBy,
		PostedAt:       v.PostedAt,
		LockedBy:       v.LockedBy,
		LockedAt:       v.LockedAt,
		CreatedAt:      v.CreatedAt,
		CreatedBy:      v.CreatedBy,
	}
	if v.EventType != nil {
		resp.EventType = string(*v.EventType)
	}
	if len(v.LedgerEntries) > 0 {
		for _, e := range v.LedgerEntries {
			resp.Lines = append(resp.Lines, VoucherLineResponse{
				EntryID: e.EntryID, LineNo: e.LineNo, AccountID: e.AccountID,
				Debit: e.Debit, Credit: e.Credit,
				CostCenter: e.CostCenter, Department: e.Department, Reference: e.Reference,
			})
		}
		return resp
	}
	for _, e := range v.Entries {
		resp.Lines = append(resp.Lines, VoucherLineResponse{
			EntryID: e.EntryID, LineNo: e.LineNo, AccountID: e.AccountID,
			Debit: e.Debit, Credit: e.Credit,
			CostCenter: e.CostCenter, Department: e.Department, Reference: e.Reference,
		})
	}
	return resp
}

// ToListVoucherResponse converts a slice of vouchers.
func ToListVoucherResponse(vouchers []domain.Voucher) []VoucherResponse {
	res := make([]VoucherResponse, len(vouchers))
	for i := range vouchers {
		res[i] = ToVoucherResponse(&vouchers[i])
	}
	return res
}

// ListVouchersResponse wraps a page of vouchers.
type ListVouchersResponse struct {
	Data       []VoucherResponse     `json:"data"`
	Pagination pagination.Pagination `json:"pagination"`
}
