package mapping

import (
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/SscSPs/marketplace_ledger/internal/models"
)

// ToModelVoucher converts a domain Voucher header to a model Voucher
func ToModelVoucher(d domain.Voucher) models.Voucher {
	var eventType *string
	if d.EventType != nil {
		e := string(*d.EventType)
		eventType = &e
	}
	return models.Voucher{
		VoucherID:      d.VoucherID,
		VoucherNumber:  d.VoucherNumber,
		VoucherType:    string(d.VoucherType),
		EntityType:     string(d.Entity.Type),
		EntityID:       d.Entity.ID,
		VoucherDate:    d.VoucherDate,
		Narration:      d.Narration,
		TotalDebit:     d.TotalDebit,
		TotalCredit:    d.TotalCredit,
		Status:         string(d.Status),
		IsLocked:       d.IsLocked,
		IsAuto:         d.IsAuto,
		EventType:      eventType,
		SourceRef:      d.SourceRef,
		VendorID:       d.VendorID,
		IsReversed:     d.IsReversed,
		ReversalOfID:   d.ReversalOfID,
		ReversedByID:   d.ReversedByID,
		ReversalReason: d.ReversalReason,
		PostedBy:       d.PostedBy,
		PostedAt:       d.PostedAt,
		LockedBy:       d.LockedBy,
		LockedAt:       d.LockedAt,
		CancelledBy:    d.CancelledBy,
		CancelledAt:    d.CancelledAt,
		CancelReason:   d.CancelReason,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainVoucher converts a model Voucher to a domain Voucher without entries
func ToDomainVoucher(m models.Voucher) domain.Voucher {
	var eventType *domain.EventType
	if m.EventType != nil {
		e := domain.EventType(*m.EventType)
		eventType = &e
	}
	return domain.Voucher{
		VoucherID:      m.VoucherID,
		VoucherNumber:  m.VoucherNumber,
		VoucherType:    domain.VoucherType(m.VoucherType),
		Entity:         ToDomainEntity(m.EntityType, m.EntityID),
		VoucherDate:    m.VoucherDate.UTC(),
		Narration:      m.Narration,
		TotalDebit:     m.TotalDebit,
		TotalCredit:    m.TotalCredit,
		Status:         domain.VoucherStatus(m.Status),
		IsLocked:       m.IsLocked,
		IsAuto:         m.IsAuto,
		EventType:      eventType,
		SourceRef:      m.SourceRef,
		VendorID:       m.VendorID,
		IsReversed:     m.IsReversed,
		ReversalOfID:   m.ReversalOfID,
		ReversedByID:   m.ReversedByID,
		ReversalReason: m.ReversalReason,
		PostedBy:       m.PostedBy,
		PostedAt:       m.PostedAt,
		LockedBy:       m.LockedBy,
		LockedAt:       m.LockedAt,
		CancelledBy:    m.CancelledBy,
		CancelledAt:    m.CancelledAt,
		CancelReason:   m.CancelReason,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelDraftEntry converts a domain DraftEntry to a model DraftEntry
func ToModelDraftEntry(d domain.DraftEntry) models.DraftEntry {
	return models.DraftEntry(d)
}

// ToDomainDraftEntry converts a model DraftEntry to a domain DraftEntry
func ToDomainDraftEntry(m models.DraftEntry) domain.DraftEntry {
	return domain.DraftEntry(m)
}

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:    d.EntryID,
		VoucherID:  d.VoucherID,
		LineNo:     d.LineNo,
		EntityType: string(d.Entity.Type),
		EntityID:   d.Entity.ID,
		AccountID:  d.AccountID,
		EntryDate:  d.EntryDate,
		Debit:      d.Debit,
		Credit:     d.Credit,
		CostCenter: d.CostCenter,
		Department: d.Department,
		Reference:  d.Reference,
		CreatedAt:  d.CreatedAt,
		CreatedBy:  d.CreatedBy,
	}
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:    m.EntryID,
		VoucherID:  m.VoucherID,
		LineNo:     m.LineNo,
		Entity:     ToDomainEntity(m.EntityType, m.EntityID),
		AccountID:  m.AccountID,
		EntryDate:  m.EntryDate.UTC(),
		Debit:      m.Debit,
		Credit:     m.Credit,
		CostCenter: m.CostCenter,
		Department: m.Department,
		Reference:  m.Reference,
		CreatedAt:  m.CreatedAt,
		CreatedBy:  m.CreatedBy,
	}
}
