package mapping

import (
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/SscSPs/marketplace_ledger/internal/models"
)

// ToModelPeriod converts a domain AccountingPeriod to a model AccountingPeriod
func ToModelPeriod(d domain.AccountingPeriod) models.AccountingPeriod {
	return models.AccountingPeriod{
		PeriodID:    d.PeriodID,
		EntityType:  string(d.Entity.Type),
		EntityID:    d.Entity.ID,
		Name:        d.Name,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		IsClosed:    d.IsClosed,
		ClosedBy:    d.ClosedBy,
		ClosedAt:    d.ClosedAt,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPeriod converts a model AccountingPeriod to a domain AccountingPeriod
func ToDomainPeriod(m models.AccountingPeriod) domain.AccountingPeriod {
	return domain.AccountingPeriod{
		PeriodID:    m.PeriodID,
		Entity:      ToDomainEntity(m.EntityType, m.EntityID),
		Name:        m.Name,
		StartDate:   m.StartDate.UTC(),
		EndDate:     m.EndDate.UTC(),
		IsClosed:    m.IsClosed,
		ClosedBy:    m.ClosedBy,
		ClosedAt:    m.ClosedAt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelVendorPayable converts a domain VendorPayable to a model VendorPayable
func ToModelVendorPayable(d domain.VendorPayable) models.VendorPayable {
	return models.VendorPayable(d)
}

// ToDomainVendorPayable converts a model VendorPayable to a domain VendorPayable
func ToDomainVendorPayable(m models.VendorPayable) domain.VendorPayable {
	return domain.VendorPayable(m)
}

// ToModelCommission converts a domain CommissionRecord to a model CommissionRecord
func ToModelCommission(d domain.CommissionRecord) models.CommissionRecord {
	return models.CommissionRecord{
		CommissionID: d.CommissionID,
		OrderID:      d.OrderID,
		VendorID:     d.VendorID,
		OrderAmount:  d.OrderAmount,
		Rate:         d.Rate,
		Amount:       d.Amount,
		VoucherID:    d.VoucherID,
		Status:       string(d.Status),
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainCommission converts a model CommissionRecord to a domain CommissionRecord
func ToDomainCommission(m models.CommissionRecord) domain.CommissionRecord {
	return domain.CommissionRecord{
		CommissionID: m.CommissionID,
		OrderID:      m.OrderID,
		VendorID:     m.VendorID,
		OrderAmount:  m.OrderAmount,
		Rate:         m.Rate,
		Amount:       m.Amount,
		VoucherID:    m.VoucherID,
		Status:       domain.CommissionStatus(m.Status),
		CreatedAt:    m.CreatedAt,
	}
}

// ToModelPayment converts a domain PaymentTransaction to a model PaymentTransaction
func ToModelPayment(d domain.PaymentTransaction) models.PaymentTransaction {
	return models.PaymentTransaction{
		PaymentID:    d.PaymentID,
		OrderID:      d.OrderID,
		VendorID:     d.VendorID,
		Amount:       d.Amount,
		Commission:   d.Commission,
		Status:       string(d.Status),
		SettlementID: d.SettlementID,
		SettledAt:    d.SettledAt,
		VoucherID:    d.VoucherID,
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainPayment converts a model PaymentTransaction to a domain PaymentTransaction
func ToDomainPayment(m models.PaymentTransaction) domain.PaymentTransaction {
	return domain.PaymentTransaction{
		PaymentID:    m.PaymentID,
		OrderID:      m.OrderID,
		VendorID:     m.VendorID,
		Amount:       m.Amount,
		Commission:   m.Commission,
		Status:       domain.PaymentStatus(m.Status),
		SettlementID: m.SettlementID,
		SettledAt:    m.SettledAt,
		VoucherID:    m.VoucherID,
		CreatedAt:    m.CreatedAt,
	}
}

// ToModelAuditLog converts a domain AuditLogEntry to a model AuditLog
func ToModelAuditLog(d domain.AuditLogEntry) models.AuditLog {
	return models.AuditLog{
		AuditID:    d.AuditID,
		Action:     string(d.Action),
		EntityName: d.EntityName,
		EntityID:   d.EntityID,
		ActorID:    d.ActorID,
		ActorName:  d.ActorName,
		Before:     d.Before,
		After:      d.After,
		CreatedAt:  d.CreatedAt,
	}
}

// ToDomainAuditLog converts a model AuditLog to a domain AuditLogEntry
func ToDomainAuditLog(m models.AuditLog) domain.AuditLogEntry {
	return domain.AuditLogEntry{
		AuditID:    m.AuditID,
		Action:     domain.AuditAction(m.Action),
		EntityName: m.EntityName,
		EntityID:   m.EntityID,
		ActorID:    m.ActorID,
		ActorName:  m.ActorName,
		Before:     m.Before,
		After:      m.After,
		CreatedAt:  m.CreatedAt,
	}
}

// ToModelIntegrationKey converts a domain IntegrationKey to a model IntegrationKey
func ToModelIntegrationKey(d domain.IntegrationKey) models.IntegrationKey {
	return models.IntegrationKey(d)
}

// ToDomainIntegrationKey converts a model IntegrationKey to a domain IntegrationKey
func ToDomainIntegrationKey(m models.IntegrationKey) domain.IntegrationKey {
	return domain.IntegrationKey(m)
}
