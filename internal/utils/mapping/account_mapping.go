package mapping

import (
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/SscSPs/marketplace_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	var key *string
	if d.Key != nil {
		k := string(*d.Key)
		key = &k
	}
	return models.Account{
		AccountID:       d.AccountID,
		EntityType:      string(d.Entity.Type),
		EntityID:        d.Entity.ID,
		Code:            d.Code,
		Name:            d.Name,
		Class:           string(d.Class),
		Nature:          string(d.Nature),
		ParentAccountID: d.ParentAccountID,
		Description:     d.Description,
		AccountKey:      key,
		KeySubject:      d.KeySubject,
		IsSystem:        d.IsSystem,
		CanDelete:       d.CanDelete,
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	var key *domain.AccountKey
	if m.AccountKey != nil {
		k := domain.AccountKey(*m.AccountKey)
		key = &k
	}
	return domain.Account{
		AccountID:       m.AccountID,
		Entity:          ToDomainEntity(m.EntityType, m.EntityID),
		Code:            m.Code,
		Name:            m.Name,
		Class:           domain.AccountClass(m.Class),
		Nature:          domain.Nature(m.Nature),
		ParentAccountID: m.ParentAccountID,
		Description:     m.Description,
		Key:             key,
		KeySubject:      m.KeySubject,
		IsSystem:        m.IsSystem,
		CanDelete:       m.CanDelete,
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
