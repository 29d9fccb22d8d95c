package services

import (
	"context"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
)

// AuditRecord describes one mutating operation to log.
type AuditRecord struct {
	Action     domain.AuditAction
	EntityName string
	EntityID   string
	ActorID    string
	Before     any
	After      any
}

// AuditRecorderSvc writes audit entries inside the caller's transaction.
type AuditRecorderSvc interface {
	Record(ctx context.Context, tx portsrepo.TxRepositories, rec AuditRecord) error
}

// AuditReaderSvc reads the audit log.
type AuditReaderSvc interface {
	ListAuditLogs(ctx context.Context, filter domain.AuditFilter, page domain.PageRequest) ([]domain.AuditLogEntry, int, error)
}

// AuditSvcFacade combines the audit interfaces
type AuditSvcFacade interface {
	AuditRecorderSvc
	AuditReaderSvc
}
