package repositories

import (
	"context"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// AuditRepositoryFacade persists the append-only audit log
type AuditRepositoryFacade interface {
	SaveAuditLog(ctx context.Context, entry domain.AuditLogEntry) error

	// ListAuditLogs returns a page of entries, newest first, and the total count.
	ListAuditLogs(ctx context.Context, filter domain.AuditFilter, limit int, offset int) ([]domain.AuditLogEntry, int, error)
}
