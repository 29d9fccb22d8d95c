package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/marketplace_ledger/internal/models"
	"github.com/SscSPs/marketplace_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository{db: pool}}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

var auditLogColumns = []string{
	"audit_id", "action", "entity_name", "entity_id", "actor_id", "actor_name", "before_data", "after_data", "created_at",
}

func scanAuditLog(row pgx.CollectableRow) (domain.AuditLogEntry, error) {
	m, err := pgx.RowToStructByName[models.AuditLog](row)
	if err != nil {
		return domain.AuditLogEntry{}, err
	}
	return mapping.ToDomainAuditLog(m), nil
}

// nullableJSON keeps empty snapshots as SQL NULL rather than invalid jsonb.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func (r *PgxAuditRepository) SaveAuditLog(ctx context.Context, entry domain.AuditLogEntry) error {
	m := mapping.ToModelAuditLog(entry)
	query := fmt.Sprintf(`INSERT INTO audit_logs (%s) VALUES (%s)`, columns("", auditLogColumns...), placeholders(len(auditLogColumns)))
	_, err := r.db.Exec(ctx, query,
		m.AuditID, m.Action, m.EntityName, m.EntityID, m.ActorID, m.ActorName,
		nullableJSON(m.Before), nullableJSON(m.After), m.CreatedAt)
	if err != nil {
		return mapWriteError(err, "audit log "+m.AuditID)
	}
	return nil
}

// ListAuditLogs returns a page of entries, newest first.
func (r *PgxAuditRepository) ListAuditLogs(ctx context.Context, filter domain.AuditFilter, limit int, offset int) ([]domain.AuditLogEntry, int, error) {
	where := &whereClause{}
	if filter.EntityName != "" {
		where.add("entity_name = $%d", filter.EntityName)
	}
	if filter.EntityID != "" {
		where.add("entity_id = $%d", filter.EntityID)
	}
	if filter.Action != "" {
		where.add("action = $%d", string(filter.Action))
	}
	if filter.ActorID != "" {
		where.add("actor_id = $%d", filter.ActorID)
	}
	if filter.From != nil {
		where.add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		where.add("created_at <= $%d", *filter.To)
	}
	// seq breaks ties between entries written in the same instant
	entries, total, err := collectPage(ctx, r.db, columns("", auditLogColumns...), "audit_logs", where,
		"created_at DESC, seq DESC", limit, offset, scanAuditLog)
	if err != nil {
		return nil, 0, mapReadError(err, "audit logs")
	}
	return entries, total, nil
}
