package memory

import (
	"context"
	"sort"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

func (r *repos) SaveAuditLog(_ context.Context, entry domain.AuditLogEntry) error {
	return r.write(func(st *state) error {
		st.audit = append(st.audit, entry)
		return nil
	})
}

func (r *repos) ListAuditLogs(_ context.Context, filter domain.AuditFilter, limit int, offset int) ([]domain.AuditLogEntry, int, error) {
	var all []domain.AuditLogEntry
	r.read(func(st *state) {
		for i := len(st.audit) - 1; i >= 0; i-- {
			e := st.audit[i]
			switch {
			case filter.EntityName != "" && e.EntityName != filter.EntityName,
				filter.EntityID != "" && e.EntityID != filter.EntityID,
				filter.Action != "" && e.Action != filter.Action,
				filter.ActorID != "" && e.ActorID != filter.ActorID,
				!inWindow(e.CreatedAt, filter.From, filter.To):
				continue
			}
			all = append(all, e)
		}
	})
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, limit, offset), len(all), nil
}
