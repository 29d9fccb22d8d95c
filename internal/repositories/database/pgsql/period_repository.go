package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/marketplace_ledger/internal/models"
	"github.com/SscSPs/marketplace_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPeriodRepository struct {
	BaseRepository
}

func newPgxPeriodRepository(pool *pgxpool.Pool) *PgxPeriodRepository {
	return &PgxPeriodRepository{BaseRepository{db: pool}}
}

var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

var periodColumns = append([]string{
	"period_id", "entity_type", "entity_id", "name", "start_date", "end_date", "is_closed", "closed_by", "closed_at",
}, auditColumns...)

func scanPeriod(row pgx.CollectableRow) (domain.AccountingPeriod, error) {
	m, err := pgx.RowToStructByName[models.AccountingPeriod](row)
	if err != nil {
		return domain.AccountingPeriod{}, err
	}
	return mapping.ToDomainPeriod(m), nil
}

func (r *PgxPeriodRepository) findOne(ctx context.Context, what string, query string, args ...any) (*domain.AccountingPeriod, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapReadError(err, what)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPeriod)
	if err != nil {
		return nil, mapReadError(err, what)
	}
	return &p, nil
}

func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounting_periods WHERE period_id = $1`, columns("", periodColumns...))
	return r.findOne(ctx, "period "+periodID, query, periodID)
}

// FindPeriodCovering returns the period whose [start, end) contains date.
func (r *PgxPeriodRepository) FindPeriodCovering(ctx context.Context, entity domain.EntityRef, date time.Time) (*domain.AccountingPeriod, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounting_periods
		WHERE entity_type = $1 AND entity_id = $2 AND start_date <= $3 AND end_date > $3
		LIMIT 1`, columns("", periodColumns...))
	return r.findOne(ctx, "no period covers "+date.Format(time.DateOnly), query, string(entity.Type), entity.ID, date)
}

func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, entity domain.EntityRef) ([]domain.AccountingPeriod, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounting_periods WHERE entity_type = $1 AND entity_id = $2 ORDER BY start_date`,
		columns("", periodColumns...))
	rows, err := r.db.Query(ctx, query, string(entity.Type), entity.ID)
	if err != nil {
		return nil, mapReadError(err, "periods")
	}
	periods, err := pgx.CollectRows(rows, scanPeriod)
	if err != nil {
		return nil, mapReadError(err, "periods")
	}
	return periods, nil
}

// LockPeriodScope takes a transaction-scoped advisory lock keyed on the entity.
// Outside a transaction the lock is released as soon as the statement finishes.
func (r *PgxPeriodRepository) LockPeriodScope(ctx context.Context, entity domain.EntityRef) error {
	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, periodLockKey(entity)); err != nil {
		return apperrors.NewAppError(500, "failed to lock periods of "+entity.String(), err)
	}
	return nil
}

func periodLockKey(entity domain.EntityRef) string {
	return "accounting_periods:" + string(entity.Type) + ":" + entity.ID
}

// SavePeriod inserts a period.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	m := mapping.ToModelPeriod(period)
	query := fmt.Sprintf(`INSERT INTO accounting_periods (%s) VALUES (%s)`, columns("", periodColumns...), placeholders(len(periodColumns)))
	_, err := r.db.Exec(ctx, query,
		m.PeriodID, m.EntityType, m.EntityID, m.Name, m.StartDate, m.EndDate, m.IsClosed, m.ClosedBy, m.ClosedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return mapWriteError(err, "period "+m.Name)
	}
	return nil
}

// UpdatePeriod persists the close state and name of a period.
func (r *PgxPeriodRepository) UpdatePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	m := mapping.ToModelPeriod(period)
	tag, err := r.db.Exec(ctx, `
		UPDATE accounting_periods
		SET name = $2, is_closed = $3, closed_by = $4, closed_at = $5, last_updated_at = $6, last_updated_by = $7
		WHERE period_id = $1`,
		m.PeriodID, m.Name, m.IsClosed, m.ClosedBy, m.ClosedAt, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return mapWriteError(err, "period "+m.PeriodID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: period %s", apperrors.ErrNotFound, m.PeriodID)
	}
	return nil
}
