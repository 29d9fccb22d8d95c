package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/marketplace_ledger/internal/models"
	"github.com/SscSPs/marketplace_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{BaseRepository{db: db}}
}

type accountTotalsRow struct {
	models.Account
	TotalDebit  decimal.Decimal `db:"total_debit"`
	TotalCredit decimal.Decimal `db:"total_credit"`
}

// GetAccountTotals sums ledger movement per account of the entity within [from, to].
// The date window sits in the join so accounts without movement still appear.
func (r *reportingRepository) GetAccountTotals(ctx context.Context, entity domain.EntityRef, from *time.Time, to time.Time, activeOnly bool) ([]domain.AccountTotals, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			COALESCE(SUM(le.debit), 0) AS total_debit,
			COALESCE(SUM(le.credit), 0) AS total_credit
		FROM accounts a
		LEFT JOIN ledger_entries le
			ON le.account_id = a.account_id
			AND ($3::timestamptz IS NULL OR le.entry_date >= $3)
			AND le.entry_date <= $4
		WHERE a.entity_type = $1 AND a.entity_id = $2
			AND (NOT $5 OR a.is_active)
		GROUP BY a.account_id
		ORDER BY a.code`, columns("a", accountColumns...))

	rows, err := r.db.Query(ctx, query, string(entity.Type), entity.ID, from, to, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("error querying account totals: %w", err)
	}
	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AccountTotals, error) {
		m, err := pgx.RowToStructByName[accountTotalsRow](row)
		if err != nil {
			return domain.AccountTotals{}, err
		}
		return domain.AccountTotals{
			Account: mapping.ToDomainAccount(m.Account),
			Debit:   m.TotalDebit,
			Credit:  m.TotalCredit,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning account totals: %w", err)
	}
	return totals, nil
}
