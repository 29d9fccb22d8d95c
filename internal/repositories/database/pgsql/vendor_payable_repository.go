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
)

type PgxVendorPayableRepository struct {
	BaseRepository
}

func newPgxVendorPayableRepository(pool *pgxpool.Pool) *PgxVendorPayableRepository {
	return &PgxVendorPayableRepository{BaseRepository{db: pool}}
}

var _ portsrepo.VendorPayableRepositoryFacade = (*PgxVendorPayableRepository)(nil)

var vendorPayableColumns = []string{
	"vendor_id", "total_sales", "total_commission", "total_refunds", "total_paid", "total_payable",
	"balance", "order_count", "last_voucher_id", "updated_at", "last_reconciled_at",
}

func scanVendorPayable(row pgx.CollectableRow) (domain.VendorPayable, error) {
	m, err := pgx.RowToStructByName[models.VendorPayable](row)
	if err != nil {
		return domain.VendorPayable{}, err
	}
	return mapping.ToDomainVendorPayable(m), nil
}

func (r *PgxVendorPayableRepository) FindVendorPayable(ctx context.Context, vendorID string) (*domain.VendorPayable, error) {
	return r.find(ctx, vendorID, "")
}

func (r *PgxVendorPayableRepository) find(ctx context.Context, vendorID string, lock string) (*domain.VendorPayable, error) {
	query := fmt.Sprintf(`SELECT %s FROM vendor_payables WHERE vendor_id = $1 %s`, columns("", vendorPayableColumns...), lock)
	rows, err := r.db.Query(ctx, query, vendorID)
	if err != nil {
		return nil, mapReadError(err, "vendor payable "+vendorID)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanVendorPayable)
	if err != nil {
		return nil, mapReadError(err, "vendor payable "+vendorID)
	}
	return &p, nil
}

func (r *PgxVendorPayableRepository) ListVendorPayables(ctx context.Context) ([]domain.VendorPayable, error) {
	query := fmt.Sprintf(`SELECT %s FROM vendor_payables ORDER BY vendor_id`, columns("", vendorPayableColumns...))
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, mapReadError(err, "vendor payables")
	}
	payables, err := pgx.CollectRows(rows, scanVendorPayable)
	if err != nil {
		return nil, mapReadError(err, "vendor payables")
	}
	return payables, nil
}

// ApplyVendorPayableDelta makes sure the row exists, locks it and applies the delta
// with the same arithmetic the domain uses.
func (r *PgxVendorPayableRepository) ApplyVendorPayableDelta(ctx context.Context, delta domain.VendorPayableDelta, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO vendor_payables (vendor_id, updated_at) VALUES ($1, $2)
		ON CONFLICT (vendor_id) DO NOTHING`, delta.VendorID, at)
	if err != nil {
		return mapWriteError(err, "vendor payable "+delta.VendorID)
	}
	p, err := r.find(ctx, delta.VendorID, "FOR UPDATE")
	if err != nil {
		return err
	}
	p.Apply(delta, at)
	return r.SaveVendorPayable(ctx, *p)
}

// SaveVendorPayable upserts the whole row.
func (r *PgxVendorPayableRepository) SaveVendorPayable(ctx context.Context, payable domain.VendorPayable) error {
	m := mapping.ToModelVendorPayable(payable)
	query := fmt.Sprintf(`
		INSERT INTO vendor_payables (%s) VALUES (%s)
		ON CONFLICT (vendor_id) DO UPDATE SET
			total_sales = EXCLUDED.total_sales,
			total_commission = EXCLUDED.total_commission,
			total_refunds = EXCLUDED.total_refunds,
			total_paid = EXCLUDED.total_paid,
			total_payable = EXCLUDED.total_payable,
			balance = EXCLUDED.balance,
			order_count = EXCLUDED.order_count,
			last_voucher_id = EXCLUDED.last_voucher_id,
			updated_at = EXCLUDED.updated_at,
			last_reconciled_at = EXCLUDED.last_reconciled_at`,
		columns("", vendorPayableColumns...), placeholders(len(vendorPayableColumns)))
	_, err := r.db.Exec(ctx, query,
		m.VendorID, m.TotalSales, m.TotalCommission, m.TotalRefunds, m.TotalPaid, m.TotalPayable,
		m.Balance, m.OrderCount, m.LastVoucherID, m.UpdatedAt, m.LastReconciledAt)
	if err != nil {
		return mapWriteError(err, "vendor payable "+m.VendorID)
	}
	return nil
}
