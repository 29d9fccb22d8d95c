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

type PgxCommissionRepository struct {
	BaseRepository
}

func newPgxCommissionRepository(pool *pgxpool.Pool) *PgxCommissionRepository {
	return &PgxCommissionRepository{BaseRepository{db: pool}}
}

var _ portsrepo.CommissionRepositoryFacade = (*PgxCommissionRepository)(nil)

var commissionColumns = []string{
	"commission_id", "order_id", "vendor_id", "order_amount", "rate", "amount", "voucher_id", "status", "created_at",
}

func scanCommission(row pgx.CollectableRow) (domain.CommissionRecord, error) {
	m, err := pgx.RowToStructByName[models.CommissionRecord](row)
	if err != nil {
		return domain.CommissionRecord{}, err
	}
	return mapping.ToDomainCommission(m), nil
}

func (r *PgxCommissionRepository) SaveCommission(ctx context.Context, record domain.CommissionRecord) error {
	m := mapping.ToModelCommission(record)
	query := fmt.Sprintf(`INSERT INTO commission_records (%s) VALUES (%s)`, columns("", commissionColumns...), placeholders(len(commissionColumns)))
	_, err := r.db.Exec(ctx, query,
		m.CommissionID, m.OrderID, m.VendorID, m.OrderAmount, m.Rate, m.Amount, m.VoucherID, m.Status, m.CreatedAt)
	if err != nil {
		return mapWriteError(err, "commission for order "+m.OrderID)
	}
	return nil
}

func (r *PgxCommissionRepository) FindCommissionByVoucherID(ctx context.Context, voucherID string) (*domain.CommissionRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM commission_records WHERE voucher_id = $1`, columns("", commissionColumns...))
	rows, err := r.db.Query(ctx, query, voucherID)
	if err != nil {
		return nil, mapReadError(err, "commission for voucher "+voucherID)
	}
	rec, err := pgx.CollectExactlyOneRow(rows, scanCommission)
	if err != nil {
		return nil, mapReadError(err, "commission for voucher "+voucherID)
	}
	return &rec, nil
}

// ListCommissions returns a page of commission records, newest first.
func (r *PgxCommissionRepository) ListCommissions(ctx context.Context, vendorID string, limit int, offset int) ([]domain.CommissionRecord, int, error) {
	where := &whereClause{}
	if vendorID != "" {
		where.add("vendor_id = $%d", vendorID)
	}
	records, total, err := collectPage(ctx, r.db, columns("", commissionColumns...), "commission_records", where,
		"created_at DESC, order_id DESC", limit, offset, scanCommission)
	if err != nil {
		return nil, 0, mapReadError(err, "commissions")
	}
	return records, total, nil
}

func (r *PgxCommissionRepository) UpdateCommissionStatus(ctx context.Context, commissionID string, status domain.CommissionStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE commission_records SET status = $2 WHERE commission_id = $1`, commissionID, string(status))
	if err != nil {
		return mapWriteError(err, "commission "+commissionID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: commission %s", apperrors.ErrNotFound, commissionID)
	}
	return nil
}

type PgxPaymentRepository struct {
	BaseRepository
}

func newPgxPaymentRepository(pool *pgxpool.Pool) *PgxPaymentRepository {
	return &PgxPaymentRepository{BaseRepository{db: pool}}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

var paymentColumns = []string{
	"payment_id", "order_id", "vendor_id", "amount", "commission", "status", "settlement_id", "settled_at", "voucher_id", "created_at",
}

func scanPayment(row pgx.CollectableRow) (domain.PaymentTransaction, error) {
	m, err := pgx.RowToStructByName[models.PaymentTransaction](row)
	if err != nil {
		return domain.PaymentTransaction{}, err
	}
	return mapping.ToDomainPayment(m), nil
}

func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.PaymentTransaction) error {
	m := mapping.ToModelPayment(payment)
	query := fmt.Sprintf(`INSERT INTO payment_transactions (%s) VALUES (%s)`, columns("", paymentColumns...), placeholders(len(paymentColumns)))
	_, err := r.db.Exec(ctx, query,
		m.PaymentID, m.OrderID, m.VendorID, m.Amount, m.Commission, m.Status, m.SettlementID, m.SettledAt, m.VoucherID, m.CreatedAt)
	if err != nil {
		return mapWriteError(err, "payment "+m.PaymentID)
	}
	return nil
}

// FindPaymentsForUpdate locks the payments in id order so concurrent settlements cannot deadlock.
func (r *PgxPaymentRepository) FindPaymentsForUpdate(ctx context.Context, paymentIDs []string) (map[string]domain.PaymentTransaction, error) {
	out := make(map[string]domain.PaymentTransaction, len(paymentIDs))
	if len(paymentIDs) == 0 {
		return out, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM payment_transactions WHERE payment_id = ANY($1) ORDER BY payment_id FOR UPDATE`,
		columns("", paymentColumns...))
	rows, err := r.db.Query(ctx, query, paymentIDs)
	if err != nil {
		return nil, mapReadError(err, "payments")
	}
	payments, err := pgx.CollectRows(rows, scanPayment)
	if err != nil {
		return nil, mapReadError(err, "payments")
	}
	for _, p := range payments {
		out[p.PaymentID] = p
	}
	return out, nil
}

// MarkPaymentsSettled settles every listed payment or none of them.
func (r *PgxPaymentRepository) MarkPaymentsSettled(ctx context.Context, paymentIDs []string, settlementID string, at time.Time) error {
	current, err := r.FindPaymentsForUpdate(ctx, paymentIDs)
	if err != nil {
		return err
	}
	for _, id := range paymentIDs {
		p, ok := current[id]
		if !ok {
			return fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, id)
		}
		if p.Status != domain.PaymentPending {
			return fmt.Errorf("%w: payment %s is %s", apperrors.ErrInvalidState, id, p.Status)
		}
	}
	_, err = r.db.Exec(ctx, `
		UPDATE payment_transactions
		SET status = 'SETTLED', settlement_id = $2, settled_at = $3
		WHERE payment_id = ANY($1) AND status = 'PENDING'`,
		paymentIDs, settlementID, at)
	if err != nil {
		return mapWriteError(err, "payments of settlement "+settlementID)
	}
	return nil
}
