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

type PgxVoucherRepository struct {
	BaseRepository
}

func newPgxVoucherRepository(pool *pgxpool.Pool) *PgxVoucherRepository {
	return &PgxVoucherRepository{BaseRepository{db: pool}}
}

var _ portsrepo.VoucherRepositoryFacade = (*PgxVoucherRepository)(nil)

var voucherColumns = append([]string{
	"voucher_id", "voucher_number", "voucher_type", "entity_type", "entity_id", "voucher_date",
	"narration", "total_debit", "total_credit", "status", "is_locked", "is_auto", "event_type",
	"source_ref", "vendor_id", "is_reversed", "reversal_of_id", "reversed_by_id", "reversal_reason",
	"posted_by", "posted_at", "locked_by", "locked_at", "cancelled_by", "cancelled_at", "cancel_reason",
}, auditColumns...)

var draftEntryColumns = []string{
	"entry_id", "voucher_id", "line_no", "account_id", "debit", "credit", "cost_center", "department", "reference",
}

func scanVoucher(row pgx.CollectableRow) (domain.Voucher, error) {
	m, err := pgx.RowToStructByName[models.Voucher](row)
	if err != nil {
		return domain.Voucher{}, err
	}
	return mapping.ToDomainVoucher(m), nil
}

func scanDraftEntry(row pgx.CollectableRow) (domain.DraftEntry, error) {
	m, err := pgx.RowToStructByName[models.DraftEntry](row)
	if err != nil {
		return domain.DraftEntry{}, err
	}
	return mapping.ToDomainDraftEntry(m), nil
}

// SaveVoucher inserts the voucher header and its draft entries in one batch.
func (r *PgxVoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher) error {
	m := mapping.ToModelVoucher(voucher)
	batch := &pgx.Batch{}
	batch.Queue(
		fmt.Sprintf(`INSERT INTO vouchers (%s) VALUES (%s)`, columns("", voucherColumns...), placeholders(len(voucherColumns))),
		m.VoucherID, m.VoucherNumber, m.VoucherType, m.EntityType, m.EntityID, m.VoucherDate,
		m.Narration, m.TotalDebit, m.TotalCredit, m.Status, m.IsLocked, m.IsAuto, m.EventType,
		m.SourceRef, m.VendorID, m.IsReversed, m.ReversalOfID, m.ReversedByID, m.ReversalReason,
		m.PostedBy, m.PostedAt, m.LockedBy, m.LockedAt, m.CancelledBy, m.CancelledAt, m.CancelReason,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)

	draftQuery := fmt.Sprintf(`INSERT INTO voucher_draft_entries (%s) VALUES (%s)`,
		columns("", draftEntryColumns...), placeholders(len(draftEntryColumns)))
	for _, e := range voucher.Entries {
		de := mapping.ToModelDraftEntry(e)
		batch.Queue(draftQuery,
			de.EntryID, de.VoucherID, de.LineNo, de.AccountID, de.Debit, de.Credit, de.CostCenter, de.Department, de.Reference)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return mapWriteError(err, "voucher "+m.VoucherNumber)
	}
	return nil
}

// loadVoucher reads the header with headerSQL, then the draft and ledger lines.
func (r *PgxVoucherRepository) loadVoucher(ctx context.Context, headerSQL string, voucherID string) (*domain.Voucher, error) {
	rows, err := r.db.Query(ctx, headerSQL, voucherID)
	if err != nil {
		return nil, mapReadError(err, "voucher "+voucherID)
	}
	v, err := pgx.CollectExactlyOneRow(rows, scanVoucher)
	if err != nil {
		return nil, mapReadError(err, "voucher "+voucherID)
	}

	batch := &pgx.Batch{}
	batch.Queue(
		fmt.Sprintf(`SELECT %s FROM voucher_draft_entries WHERE voucher_id = $1 ORDER BY line_no`, columns("", draftEntryColumns...)),
		voucherID,
	).Query(func(rows pgx.Rows) error {
		v.Entries, err = pgx.CollectRows(rows, scanDraftEntry)
		return err
	})
	batch.Queue(
		fmt.Sprintf(`SELECT %s FROM ledger_entries WHERE voucher_id = $1 ORDER BY line_no`, columns("", ledgerEntryColumns...)),
		voucherID,
	).Query(func(rows pgx.Rows) error {
		v.LedgerEntries, err = pgx.CollectRows(rows, scanLedgerEntry)
		return err
	})
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return nil, mapReadError(err, "voucher lines "+voucherID)
	}
	if len(v.Entries) == 0 {
		v.Entries = nil
	}
	if len(v.LedgerEntries) == 0 {
		v.LedgerEntries = nil
	}
	return &v, nil
}

// FindVoucherByID retrieves a voucher with its lines.
func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	query := fmt.Sprintf(`SELECT %s FROM vouchers WHERE voucher_id = $1`, columns("", voucherColumns...))
	return r.loadVoucher(ctx, query, voucherID)
}

// FindVoucherForUpdate retrieves a voucher and holds its row lock until the transaction ends.
func (r *PgxVoucherRepository) FindVoucherForUpdate(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	query := fmt.Sprintf(`SELECT %s FROM vouchers WHERE voucher_id = $1 FOR UPDATE`, columns("", voucherColumns...))
	return r.loadVoucher(ctx, query, voucherID)
}

// ListVouchers retrieves a page of voucher headers, newest first.
func (r *PgxVoucherRepository) ListVouchers(ctx context.Context, filter domain.VoucherFilter, limit int, offset int) ([]domain.Voucher, int, error) {
	where := &whereClause{}
	if filter.Entity != nil {
		where.add("entity_type = $%d", string(filter.Entity.Type))
		where.add("entity_id = $%d", filter.Entity.ID)
	}
	if filter.Status != nil {
		where.add("status = $%d", string(*filter.Status))
	}
	if filter.VoucherType != nil {
		where.add("voucher_type = $%d", string(*filter.VoucherType))
	}
	if filter.VendorID != "" {
		where.add("vendor_id = $%d", filter.VendorID)
	}
	if filter.From != nil {
		where.add("voucher_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		where.add("voucher_date <= $%d", *filter.To)
	}
	vouchers, total, err := collectPage(ctx, r.db, columns("", voucherColumns...), "vouchers", where,
		"voucher_date DESC, created_at DESC, voucher_number DESC", limit, offset, scanVoucher)
	if err != nil {
		return nil, 0, mapReadError(err, "vouchers")
	}
	return vouchers, total, nil
}

// ListPostedVendorVouchers returns POSTED headers that concern a vendor, oldest first.
func (r *PgxVoucherRepository) ListPostedVendorVouchers(ctx context.Context, vendorID string) ([]domain.Voucher, error) {
	where := &whereClause{}
	where.add("status = $%d", string(domain.VoucherPosted))
	where.add("vendor_id <> $%d", "")
	if vendorID != "" {
		where.add("vendor_id = $%d", vendorID)
	}
	query := fmt.Sprintf(`SELECT %s FROM vouchers%s ORDER BY voucher_date, created_at, voucher_number`,
		columns("", voucherColumns...), where.String())
	rows, err := r.db.Query(ctx, query, where.args...)
	if err != nil {
		return nil, mapReadError(err, "vendor vouchers")
	}
	vouchers, err := pgx.CollectRows(rows, scanVoucher)
	if err != nil {
		return nil, mapReadError(err, "vendor vouchers")
	}
	return vouchers, nil
}

// DeleteDraftEntries removes a voucher's draft lines.
func (r *PgxVoucherRepository) DeleteDraftEntries(ctx context.Context, voucherID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM voucher_draft_entries WHERE voucher_id = $1`, voucherID); err != nil {
		return mapWriteError(err, "draft entries of "+voucherID)
	}
	return nil
}

// transition runs a conditional UPDATE. When no row matched it tells a missing voucher
// from one in the wrong state.
func (r *PgxVoucherRepository) transition(ctx context.Context, voucherID string, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, append([]any{voucherID}, args...)...)
	if err != nil {
		return mapWriteError(err, "voucher "+voucherID)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var number, status string
	err = r.db.QueryRow(ctx, `SELECT voucher_number, status FROM vouchers WHERE voucher_id = $1`, voucherID).Scan(&number, &status)
	if err != nil {
		return mapReadError(err, "voucher "+voucherID)
	}
	return fmt.Errorf("%w: voucher %s is %s", apperrors.ErrInvalidState, number, status)
}

// MarkVoucherPosted flips an unlocked DRAFT to POSTED.
func (r *PgxVoucherRepository) MarkVoucherPosted(ctx context.Context, voucherID string, actorID string, at time.Time) error {
	return r.transition(ctx, voucherID, `
		UPDATE vouchers
		SET status = 'POSTED', posted_by = $2, posted_at = $3, last_updated_by = $2, last_updated_at = $3
		WHERE voucher_id = $1 AND status = 'DRAFT' AND NOT is_locked`,
		actorID, at)
}

// MarkVoucherLocked locks an unlocked POSTED voucher.
func (r *PgxVoucherRepository) MarkVoucherLocked(ctx context.Context, voucherID string, actorID string, at time.Time) error {
	return r.transition(ctx, voucherID, `
		UPDATE vouchers
		SET is_locked = TRUE, locked_by = $2, locked_at = $3, last_updated_by = $2, last_updated_at = $3
		WHERE voucher_id = $1 AND status = 'POSTED' AND NOT is_locked`,
		actorID, at)
}

// MarkVoucherReversed flips an unlocked POSTED voucher to REVERSED.
func (r *PgxVoucherRepository) MarkVoucherReversed(ctx context.Context, voucherID string, reversedByID string, reason string, actorID string, at time.Time) error {
	return r.transition(ctx, voucherID, `
		UPDATE vouchers
		SET status = 'REVERSED', is_reversed = TRUE, reversed_by_id = $2, reversal_reason = $3,
		    last_updated_by = $4, last_updated_at = $5
		WHERE voucher_id = $1 AND status = 'POSTED' AND NOT is_locked AND NOT is_reversed`,
		reversedByID, reason, actorID, at)
}

// MarkVoucherCancelled flips a DRAFT to CANCELLED.
func (r *PgxVoucherRepository) MarkVoucherCancelled(ctx context.Context, voucherID string, reason string, actorID string, at time.Time) error {
	return r.transition(ctx, voucherID, `
		UPDATE vouchers
		SET status = 'CANCELLED', cancelled_by = $2, cancelled_at = $3, cancel_reason = $4,
		    last_updated_by = $2, last_updated_at = $3
		WHERE voucher_id = $1 AND status = 'DRAFT'`,
		actorID, at, reason)
}
