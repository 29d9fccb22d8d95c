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
	"github.com/shopspring/decimal"
)

// PgxLedgerRepository appends to and reads the ledger_entries table. The table has a
// trigger rejecting UPDATE and DELETE.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository{db: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

var ledgerEntryColumns = []string{
	"entry_id", "voucher_id", "line_no", "entity_type", "entity_id", "account_id", "entry_date",
	"debit", "credit", "cost_center", "department", "reference", "created_at", "created_by",
}

func scanLedgerEntry(row pgx.CollectableRow) (domain.LedgerEntry, error) {
	m, err := pgx.RowToStructByName[models.LedgerEntry](row)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	return mapping.ToDomainLedgerEntry(m), nil
}

// InsertLedgerEntries appends the entries in one batch.
func (r *PgxLedgerRepository) InsertLedgerEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO ledger_entries (%s) VALUES (%s)`,
		columns("", ledgerEntryColumns...), placeholders(len(ledgerEntryColumns)))

	batch := &pgx.Batch{}
	for _, e := range entries {
		m := mapping.ToModelLedgerEntry(e)
		batch.Queue(query,
			m.EntryID, m.VoucherID, m.LineNo, m.EntityType, m.EntityID, m.AccountID, m.EntryDate,
			m.Debit, m.Credit, m.CostCenter, m.Department, m.Reference, m.CreatedAt, m.CreatedBy)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return mapWriteError(err, "ledger entries of "+entries[0].VoucherID)
	}
	return nil
}

// ListLedgerEntriesByVoucher returns a voucher's ledger lines by line number.
func (r *PgxLedgerRepository) ListLedgerEntriesByVoucher(ctx context.Context, voucherID string) ([]domain.LedgerEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM ledger_entries WHERE voucher_id = $1 ORDER BY line_no`, columns("", ledgerEntryColumns...))
	rows, err := r.db.Query(ctx, query, voucherID)
	if err != nil {
		return nil, mapReadError(err, "ledger entries")
	}
	entries, err := pgx.CollectRows(rows, scanLedgerEntry)
	if err != nil {
		return nil, mapReadError(err, "ledger entries")
	}
	return entries, nil
}

// ledgerLineRow is a ledger entry joined with its voucher and account labels.
type ledgerLineRow struct {
	models.LedgerEntry
	VoucherNumber string `db:"voucher_number"`
	Narration     string `db:"narration"`
	AccountCode   string `db:"account_code"`
	AccountName   string `db:"account_name"`
}

func scanLedgerLine(row pgx.CollectableRow) (domain.LedgerLine, error) {
	m, err := pgx.RowToStructByName[ledgerLineRow](row)
	if err != nil {
		return domain.LedgerLine{}, err
	}
	return domain.LedgerLine{
		LedgerEntry:   mapping.ToDomainLedgerEntry(m.LedgerEntry),
		VoucherNumber: m.VoucherNumber,
		Narration:     m.Narration,
		AccountCode:   m.AccountCode,
		AccountName:   m.AccountName,
	}, nil
}

// ListLedgerLines returns a page of ledger lines, newest first.
func (r *PgxLedgerRepository) ListLedgerLines(ctx context.Context, filter domain.LedgerFilter, limit int, offset int) ([]domain.LedgerLine, int, error) {
	where := &whereClause{}
	where.add("le.entity_type = $%d", string(filter.Entity.Type))
	where.add("le.entity_id = $%d", filter.Entity.ID)
	if filter.AccountID != "" {
		where.add("le.account_id = $%d", filter.AccountID)
	}
	if filter.VoucherID != "" {
		where.add("le.voucher_id = $%d", filter.VoucherID)
	}
	if filter.From != nil {
		where.add("le.entry_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		where.add("le.entry_date <= $%d", *filter.To)
	}

	selectList := columns("le", ledgerEntryColumns...) +
		", v.voucher_number, v.narration, a.code AS account_code, a.name AS account_name"
	from := `ledger_entries le
		JOIN vouchers v ON v.voucher_id = le.voucher_id
		JOIN accounts a ON a.account_id = le.account_id`

	lines, total, err := collectPage(ctx, r.db, selectList, from, where,
		"le.entry_date DESC, le.created_at DESC, v.voucher_number DESC, le.line_no DESC", limit, offset, scanLedgerLine)
	if err != nil {
		return nil, 0, mapReadError(err, "ledger lines")
	}
	return lines, total, nil
}

// voucherTotalsRow is a voucher header with its ledger sums and remaining draft lines.
type voucherTotalsRow struct {
	models.Voucher
	LedgerDebit  decimal.Decimal `db:"ledger_debit"`
	LedgerCredit decimal.Decimal `db:"ledger_credit"`
	DraftsLeft   int             `db:"drafts_left"`
}

// SumPostedVoucherLedgers totals the ledger of every POSTED or REVERSED voucher.
func (r *PgxLedgerRepository) SumPostedVoucherLedgers(ctx context.Context, entity *domain.EntityRef) ([]domain.VoucherLedgerTotals, error) {
	where := &whereClause{}
	where.add("v.status = ANY($%d)", []string{string(domain.VoucherPosted), string(domain.VoucherReversed)})
	if entity != nil {
		where.add("v.entity_type = $%d", string(entity.Type))
		where.add("v.entity_id = $%d", entity.ID)
	}
	query := fmt.Sprintf(`
		SELECT %s,
			COALESCE(SUM(le.debit), 0) AS ledger_debit,
			COALESCE(SUM(le.credit), 0) AS ledger_credit,
			(SELECT COUNT(*) FROM voucher_draft_entries d WHERE d.voucher_id = v.voucher_id) AS drafts_left
		FROM vouchers v
		LEFT JOIN ledger_entries le ON le.voucher_id = v.voucher_id%s
		GROUP BY v.voucher_id
		ORDER BY v.voucher_number`, columns("v", voucherColumns...), where.String())

	rows, err := r.db.Query(ctx, query, where.args...)
	if err != nil {
		return nil, mapReadError(err, "voucher ledger totals")
	}
	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.VoucherLedgerTotals, error) {
		m, err := pgx.RowToStructByName[voucherTotalsRow](row)
		if err != nil {
			return domain.VoucherLedgerTotals{}, err
		}
		return domain.VoucherLedgerTotals{
			Voucher:    mapping.ToDomainVoucher(m.Voucher),
			Debit:      m.LedgerDebit,
			Credit:     m.LedgerCredit,
			DraftsLeft: m.DraftsLeft,
		}, nil
	})
	if err != nil {
		return nil, mapReadError(err, "voucher ledger totals")
	}
	return totals, nil
}
