package pgsql

import (
	"context"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements portsrepo.UnitOfWork on a connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ portsrepo.UnitOfWork = (*Store)(nil)

// WithTx runs fn in a READ COMMITTED transaction. Row locks taken through the
// ...ForUpdate reads serialize competing writers.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.TxRepositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	// no-op once committed
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, newTxRepositories(tx, s.pool)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// txRepositories binds every repository to one transaction. Sequences stay on the
// pool so a rolled back transaction never hands the same number out twice.
type txRepositories struct {
	accounts    *PgxAccountRepository
	vouchers    *PgxVoucherRepository
	ledger      *PgxLedgerRepository
	periods     *PgxPeriodRepository
	payables    *PgxVendorPayableRepository
	commissions *PgxCommissionRepository
	payments    *PgxPaymentRepository
	events      *PgxProcessedEventRepository
	sequences   *PgxSequenceRepository
	audit       *PgxAuditRepository
	keys        *PgxIntegrationKeyRepository
}

func newTxRepositories(tx pgx.Tx, pool *pgxpool.Pool) *txRepositories {
	base := BaseRepository{db: tx}
	return &txRepositories{
		accounts:    &PgxAccountRepository{base},
		vouchers:    &PgxVoucherRepository{base},
		ledger:      &PgxLedgerRepository{base},
		periods:     &PgxPeriodRepository{base},
		payables:    &PgxVendorPayableRepository{base},
		commissions: &PgxCommissionRepository{base},
		payments:    &PgxPaymentRepository{base},
		events:      &PgxProcessedEventRepository{base},
		sequences:   &PgxSequenceRepository{BaseRepository{db: pool}},
		audit:       &PgxAuditRepository{base},
		keys:        &PgxIntegrationKeyRepository{base},
	}
}

func (t *txRepositories) Accounts() portsrepo.AccountRepositoryFacade             { return t.accounts }
func (t *txRepositories) Vouchers() portsrepo.VoucherRepositoryFacade             { return t.vouchers }
func (t *txRepositories) Ledger() portsrepo.LedgerRepositoryFacade                { return t.ledger }
func (t *txRepositories) Periods() portsrepo.PeriodRepositoryFacade               { return t.periods }
func (t *txRepositories) VendorPayables() portsrepo.VendorPayableRepositoryFacade { return t.payables }
func (t *txRepositories) Commissions() portsrepo.CommissionRepositoryFacade       { return t.commissions }
func (t *txRepositories) Payments() portsrepo.PaymentRepositoryFacade             { return t.payments }
func (t *txRepositories) ProcessedEvents() portsrepo.ProcessedEventRepository     { return t.events }
func (t *txRepositories) Sequences() portsrepo.SequenceRepository                 { return t.sequences }
func (t *txRepositories) Audit() portsrepo.AuditRepositoryFacade                  { return t.audit }
func (t *txRepositories) IntegrationKeys() portsrepo.IntegrationKeyRepositoryFacade {
	return t.keys
}

var _ portsrepo.TxRepositories = (*txRepositories)(nil)
