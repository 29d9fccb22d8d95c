package pgsql

import (
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UnitOfWork:         NewStore(dbPool),
		AccountRepo:        newPgxAccountRepository(dbPool),
		VoucherRepo:        newPgxVoucherRepository(dbPool),
		LedgerRepo:         newPgxLedgerRepository(dbPool),
		ReportingRepo:      newReportingRepository(dbPool),
		PeriodRepo:         newPgxPeriodRepository(dbPool),
		VendorPayableRepo:  newPgxVendorPayableRepository(dbPool),
		CommissionRepo:     newPgxCommissionRepository(dbPool),
		PaymentRepo:        newPgxPaymentRepository(dbPool),
		AuditRepo:          newPgxAuditRepository(dbPool),
		IntegrationKeyRepo: newPgxIntegrationKeyRepository(dbPool),
	}
}
