package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
// The non-transactional repositories are used for reads; every write goes through
// UnitOfWork.
type RepositoryProvider struct {
	UnitOfWork         UnitOfWork
	AccountRepo        AccountRepositoryFacade
	VoucherRepo        VoucherRepositoryFacade
	LedgerRepo         LedgerRepositoryFacade
	ReportingRepo      ReportingRepository
	PeriodRepo         PeriodRepositoryFacade
	VendorPayableRepo  VendorPayableRepositoryFacade
	CommissionRepo     CommissionRepositoryFacade
	PaymentRepo        PaymentRepositoryFacade
	AuditRepo          AuditRepositoryFacade
	IntegrationKeyRepo IntegrationKeyRepositoryFacade
}
