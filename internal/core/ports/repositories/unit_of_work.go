package repositories

import "context"

// TxRepositories exposes every repository bound to one open transaction.
// Writes made through it commit or roll back together.
type TxRepositories interface {
	Accounts() AccountRepositoryFacade
	Vouchers() VoucherRepositoryFacade
	Ledger() LedgerRepositoryFacade
	Periods() PeriodRepositoryFacade
	VendorPayables() VendorPayableRepositoryFacade
	Commissions() CommissionRepositoryFacade
	Payments() PaymentRepositoryFacade
	ProcessedEvents() ProcessedEventRepository
	Sequences() SequenceRepository
	Audit() AuditRepositoryFacade
	IntegrationKeys() IntegrationKeyRepositoryFacade
}

// UnitOfWork runs fn inside a single transaction. The transaction commits when fn
// returns nil and rolls back otherwise; fn's error is returned unchanged.
//
// Code running inside fn must only touch the store through tx.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepositories) error) error
}
