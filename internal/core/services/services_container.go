package services

import (
	"errors"

	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// access is required; actors may be nil.
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	access portssvc.EntityAccessValidator,
	actors portssvc.ActorDirectory,
	opts ...Option,
) (*portssvc.ServiceContainer, error) {
	if access == nil {
		return nil, errors.New("service container requires an entity access validator")
	}

	container := &portssvc.ServiceContainer{}

	// Audit first; every writer records through it
	audit := NewAuditService(repos.AuditRepo, actors, opts...)
	container.Audit = audit

	periods, err := NewPeriodService(repos.UnitOfWork, repos.PeriodRepo, access, audit, cfg.ClosedPeriodPolicy, opts...)
	if err != nil {
		return nil, err
	}
	container.Period = periods

	payables, err := NewVendorPayableService(repos.UnitOfWork, access, audit, opts...)
	if err != nil {
		return nil, err
	}
	container.VendorPayable = payables

	if container.Account, err = NewAccountService(repos.UnitOfWork, repos.AccountRepo, access, audit, opts...); err != nil {
		return nil, err
	}

	if container.Voucher, err = NewVoucherService(repos.UnitOfWork, repos.VoucherRepo, access, audit, periods, payables, opts...); err != nil {
		return nil, err
	}

	container.AutoVoucher = NewAutoVoucherService(repos.UnitOfWork, container.Voucher, audit, opts...)
	container.Reporting = NewReportingService(repos.ReportingRepo, repos.LedgerRepo, repos.VendorPayableRepo, repos.CommissionRepo, opts...)
	container.Integrity = NewIntegrityService(repos.LedgerRepo, opts...)

	if container.IntegrationKey, err = NewIntegrationKeyService(repos.UnitOfWork, repos.IntegrationKeyRepo, access, audit, opts...); err != nil {
		return nil, err
	}

	return container, nil
}
