package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
)

type integrityService struct {
	BaseService
	ledgerRepo portsrepo.LedgerReader
}

// NewIntegrityService creates the ledger integrity checker.
func NewIntegrityService(ledger portsrepo.LedgerReader, opts ...Option) portssvc.IntegritySvc {
	svc := &integrityService{ledgerRepo: ledger}
	svc.apply(opts)
	return svc
}

// CheckIntegrity reports posted vouchers whose ledger entries are unbalanced, disagree
// with the header totals, are missing, or that still carry draft entries.
func (s *integrityService) CheckIntegrity(ctx context.Context, entity *domain.EntityRef) ([]domain.IntegrityIssue, error) {
	totals, err := s.ledgerRepo.SumPostedVoucherLedgers(ctx, entity)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum posted vouchers")
		return nil, err
	}

	issues := []domain.IntegrityIssue{}
	for _, t := range totals {
		issue := func(problem string) {
			issues = append(issues, domain.IntegrityIssue{
				VoucherID:     t.Voucher.VoucherID,
				VoucherNumber: t.Voucher.VoucherNumber,
				Problem:       problem,
				LedgerDebit:   t.Debit,
				LedgerCredit:  t.Credit,
			})
		}
		switch {
		case t.Debit.IsZero() && t.Credit.IsZero():
			issue("posted voucher has no ledger entries")
		case !t.Debit.Equal(t.Credit):
			issue("ledger entries are unbalanced")
		case !t.Debit.Equal(t.Voucher.TotalDebit) || !t.Credit.Equal(t.Voucher.TotalCredit):
			issue("ledger totals differ from voucher totals")
		}
		if t.DraftsLeft > 0 {
			issue("posted voucher still has draft entries")
		}
	}

	if len(issues) > 0 {
		s.LogWarn(ctx, "Ledger integrity issues found", slog.Int("issues", len(issues)))
	}
	return issues, nil
}
