package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// reportingService implements the ReportingSvc interface
type reportingService struct {
	BaseService
	reportingRepo  portsrepo.ReportingRepository
	ledgerRepo     portsrepo.LedgerReader
	payableRepo    portsrepo.VendorPayableReader
	commissionRepo portsrepo.CommissionRepositoryFacade
	group          singleflight.Group
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(
	reporting portsrepo.ReportingRepository,
	ledger portsrepo.LedgerReader,
	payables portsrepo.VendorPayableReader,
	commissions portsrepo.CommissionRepositoryFacade,
	opts ...Option,
) portssvc.ReportingSvc {
	svc := &reportingService{
		reportingRepo:  reporting,
		ledgerRepo:     ledger,
		payableRepo:    payables,
		commissionRepo: commissions,
	}
	svc.apply(opts)
	return svc
}

// Ensure reportingService implements the ReportingSvc interface
var _ portssvc.ReportingSvc = (*reportingService)(nil)

// shared collapses concurrent identical report requests into one computation.
func shared[T any](s *reportingService, key string, fn func() (*T, error)) (*T, error) {
	v, err, _ := s.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// asOf resolves an optional report date and the singleflight key fragment for it.
func (s *reportingService) asOf(asOf *time.Time) (time.Time, string) {
	if asOf == nil {
		return s.now(), "now"
	}
	return *asOf, asOf.Format(time.RFC3339Nano)
}

// TrialBalance generates a trial balance report as of a specific date
func (s *reportingService) TrialBalance(ctx context.Context, entity domain.EntityRef, asOf *time.Time) (*domain.TrialBalance, error) {
	if err := entity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	at, atKey := s.asOf(asOf)
	key := fmt.Sprintf("tb|%s|%s", entity.ScopeKey(), atKey)

	return shared(s, key, func() (*domain.TrialBalance, error) {
		totals, err := s.reportingRepo.GetAccountTotals(ctx, entity, nil, at, true)
		if err != nil {
			s.LogError(ctx, err, "Failed to retrieve trial balance data",
				slog.String("entity", entity.String()),
				slog.String("asOf", at.Format(time.RFC3339)))
			return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
		}

		report := &domain.TrialBalance{
			Entity:      entity,
			AsOf:        at,
			Rows:        make([]domain.TrialBalanceRow, 0, len(totals)),
			TotalDebit:  decimal.Zero,
			TotalCredit: decimal.Zero,
		}
		for _, t := range totals {
			report.Rows = append(report.Rows, domain.TrialBalanceRow{
				AccountID:   t.Account.AccountID,
				AccountCode: t.Account.Code,
				AccountName: t.Account.Name,
				Class:       t.Account.Class,
				Nature:      t.Account.Nature,
				Debit:       t.Debit,
				Credit:      t.Credit,
				Balance:     accounting.NatureBalance(t.Account.Nature, t.Debit, t.Credit),
			})
			report.TotalDebit = report.TotalDebit.Add(t.Debit)
			report.TotalCredit = report.TotalCredit.Add(t.Credit)
		}
		report.Difference = report.TotalDebit.Sub(report.TotalCredit)
		if !report.Difference.IsZero() {
			s.LogWarn(ctx, "Trial balance does not balance",
				slog.String("entity", entity.String()),
				slog.String("difference", report.Difference.String()))
		}

		s.LogInfo(ctx, "Trial balance report generated successfully",
			slog.String("entity", entity.String()),
			slog.Int("row_count", len(report.Rows)))
		return report, nil
	})
}

// ProfitAndLoss generates a profit and loss report for a specific period
func (s *reportingService) ProfitAndLoss(ctx context.Context, entity domain.EntityRef, start, end time.Time) (*domain.ProfitAndLoss, error) {
	if err := entity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date precedes start date", apperrors.ErrValidation)
	}
	key := fmt.Sprintf("pl|%s|%s|%s", entity.ScopeKey(), start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano))

	return shared(s, key, func() (*domain.ProfitAndLoss, error) {
		totals, err := s.reportingRepo.GetAccountTotals(ctx, entity, &start, end, false)
		if err != nil {
			s.LogError(ctx, err, "Failed to retrieve profit and loss data", slog.String("entity", entity.String()))
			return nil, fmt.Errorf("failed to retrieve profit and loss data: %w", err)
		}

		report := &domain.ProfitAndLoss{
			Entity:       entity,
			StartDate:    start,
			EndDate:      end,
			Income:       []domain.AccountAmount{},
			Expenses:     []domain.AccountAmount{},
			TotalIncome:  decimal.Zero,
			TotalExpense: decimal.Zero,
		}
		for _, t := range totals {
			if t.Debit.IsZero() && t.Credit.IsZero() {
				continue
			}
			switch t.Account.Class {
			case domain.Income:
				line := amountLine(t, t.Credit.Sub(t.Debit))
				report.Income = append(report.Income, line)
				report.TotalIncome = report.TotalIncome.Add(line.NetAmount)
			case domain.Expense:
				line := amountLine(t, t.Debit.Sub(t.Credit))
				report.Expenses = append(report.Expenses, line)
				report.TotalExpense = report.TotalExpense.Add(line.NetAmount)
			}
		}
		report.NetProfit = report.TotalIncome.Sub(report.TotalExpense)

		s.LogInfo(ctx, "Profit and loss report generated successfully",
			slog.String("entity", entity.String()),
			slog.Int("income_accounts", len(report.Income)),
			slog.Int("expense_accounts", len(report.Expenses)))
		return report, nil
	})
}

// BalanceSheet generates a balance sheet report as of a specific date. Income and
// expense balances are folded into retained earnings.
func (s *reportingService) BalanceSheet(ctx context.Context, entity domain.EntityRef, asOf *time.Time) (*domain.BalanceSheet, error) {
	if err := entity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	at, atKey := s.asOf(asOf)
	key := fmt.Sprintf("bs|%s|%s", entity.ScopeKey(), atKey)

	return shared(s, key, func() (*domain.BalanceSheet, error) {
		totals, err := s.reportingRepo.GetAccountTotals(ctx, entity, nil, at, false)
		if err != nil {
			s.LogError(ctx, err, "Failed to retrieve balance sheet data", slog.String("entity", entity.String()))
			return nil, fmt.Errorf("failed to retrieve balance sheet data: %w", err)
		}

		report := &domain.BalanceSheet{
			Entity:           entity,
			AsOf:             at,
			Assets:           []domain.AccountAmount{},
			Liabilities:      []domain.AccountAmount{},
			Equity:           []domain.AccountAmount{},
			TotalAssets:      decimal.Zero,
			TotalLiabilities: decimal.Zero,
			TotalEquity:      decimal.Zero,
			RetainedEarnings: decimal.Zero,
		}
		for _, t := range totals {
			if t.Debit.IsZero() && t.Credit.IsZero() {
				continue
			}
			balance := accounting.NatureBalance(t.Account.Nature, t.Debit, t.Credit)
			switch t.Account.Class {
			case domain.Asset:
				report.Assets = append(report.Assets, amountLine(t, balance))
				report.TotalAssets = report.TotalAssets.Add(balance)
			case domain.Liability:
				report.Liabilities = append(report.Liabilities, amountLine(t, balance))
				report.TotalLiabilities = report.TotalLiabilities.Add(balance)
			case domain.Equity:
				report.Equity = append(report.Equity, amountLine(t, balance))
				report.TotalEquity = report.TotalEquity.Add(balance)
			case domain.Income:
				report.RetainedEarnings = report.RetainedEarnings.Add(t.Credit.Sub(t.Debit))
			case domain.Expense:
				report.RetainedEarnings = report.RetainedEarnings.Sub(t.Debit.Sub(t.Credit))
			}
		}
		report.Difference = report.TotalAssets.Sub(report.TotalLiabilities.Add(report.TotalEquity).Add(report.RetainedEarnings))

		s.LogInfo(ctx, "Balance sheet report generated successfully",
			slog.String("entity", entity.String()),
			slog.Int("asset_accounts", len(report.Assets)),
			slog.Int("liability_accounts", len(report.Liabilities)),
			slog.Int("equity_accounts", len(report.Equity)))
		return report, nil
	})
}

func amountLine(t domain.AccountTotals, amount decimal.Decimal) domain.AccountAmount {
	return domain.AccountAmount{
		AccountID: t.Account.AccountID,
		Code:      t.Account.Code,
		Name:      t.Account.Name,
		NetAmount: amount,
	}
}

// Ledger returns a newest-first page of ledger lines. The running balance accumulates
// debit minus credit from the oldest line of the page.
func (s *reportingService) Ledger(ctx context.Context, filter domain.LedgerFilter, page domain.PageRequest) ([]domain.LedgerLine, int, error) {
	if err := filter.Entity.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, fmt.Errorf("%w: end date precedes start date", apperrors.ErrValidation)
	}
	lines, total, err := s.ledgerRepo.ListLedgerLines(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger lines", slog.String("entity", filter.Entity.String()))
		return nil, 0, fmt.Errorf("failed to list ledger lines: %w", err)
	}
	running := decimal.Zero
	for i := len(lines) - 1; i >= 0; i-- {
		running = running.Add(lines[i].Debit).Sub(lines[i].Credit)
		lines[i].RunningBalance = running
	}
	if lines == nil {
		lines = []domain.LedgerLine{}
	}
	return lines, total, nil
}

func (s *reportingService) VendorPayableReport(ctx context.Context, vendorID string) ([]domain.VendorPayable, error) {
	if vendorID != "" {
		p, err := s.payableRepo.FindVendorPayable(ctx, vendorID)
		if err != nil {
			return nil, err
		}
		return []domain.VendorPayable{*p}, nil
	}
	payables, err := s.payableRepo.ListVendorPayables(ctx)
	if err != nil {
		return nil, err
	}
	if payables == nil {
		payables = []domain.VendorPayable{}
	}
	return payables, nil
}

func (s *reportingService) ListCommissions(ctx context.Context, vendorID string, page domain.PageRequest) ([]domain.CommissionRecord, int, error) {
	records, total, err := s.commissionRepo.ListCommissions(ctx, vendorID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	if records == nil {
		records = []domain.CommissionRecord{}
	}
	return records, total, nil
}
