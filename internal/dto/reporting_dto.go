package dto

import (
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/SscSPs/marketplace_ledger/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// ReportParams defines the query parameters shared by the statements.
type ReportParams struct {
	EntityParams
	AsOf      string `form:"asOf"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	EntityType  domain.EntityType        `json:"entityType"`
	EntityID    string                   `json:"entityId,omitempty"`
	AsOf        string                   `json:"asOf"`
	Rows        []domain.TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal          `json:"totalDebit"`
	TotalCredit decimal.Decimal          `json:"totalCredit"`
	Difference  decimal.Decimal          `json:"difference"`
	IsBalanced  bool                     `json:"isBalanced"`
}

// ToTrialBalanceResponse converts the report.
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	rows := tb.Rows
	if rows == nil {
		rows = []domain.TrialBalanceRow{}
	}
	return TrialBalanceResponse{
		EntityType:  tb.Entity.Type,
		EntityID:    tb.Entity.ID,
		AsOf:        FormatDate(tb.AsOf),
		Rows:        rows,
		TotalDebit:  tb.TotalDebit,
		TotalCredit: tb.TotalCredit,
		Difference:  tb.Difference,
		IsBalanced:  tb.Difference.IsZero(),
	}
}

// ProfitAndLossResponse represents the profit and loss report response
type ProfitAndLossResponse struct {
	EntityType   domain.EntityType      `json:"entityType"`
	EntityID     string                 `json:"entityId,omitempty"`
	StartDate    string                 `json:"startDate"`
	EndDate      string                 `json:"endDate"`
	Income       []domain.AccountAmount `json:"income"`
	Expenses     []domain.AccountAmount `json:"expenses"`
	TotalIncome  decimal.Decimal        `json:"totalIncome"`
	TotalExpense decimal.Decimal        `json:"totalExpense"`
	NetProfit    decimal.Decimal        `json:"netProfit"`
}

// ToProfitAndLossResponse converts the report.
func ToProfitAndLossResponse(pl *domain.ProfitAndLoss) ProfitAndLossResponse {
	return ProfitAndLossResponse{
		EntityType:   pl.Entity.Type,
		EntityID:     pl.Entity.ID,
		StartDate:    FormatDate(pl.StartDate),
		EndDate:      FormatDate(pl.EndDate),
		Income:       nonNilAmounts(pl.Income),
		Expenses:     nonNilAmounts(pl.Expenses),
		TotalIncome:  pl.TotalIncome,
		TotalExpense: pl.TotalExpense,
		NetProfit:    pl.NetProfit,
	}
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	EntityType       domain.EntityType      `json:"entityType"`
	EntityID         string                 `json:"entityId,omitempty"`
	AsOf             string                 `json:"asOf"`
	Assets           []domain.AccountAmount `json:"assets"`
	Liabilities      []domain.AccountAmount `json:"liabilities"`
	Equity           []domain.AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal        `json:"totalAssets"`
	TotalLiabilities decimal.Decimal        `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal        `json:"totalEquity"`
	RetainedEarnings decimal.Decimal        `json:"retainedEarnings"`
	Difference       decimal.Decimal        `json:"difference"`
	IsBalanced       bool                   `json:"isBalanced"`
}

// ToBalanceSheetResponse converts the report.
func ToBalanceSheetResponse(bs *domain.BalanceSheet) BalanceSheetResponse {
	return BalanceSheetResponse{
		EntityType:       bs.Entity.Type,
		EntityID:         bs.Entity.ID,
		AsOf:             FormatDate(bs.AsOf),
		Assets:           nonNilAmounts(bs.Assets),
		Liabilities:      nonNilAmounts(bs.Liabilities),
		Equity:           nonNilAmounts(bs.Equity),
		TotalAssets:      bs.TotalAssets,
		TotalLiabilities: bs.TotalLiabilities,
		TotalEquity:      bs.TotalEquity,
		RetainedEarnings: bs.RetainedEarnings,
		Difference:       bs.Difference,
		IsBalanced:       bs.Difference.IsZero(),
	}
}

func nonNilAmounts(in []domain.AccountAmount) []domain.AccountAmount {
	if in == nil {
		return []domain.AccountAmount{}
	}
	return in
}

// LedgerParams defines query parameters of the ledger report.
type LedgerParams struct {
	EntityParams
	PageParams
	AccountID string `form:"accountId"`
	VoucherID string `form:"voucherId"`
	From      string `form:"from"`
	To        string `form:"to"`
}

// ListLedgerResponse wraps a page of ledger lines.
type ListLedgerResponse struct {
	Data       []domain.LedgerLine   `json:"data"`
	Pagination pagination.Pagination `json:"pagination"`
}

// VendorPayablesResponse lists cached vendor payables.
type VendorPayablesResponse struct {
	Data []domain.VendorPayable `json:"data"`
}

// RebuildPayablesRequest optionally narrows a rebuild to one vendor.
type RebuildPayablesRequest struct {
	VendorID string `json:"vendorId"`
}

// RebuildPayablesResponse lists the vendors whose cached balance drifted.
type RebuildPayablesResponse struct {
	Drifts []domain.VendorPayableDrift `json:"drifts"`
}

// IntegrityResponse lists the vouchers that failed the ledger checks.
type IntegrityResponse struct {
	Healthy bool                    `json:"healthy"`
	Issues  []domain.IntegrityIssue `json:"issues"`
}

// ListCommissionsResponse wraps a page of commission records.
type ListCommissionsResponse struct {
	Data       []domain.CommissionRecord `json:"data"`
	Pagination pagination.Pagination     `json:"pagination"`
}
