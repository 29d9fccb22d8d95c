package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// AccountTotals is the debit and credit movement of one account over a window.
type AccountTotals struct {
	Account Account
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// TrialBalanceRow represents a single row in a trial balance report.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Class       AccountClass    `json:"class"`
	Nature      Nature          `json:"nature"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalance is the trial balance of one entity.
type TrialBalance struct {
	Entity      EntityRef         `json:"entity"`
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	Difference  decimal.Decimal   `json:"difference"`
}

// AccountAmount represents an account with its net amount for financial reports.
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	NetAmount decimal.Decimal `json:"netAmount"`
}

// ProfitAndLoss represents a profit and loss report.
type ProfitAndLoss struct {
	Entity       EntityRef       `json:"entity"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	Income       []AccountAmount `json:"income"`
	Expenses     []AccountAmount `json:"expenses"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	NetProfit    decimal.Decimal `json:"netProfit"`
}

// BalanceSheet represents a balance sheet report.
type BalanceSheet struct {
	Entity           EntityRef       `json:"entity"`
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	RetainedEarnings decimal.Decimal `json:"retainedEarnings"`
	Difference       decimal.Decimal `json:"difference"`
}

// LedgerFilter narrows ledger listings.
type LedgerFilter struct {
	Entity    EntityRef
	AccountID string
	VoucherID string
	From      *time.Time
	To        *time.Time
}

// LedgerLine is a ledger entry as shown in the ledger report.
type LedgerLine struct {
	LedgerEntry
	VoucherNumber  string          `json:"voucherNumber"`
	Narration      string          `json:"narration"`
	AccountCode    string          `json:"accountCode"`
	AccountName    string          `json:"accountName"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// IntegrityIssue describes a posted voucher that breaks a ledger invariant.
type IntegrityIssue struct {
	VoucherID     string          `json:"voucherID"`
	VoucherNumber string          `json:"voucherNumber"`
	Problem       string          `json:"problem"`
	LedgerDebit   decimal.Decimal `json:"ledgerDebit"`
	LedgerCredit  decimal.Decimal `json:"ledgerCredit"`
}

// VoucherLedgerTotals is the ledger-side sum of one posted voucher.
type VoucherLedgerTotals struct {
	Voucher    Voucher
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	DraftsLeft int
}

// PageRequest is a 1-based page request.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the row offset of the page, saturating at math.MaxInt32.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt32/p.Limit {
		return math.MaxInt32
	}
	return (p.Page - 1) * p.Limit
}
