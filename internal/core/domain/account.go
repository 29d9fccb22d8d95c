package domain

import (
	"fmt"
	"strconv"
)

// AccountClass defines the fundamental accounting class of an account.
type AccountClass string

const (
	Asset     AccountClass = "ASSET"
	Liability AccountClass = "LIABILITY"
	Equity    AccountClass = "EQUITY"
	Income    AccountClass = "INCOME"
	Expense   AccountClass = "EXPENSE"
)

// AllAccountClasses lists the classes in chart order.
var AllAccountClasses = []AccountClass{Asset, Liability, Equity, Income, Expense}

// IsValid reports whether c is a known class.
func (c AccountClass) IsValid() bool {
	switch c {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// Nature is the side on which an account's balance normally sits.
type Nature string

const (
	DebitNature  Nature = "DEBIT"
	CreditNature Nature = "CREDIT"
)

// Nature derives the normal balance side from the class. ASSET and EXPENSE are debit
// natured, everything else is credit natured.
func (c AccountClass) Nature() Nature {
	if c == Asset || c == Expense {
		return DebitNature
	}
	return CreditNature
}

// CodePrefix is the leading digit of account codes in the class.
func (c AccountClass) CodePrefix() string {
	switch c {
	case Asset:
		return "1"
	case Liability:
		return "2"
	case Equity:
		return "3"
	case Income:
		return "4"
	case Expense:
		return "5"
	}
	return "9"
}

// FormatAccountCode renders the code for the n-th account of a class, e.g. ASSET 1 -> "10001".
func FormatAccountCode(class AccountClass, seq int64) string {
	return fmt.Sprintf("%s%04d", class.CodePrefix(), seq)
}

// ParseAccountCodeSuffix returns the numeric suffix of a code generated for class.
func ParseAccountCodeSuffix(class AccountClass, code string) (int64, bool) {
	prefix := class.CodePrefix()
	if len(code) <= len(prefix) || code[:len(prefix)] != prefix {
		return 0, false
	}
	n, err := strconv.ParseInt(code[len(prefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Account represents a ledger bucket in an entity's chart of accounts.
type Account struct {
	AccountID       string       `json:"accountID"`
	Entity          EntityRef    `json:"entity"`
	Code            string       `json:"code"`
	Name            string       `json:"name"`
	Class           AccountClass `json:"class"`
	Nature          Nature       `json:"nature"`
	ParentAccountID *string      `json:"parentAccountID,omitempty"`
	Description     string       `json:"description"`
	Key             *AccountKey  `json:"key,omitempty"`
	KeySubject      string       `json:"keySubject,omitempty"`
	IsSystem        bool         `json:"isSystem"`
	CanDelete       bool         `json:"canDelete"`
	IsActive        bool         `json:"isActive"`
	AuditFields
}

// IsProtected reports whether the account may not be edited or deleted.
func (a Account) IsProtected() bool {
	return a.IsSystem || !a.CanDelete
}
