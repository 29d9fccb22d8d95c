package domain_test

import (
	"testing"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestAccountClass_Nature(t *testing.T) {
	tests := []struct {
		class domain.AccountClass
		want  domain.Nature
	}{
		{domain.Asset, domain.DebitNature},
		{domain.Expense, domain.DebitNature},
		{domain.Liability, domain.CreditNature},
		{domain.Equity, domain.CreditNature},
		{domain.Income, domain.CreditNature},
	}
	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.class.Nature())
		})
	}
}

func TestAccountCode_RoundTrip(t *testing.T) {
	code := domain.FormatAccountCode(domain.Income, 12)
	assert.Equal(t, "40012", code)

	n, ok := domain.ParseAccountCodeSuffix(domain.Income, code)
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)

	_, ok = domain.ParseAccountCodeSuffix(domain.Asset, code)
	assert.False(t, ok, "prefix of another class must not parse")
}

func TestEntityRef_Validate(t *testing.T) {
	assert.NoError(t, domain.AdminEntity().Validate())
	assert.NoError(t, domain.VendorEntity("v-1").Validate())
	assert.Error(t, domain.VendorEntity(" ").Validate())
	assert.Error(t, domain.EntityRef{Type: domain.EntityAdmin, ID: "x"}.Validate())
	assert.Error(t, domain.EntityRef{Type: "CUSTOMER", ID: "x"}.Validate())
}

func TestAccount_IsProtected(t *testing.T) {
	assert.True(t, domain.Account{IsSystem: true, CanDelete: true}.IsProtected())
	assert.True(t, domain.Account{CanDelete: false}.IsProtected())
	assert.False(t, domain.Account{CanDelete: true}.IsProtected())
}
