package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/authz"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/core/services"
	"github.com/SscSPs/marketplace_ledger/internal/platform/config"
	"github.com/SscSPs/marketplace_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	adminActor = "admin-1"
	vendorID   = "v1"
)

var testNow = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

// ledgerFixture wires the real services over the in-memory store.
type ledgerFixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	repos portsrepo.RepositoryProvider
	svc   *portssvc.ServiceContainer
}

func newLedgerFixture(t *testing.T, policy domain.ClosedPeriodPolicy, opts ...services.Option) *ledgerFixture {
	t.Helper()
	store := memory.New()
	repos := memory.NewRepositoryProvider(store)
	cfg := &config.Config{ClosedPeriodPolicy: policy}
	opts = append([]services.Option{services.WithClock(func() time.Time { return testNow })}, opts...)

	svc, err := services.NewServiceContainer(cfg, repos, authz.NewRoleAccessValidator(), nil, opts...)
	require.NoError(t, err)

	ctx := authz.WithPrincipal(context.Background(), domain.Principal{ActorID: adminActor, Role: domain.RoleAdmin})
	return &ledgerFixture{t: t, ctx: ctx, store: store, repos: repos, svc: svc}
}

// provision creates the admin books and the books of each vendor.
func (f *ledgerFixture) provision(vendors ...string) {
	f.t.Helper()
	_, err := f.svc.Account.ProvisionEntity(f.ctx, domain.AdminEntity(), adminActor)
	require.NoError(f.t, err)
	for _, v := range vendors {
		_, err := f.svc.Account.ProvisionEntity(f.ctx, domain.VendorEntity(v), adminActor)
		require.NoError(f.t, err)
	}
}

func (f *ledgerFixture) account(entity domain.EntityRef, key domain.AccountKey, subject string) domain.Account {
	f.t.Helper()
	acc, err := f.svc.Account.ResolveAccount(f.ctx, entity, key, subject)
	require.NoError(f.t, err)
	return *acc
}

func (f *ledgerFixture) userAccount(entity domain.EntityRef, class domain.AccountClass, name string) domain.Account {
	f.t.Helper()
	acc, err := f.svc.Account.CreateAccount(f.ctx, portssvc.CreateAccountCmd{Entity: entity, Class: class, Name: name}, adminActor)
	require.NoError(f.t, err)
	return *acc
}

// trialRow returns the trial balance row of an account.
func (f *ledgerFixture) trialRow(entity domain.EntityRef, accountID string) domain.TrialBalanceRow {
	f.t.Helper()
	tb, err := f.svc.Reporting.TrialBalance(f.ctx, entity, nil)
	require.NoError(f.t, err)
	for _, row := range tb.Rows {
		if row.AccountID == accountID {
			return row
		}
	}
	f.t.Fatalf("account %s missing from trial balance", accountID)
	return domain.TrialBalanceRow{}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(accountID, debit, credit string) domain.EntrySpec {
	return domain.EntrySpec{AccountID: accountID, Debit: dec(debit), Credit: dec(credit)}
}
