package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/SscSPs/marketplace_ledger/internal/authz"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/core/services"
	"github.com/SscSPs/marketplace_ledger/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockActorDirectory is a mock implementation of portssvc.ActorDirectory
type MockActorDirectory struct {
	mock.Mock
}

func (m *MockActorDirectory) ActorName(ctx context.Context, actorID string) (string, error) {
	args := m.Called(ctx, actorID)
	return args.String(0), args.Error(1)
}

func TestAuditTrail_VoucherLifecycle(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	f.provision()
	admin := domain.AdminEntity()
	bank := f.account(admin, domain.KeyPlatformBank, "")
	equity := f.account(admin, domain.KeyOwnerEquity, "")

	v, err := f.svc.Voucher.CreateVoucher(f.ctx, domain.VoucherSpec{
		Entity:      admin,
		VoucherType: domain.VoucherJournal,
		Entries:     []domain.EntrySpec{entry(bank.AccountID, "20", "0"), entry(equity.AccountID, "0", "20")},
	}, adminActor)
	require.NoError(t, err)
	_, err = f.svc.Voucher.PostVoucher(f.ctx, v.VoucherID, adminActor)
	require.NoError(t, err)

	logs, total, err := f.svc.Audit.ListAuditLogs(f.ctx, domain.AuditFilter{EntityName: "voucher", EntityID: v.VoucherID}, domain.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	actions := []domain.AuditAction{logs[0].Action, logs[1].Action}
	assert.ElementsMatch(t, []domain.AuditAction{domain.AuditVoucherCreated, domain.AuditVoucherPosted}, actions)

	for _, l := range logs {
		assert.Equal(t, adminActor, l.ActorID)
		if l.Action != domain.AuditVoucherPosted {
			continue
		}
		var before, after domain.Voucher
		require.NoError(t, json.Unmarshal(l.Before, &before))
		require.NoError(t, json.Unmarshal(l.After, &after))
		assert.Equal(t, domain.VoucherDraft, before.Status)
		assert.Equal(t, domain.VoucherPosted, after.Status)
	}
}

func TestAuditRecord_ResolvesActorName(t *testing.T) {
	store := memory.New()
	repos := memory.NewRepositoryProvider(store)
	actors := new(MockActorDirectory)
	actors.On("ActorName", mock.Anything, "u-7").Return("Priya", nil)
	audit := services.NewAuditService(repos.AuditRepo, actors)

	err := store.WithTx(context.Background(), func(ctx context.Context, tx portsrepo.TxRepositories) error {
		return audit.Record(ctx, tx, portssvc.AuditRecord{
			Action:     domain.AuditAccountCreated,
			EntityName: "account",
			EntityID:   "a-1",
			ActorID:    "u-7",
			After:      map[string]string{"code": "10001"},
		})
	})
	require.NoError(t, err)

	logs, _, err := audit.ListAuditLogs(context.Background(), domain.AuditFilter{ActorID: "u-7"}, domain.PageRequest{Page: 1, Limit: 5})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Priya", logs[0].ActorName)
	assert.JSONEq(t, `{"code":"10001"}`, string(logs[0].After))
	assert.Nil(t, logs[0].Before)
	actors.AssertExpectations(t)
}

func TestAuditRecord_NamesIntegrationActors(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	key, plaintext, err := f.svc.IntegrationKey.CreateKey(f.ctx, "order-service", adminActor)
	require.NoError(t, err)
	principal, err := f.svc.IntegrationKey.ValidateKey(f.ctx, plaintext)
	require.NoError(t, err)

	ctx := authz.WithPrincipal(context.Background(), *principal)
	_, err = f.svc.Account.CreateAccount(ctx, portssvc.CreateAccountCmd{
		Entity: domain.AdminEntity(),
		Class:  domain.Expense,
		Name:   "Gateway Fees Adjustment",
	}, principal.ActorID)
	require.NoError(t, err)

	logs, _, err := f.svc.Audit.ListAuditLogs(f.ctx, domain.AuditFilter{ActorID: principal.ActorID}, domain.PageRequest{Page: 1, Limit: 5})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "integration:"+key.KeyID, logs[0].ActorID)
	assert.Equal(t, "order-service", logs[0].ActorName)
}
