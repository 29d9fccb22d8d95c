package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/marketplace_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftVoucher(id, number string) domain.Voucher {
	return domain.Voucher{
		VoucherID:     id,
		VoucherNumber: number,
		VoucherType:   domain.VoucherJournal,
		Entity:        domain.AdminEntity(),
		VoucherDate:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:        domain.VoucherDraft,
		TotalDebit:    decimal.NewFromInt(10),
		TotalCredit:   decimal.NewFromInt(10),
		Entries: []domain.DraftEntry{
			{EntryID: "e1", VoucherID: id, LineNo: 1, AccountID: "a", Debit: decimal.NewFromInt(10), Credit: decimal.Zero},
			{EntryID: "e2", VoucherID: id, LineNo: 2, AccountID: "b", Debit: decimal.Zero, Credit: decimal.NewFromInt(10)},
		},
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := memory.NewRepositoryProvider(store)
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		require.NoError(t, tx.Vouchers().SaveVoucher(ctx, draftVoucher("v1", "JV25030001")))
		_, err := tx.Sequences().NextSequence(ctx, "scope")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repos.VoucherRepo.FindVoucherByID(ctx, "v1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = store.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		n, err := tx.Sequences().NextSequence(ctx, "scope")
		assert.Equal(t, int64(2), n, "sequence numbers are never handed out twice")
		return err
	})
	require.NoError(t, err)
}

func TestWithTx_CommitsAndLoadsDrafts(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := memory.NewRepositoryProvider(store)

	err := store.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		return tx.Vouchers().SaveVoucher(ctx, draftVoucher("v1", "JV25030001"))
	})
	require.NoError(t, err)

	v, err := repos.VoucherRepo.FindVoucherByID(ctx, "v1")
	require.NoError(t, err)
	assert.Len(t, v.Entries, 2)

	err = store.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		return tx.Vouchers().SaveVoucher(ctx, draftVoucher("v2", "JV25030001"))
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestMarkVoucherPosted_IsConditional(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := memory.NewRepositoryProvider(store)
	require.NoError(t, repos.VoucherRepo.SaveVoucher(ctx, draftVoucher("v1", "JV25030001")))

	now := time.Now()
	require.NoError(t, repos.VoucherRepo.MarkVoucherPosted(ctx, "v1", "u1", now))
	err := repos.VoucherRepo.MarkVoucherPosted(ctx, "v1", "u2", now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	v, err := repos.VoucherRepo.FindVoucherByID(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.VoucherPosted, v.Status)
	assert.Equal(t, "u1", *v.PostedBy)

	assert.ErrorIs(t, repos.VoucherRepo.MarkVoucherCancelled(ctx, "v1", "x", "u1", now), apperrors.ErrInvalidState)
	assert.ErrorIs(t, repos.VoucherRepo.MarkVoucherPosted(ctx, "missing", "u1", now), apperrors.ErrNotFound)
}

func TestNextSequence_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	const workers = 20
	seen := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
				n, err := tx.Sequences().NextSequence(ctx, "voucher:ADMIN:JOURNAL:2503")
				seen <- n
				return err
			})
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]bool)
	for n := range seen {
		assert.False(t, unique[n], "duplicate sequence %d", n)
		unique[n] = true
	}
	assert.Len(t, unique, workers)
}

func TestMarkEventProcessed_RejectsReplay(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositoryProvider(memory.New())
	var events portsrepo.ProcessedEventRepository
	require.NoError(t, repos.UnitOfWork.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		events = tx.ProcessedEvents()
		return events.MarkEventProcessed(ctx, domain.EventOrderConfirmed, "o-1", time.Now())
	}))

	err := repos.UnitOfWork.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		return tx.ProcessedEvents().MarkEventProcessed(ctx, domain.EventOrderConfirmed, "o-1", time.Now())
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestGetAccountTotals_Window(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositoryProvider(memory.New())
	entity := domain.AdminEntity()
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, domain.Account{AccountID: "a", Entity: entity, Code: "10001", Class: domain.Asset, IsActive: true}))
	require.NoError(t, repos.AccountRepo.SaveAccount(ctx, domain.Account{AccountID: "b", Entity: entity, Code: "40001", Class: domain.Income, IsActive: true}))

	mar := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repos.LedgerRepo.InsertLedgerEntries(ctx, []domain.LedgerEntry{
		{EntryID: "1", VoucherID: "v1", Entity: entity, AccountID: "a", EntryDate: mar, Debit: decimal.NewFromInt(100), Credit: decimal.Zero},
		{EntryID: "2", VoucherID: "v1", Entity: entity, AccountID: "b", EntryDate: mar, Debit: decimal.Zero, Credit: decimal.NewFromInt(100)},
		{EntryID: "3", VoucherID: "v2", Entity: entity, AccountID: "a", EntryDate: apr, Debit: decimal.NewFromInt(5), Credit: decimal.Zero},
	}))

	totals, err := repos.ReportingRepo.GetAccountTotals(ctx, entity, nil, mar, true)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "10001", totals[0].Account.Code)
	assert.True(t, totals[0].Debit.Equal(decimal.NewFromInt(100)))
	assert.True(t, totals[1].Credit.Equal(decimal.NewFromInt(100)))
}
