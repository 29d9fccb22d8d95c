// Package memory is a transactional in-memory implementation of the repository ports.
// Transactions are serialized and roll back by restoring a snapshot, which makes it a
// faithful stand-in for the PostgreSQL store in service tests and local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
)

type state struct {
	accounts    map[string]domain.Account
	vouchers    map[string]domain.Voucher
	drafts      map[string][]domain.DraftEntry
	ledger      []domain.LedgerEntry
	periods     map[string]domain.AccountingPeriod
	payables    map[string]domain.VendorPayable
	commissions map[string]domain.CommissionRecord
	payments    map[string]domain.PaymentTransaction
	events      map[string]time.Time
	sequences   map[string]int64
	audit       []domain.AuditLogEntry
	keys        map[string]domain.IntegrationKey
}

func newState() *state {
	return &state{
		accounts:    make(map[string]domain.Account),
		vouchers:    make(map[string]domain.Voucher),
		drafts:      make(map[string][]domain.DraftEntry),
		periods:     make(map[string]domain.AccountingPeriod),
		payables:    make(map[string]domain.VendorPayable),
		commissions: make(map[string]domain.CommissionRecord),
		payments:    make(map[string]domain.PaymentTransaction),
		events:      make(map[string]time.Time),
		sequences:   make(map[string]int64),
		keys:        make(map[string]domain.IntegrationKey),
	}
}

// clone copies the state. Stored values are replaced, never mutated in place, so
// copying the maps and slices is enough.
func (s *state) clone() *state {
	c := &state{
		accounts:    copyMap(s.accounts),
		vouchers:    copyMap(s.vouchers),
		drafts:      make(map[string][]domain.DraftEntry, len(s.drafts)),
		ledger:      append([]domain.LedgerEntry(nil), s.ledger...),
		periods:     copyMap(s.periods),
		payables:    copyMap(s.payables),
		commissions: copyMap(s.commissions),
		payments:    copyMap(s.payments),
		events:      copyMap(s.events),
		sequences:   copyMap(s.sequences),
		audit:       append([]domain.AuditLogEntry(nil), s.audit...),
		keys:        copyMap(s.keys),
	}
	for k, v := range s.drafts {
		c.drafts[k] = append([]domain.DraftEntry(nil), v...)
	}
	return c
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store holds the whole dataset.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New creates an empty store.
func New() *Store {
	return &Store{st: newState()}
}

// repos implements every repository port. Outside a transaction each call takes the
// store lock; inside one the lock is already held by WithTx.
type repos struct {
	s    *Store
	inTx bool
}

func (r *repos) read(fn func(st *state)) {
	if !r.inTx {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	fn(r.s.st)
}

func (r *repos) write(fn func(st *state) error) error {
	if !r.inTx {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	return fn(r.s.st)
}

// WithTx implements portsrepo.UnitOfWork.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.TxRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(ctx, &repos{s: s, inTx: true}); err != nil {
		// sequence counters are not transactional
		snapshot.sequences = s.st.sequences
		s.st = snapshot
		return err
	}
	return nil
}

func (r *repos) Accounts() portsrepo.AccountRepositoryFacade               { return r }
func (r *repos) Vouchers() portsrepo.VoucherRepositoryFacade               { return r }
func (r *repos) Ledger() portsrepo.LedgerRepositoryFacade                  { return r }
func (r *repos) Periods() portsrepo.PeriodRepositoryFacade                 { return r }
func (r *repos) VendorPayables() portsrepo.VendorPayableRepositoryFacade   { return r }
func (r *repos) Commissions() portsrepo.CommissionRepositoryFacade         { return r }
func (r *repos) Payments() portsrepo.PaymentRepositoryFacade               { return r }
func (r *repos) ProcessedEvents() portsrepo.ProcessedEventRepository       { return r }
func (r *repos) Sequences() portsrepo.SequenceRepository                   { return r }
func (r *repos) Audit() portsrepo.AuditRepositoryFacade                    { return r }
func (r *repos) IntegrationKeys() portsrepo.IntegrationKeyRepositoryFacade { return r }

var (
	_ portsrepo.TxRepositories      = (*repos)(nil)
	_ portsrepo.UnitOfWork          = (*Store)(nil)
	_ portsrepo.ReportingRepository = (*repos)(nil)
)

// NewRepositoryProvider wires the store into every port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	r := &repos{s: s}
	return portsrepo.RepositoryProvider{
		UnitOfWork:         s,
		AccountRepo:        r,
		VoucherRepo:        r,
		LedgerRepo:         r,
		ReportingRepo:      r,
		PeriodRepo:         r,
		VendorPayableRepo:  r,
		CommissionRepo:     r,
		PaymentRepo:        r,
		AuditRepo:          r,
		IntegrationKeyRepo: r,
	}
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func inWindow(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
