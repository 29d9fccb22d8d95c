package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

func (r *repos) FindPeriodByID(_ context.Context, periodID string) (*domain.AccountingPeriod, error) {
	var (
		p  domain.AccountingPeriod
		ok bool
	)
	r.read(func(st *state) { p, ok = st.periods[periodID] })
	if !ok {
		return nil, fmt.Errorf("%w: period %s", apperrors.ErrNotFound, periodID)
	}
	return &p, nil
}

func (r *repos) FindPeriodCovering(_ context.Context, entity domain.EntityRef, date time.Time) (*domain.AccountingPeriod, error) {
	var found *domain.AccountingPeriod
	r.read(func(st *state) {
		for _, p := range st.periods {
			if p.Entity == entity && p.Contains(date) {
				period := p
				found = &period
				return
			}
		}
	})
	if found == nil {
		return nil, fmt.Errorf("%w: no period covers %s", apperrors.ErrNotFound, date.Format(time.DateOnly))
	}
	return found, nil
}

func (r *repos) ListPeriods(_ context.Context, entity domain.EntityRef) ([]domain.AccountingPeriod, error) {
	out := []domain.AccountingPeriod{}
	r.read(func(st *state) {
		for _, p := range st.periods {
			if p.Entity == entity {
				out = append(out, p)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// LockPeriodScope is a no-op: transactions already hold the store's write lock.
func (r *repos) LockPeriodScope(context.Context, domain.EntityRef) error {
	return nil
}

func (r *repos) SavePeriod(_ context.Context, period domain.AccountingPeriod) error {
	return r.write(func(st *state) error {
		if _, exists := st.periods[period.PeriodID]; exists {
			return fmt.Errorf("%w: period %s", apperrors.ErrDuplicate, period.PeriodID)
		}
		st.periods[period.PeriodID] = period
		return nil
	})
}

func (r *repos) UpdatePeriod(_ context.Context, period domain.AccountingPeriod) error {
	return r.write(func(st *state) error {
		if _, ok := st.periods[period.PeriodID]; !ok {
			return fmt.Errorf("%w: period %s", apperrors.ErrNotFound, period.PeriodID)
		}
		st.periods[period.PeriodID] = period
		return nil
	})
}
