package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
)

func (r *repos) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	var (
		acc domain.Account
		ok  bool
	)
	r.read(func(st *state) { acc, ok = st.accounts[accountID] })
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &acc, nil
}

func (r *repos) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	r.read(func(st *state) {
		for _, id := range accountIDs {
			if acc, ok := st.accounts[id]; ok {
				out[id] = acc
			}
		}
	})
	return out, nil
}

func (r *repos) FindAccountByKey(_ context.Context, entity domain.EntityRef, key domain.AccountKey, subject string) (*domain.Account, error) {
	var found *domain.Account
	r.read(func(st *state) {
		for _, acc := range st.accounts {
			if acc.Entity == entity && acc.Key != nil && *acc.Key == key && acc.KeySubject == subject {
				a := acc
				found = &a
				return
			}
		}
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %s account %s/%s", apperrors.ErrNotFound, entity, key, subject)
	}
	return found, nil
}

func (r *repos) ListAccounts(_ context.Context, entity domain.EntityRef, class *domain.AccountClass, activeOnly bool, limit int, offset int) ([]domain.Account, int, error) {
	var all []domain.Account
	r.read(func(st *state) {
		for _, acc := range st.accounts {
			if acc.Entity != entity {
				continue
			}
			if class != nil && acc.Class != *class {
				continue
			}
			if activeOnly && !acc.IsActive {
				continue
			}
			all = append(all, acc)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return paginate(all, limit, offset), len(all), nil
}

func (r *repos) CountAccountReferences(_ context.Context, accountID string) (portsrepo.AccountReferences, error) {
	var refs portsrepo.AccountReferences
	r.read(func(st *state) {
		for _, le := range st.ledger {
			if le.AccountID == accountID {
				refs.LedgerEntries++
			}
		}
		for _, entries := range st.drafts {
			for _, de := range entries {
				if de.AccountID == accountID {
					refs.DraftEntries++
				}
			}
		}
		for _, acc := range st.accounts {
			if acc.ParentAccountID != nil && *acc.ParentAccountID == accountID {
				refs.Children++
			}
		}
	})
	return refs, nil
}

func (r *repos) SaveAccount(_ context.Context, account domain.Account) error {
	return r.write(func(st *state) error {
		if _, exists := st.accounts[account.AccountID]; exists {
			return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
		}
		for _, acc := range st.accounts {
			if acc.Entity != account.Entity {
				continue
			}
			if acc.Code == account.Code {
				return fmt.Errorf("%w: account code %s in %s", apperrors.ErrDuplicate, account.Code, account.Entity)
			}
			if acc.Key != nil && account.Key != nil && *acc.Key == *account.Key && acc.KeySubject == account.KeySubject {
				return fmt.Errorf("%w: account key %s/%s in %s", apperrors.ErrDuplicate, *account.Key, account.KeySubject, account.Entity)
			}
		}
		st.accounts[account.AccountID] = account
		return nil
	})
}

func (r *repos) UpdateAccount(_ context.Context, account domain.Account) error {
	return r.write(func(st *state) error {
		if _, ok := st.accounts[account.AccountID]; !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
		}
		st.accounts[account.AccountID] = account
		return nil
	})
}

func (r *repos) DeleteAccount(_ context.Context, accountID string) error {
	return r.write(func(st *state) error {
		if _, ok := st.accounts[accountID]; !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		delete(st.accounts, accountID)
		return nil
	})
}
