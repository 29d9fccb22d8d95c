package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

func (r *repos) SaveIntegrationKey(_ context.Context, key domain.IntegrationKey) error {
	return r.write(func(st *state) error {
		if _, exists := st.keys[key.KeyID]; exists {
			return fmt.Errorf("%w: integration key %s", apperrors.ErrDuplicate, key.KeyID)
		}
		st.keys[key.KeyID] = key
		return nil
	})
}

func (r *repos) FindIntegrationKeyByID(_ context.Context, keyID string) (*domain.IntegrationKey, error) {
	var (
		k  domain.IntegrationKey
		ok bool
	)
	r.read(func(st *state) { k, ok = st.keys[keyID] })
	if !ok {
		return nil, fmt.Errorf("%w: integration key %s", apperrors.ErrNotFound, keyID)
	}
	return &k, nil
}

func (r *repos) ListIntegrationKeys(_ context.Context) ([]domain.IntegrationKey, error) {
	out := []domain.IntegrationKey{}
	r.read(func(st *state) {
		for _, k := range st.keys {
			out = append(out, k)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *repos) RevokeIntegrationKey(_ context.Context, keyID string, at time.Time) error {
	return r.write(func(st *state) error {
		k, ok := st.keys[keyID]
		if !ok {
			return fmt.Errorf("%w: integration key %s", apperrors.ErrNotFound, keyID)
		}
		if k.RevokedAt == nil {
			k.RevokedAt = &at
			st.keys[keyID] = k
		}
		return nil
	})
}

func (r *repos) TouchIntegrationKey(_ context.Context, keyID string, at time.Time) error {
	return r.write(func(st *state) error {
		k, ok := st.keys[keyID]
		if !ok {
			return fmt.Errorf("%w: integration key %s", apperrors.ErrNotFound, keyID)
		}
		k.LastUsedAt = &at
		st.keys[keyID] = k
		return nil
	})
}
