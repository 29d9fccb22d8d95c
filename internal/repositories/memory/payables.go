package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

func (r *repos) FindVendorPayable(_ context.Context, vendorID string) (*domain.VendorPayable, error) {
	var (
		p  domain.VendorPayable
		ok bool
	)
	r.read(func(st *state) { p, ok = st.payables[vendorID] })
	if !ok {
		return nil, fmt.Errorf("%w: vendor payable %s", apperrors.ErrNotFound, vendorID)
	}
	return &p, nil
}

func (r *repos) ListVendorPayables(_ context.Context) ([]domain.VendorPayable, error) {
	out := []domain.VendorPayable{}
	r.read(func(st *state) {
		for _, p := range st.payables {
			out = append(out, p)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].VendorID < out[j].VendorID })
	return out, nil
}

func (r *repos) ApplyVendorPayableDelta(_ context.Context, delta domain.VendorPayableDelta, at time.Time) error {
	return r.write(func(st *state) error {
		p, ok := st.payables[delta.VendorID]
		if !ok {
			p = domain.VendorPayable{VendorID: delta.VendorID}
		}
		p.Apply(delta, at)
		st.payables[delta.VendorID] = p
		return nil
	})
}

func (r *repos) SaveVendorPayable(_ context.Context, payable domain.VendorPayable) error {
	return r.write(func(st *state) error {
		st.payables[payable.VendorID] = payable
		return nil
	})
}
