package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
)

// vendorPayableService maintains the vendor payable cache.
type vendorPayableService struct {
	BaseService
	uow    portsrepo.UnitOfWork
	access portssvc.EntityAccessValidator
	audit  portssvc.AuditRecorderSvc
}

// NewVendorPayableService creates the payable cache service.
func NewVendorPayableService(uow portsrepo.UnitOfWork, access portssvc.EntityAccessValidator, audit portssvc.AuditRecorderSvc, opts ...Option) (portssvc.VendorPayableSvcFacade, error) {
	if access == nil {
		return nil, errors.New("vendor payable service requires an entity access validator")
	}
	svc := &vendorPayableService{uow: uow, access: access, audit: audit}
	svc.apply(opts)
	return svc, nil
}

var _ portssvc.VendorPayableSvcFacade = (*vendorPayableService)(nil)

func (s *vendorPayableService) ApplyPosted(ctx context.Context, tx portsrepo.TxRepositories, voucher domain.Voucher) error {
	delta, ok := domain.DeltaForVoucher(voucher)
	if !ok || delta.IsZero() {
		return nil
	}
	return tx.VendorPayables().ApplyVendorPayableDelta(ctx, delta, s.now())
}

func (s *vendorPayableService) ApplyReversed(ctx context.Context, tx portsrepo.TxRepositories, original domain.Voucher, reversal domain.Voucher) error {
	delta, ok := domain.DeltaForVoucher(original)
	if !ok || delta.IsZero() {
		return nil
	}
	undo := delta.Negate()
	undo.VoucherID = reversal.VoucherID
	return tx.VendorPayables().ApplyVendorPayableDelta(ctx, undo, s.now())
}

// RebuildVendorPayables replays every POSTED vendor voucher. A reversed voucher and its
// reversal cancel out, so both are left out of the replay.
func (s *vendorPayableService) RebuildVendorPayables(ctx context.Context, vendorID string, actorID string) ([]domain.VendorPayableDrift, error) {
	if err := s.access.ValidateEntityAccess(ctx, domain.AdminEntity(), actorID); err != nil {
		return nil, err
	}

	var drifts []domain.VendorPayableDrift
	err := s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		now := s.now()
		vouchers, err := tx.Vouchers().ListPostedVendorVouchers(ctx, vendorID)
		if err != nil {
			return err
		}

		rebuilt := make(map[string]*domain.VendorPayable)
		for _, v := range vouchers {
			delta, ok := domain.DeltaForVoucher(v)
			if !ok {
				continue
			}
			p, found := rebuilt[delta.VendorID]
			if !found {
				p = &domain.VendorPayable{VendorID: delta.VendorID}
				rebuilt[delta.VendorID] = p
			}
			p.Apply(delta, now)
		}

		cached, err := tx.VendorPayables().ListVendorPayables(ctx)
		if err != nil {
			return err
		}
		for _, c := range cached {
			if vendorID != "" && c.VendorID != vendorID {
				continue
			}
			if _, ok := rebuilt[c.VendorID]; !ok {
				rebuilt[c.VendorID] = &domain.VendorPayable{VendorID: c.VendorID, UpdatedAt: now}
			}
		}
		cachedBalance := make(map[string]domain.VendorPayable, len(cached))
		for _, c := range cached {
			cachedBalance[c.VendorID] = c
		}

		ids := make([]string, 0, len(rebuilt))
		for id := range rebuilt {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			p := rebuilt[id]
			p.Recompute()
			p.UpdatedAt = now
			p.LastReconciledAt = &now
			if old, ok := cachedBalance[id]; !ok || !old.Balance.Equal(p.Balance) {
				drifts = append(drifts, domain.VendorPayableDrift{
					VendorID: id,
					Cached:   old.Balance,
					Rebuilt:  p.Balance,
					Drift:    p.Balance.Sub(old.Balance),
				})
			}
			if err := tx.VendorPayables().SaveVendorPayable(ctx, *p); err != nil {
				return err
			}
		}

		return s.audit.Record(ctx, tx, portssvc.AuditRecord{
			Action:     domain.AuditPayablesRebuilt,
			EntityName: "vendor_payable",
			EntityID:   vendorID,
			ActorID:    actorID,
			After:      drifts,
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to rebuild vendor payables", slog.String("vendor_id", vendorID))
		return nil, err
	}
	if len(drifts) > 0 {
		s.LogWarn(ctx, "Vendor payable drift corrected", slog.Int("vendors", len(drifts)))
	}
	return drifts, nil
}
