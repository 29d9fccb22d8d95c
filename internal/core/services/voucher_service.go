package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// voucherService drives the voucher state machine.
type voucherService struct {
	BaseService
	uow         portsrepo.UnitOfWork
	voucherRepo portsrepo.VoucherReader
	access      portssvc.EntityAccessValidator
	audit       portssvc.AuditRecorderSvc
	periods     portssvc.PeriodGuard
	payables    portssvc.VendorPayableUpdater
}

// NewVoucherService creates the voucher service. The access validator is required.
func NewVoucherService(
	uow portsrepo.UnitOfWork,
	repo portsrepo.VoucherReader,
	access portssvc.EntityAccessValidator,
	audit portssvc.AuditRecorderSvc,
	periods portssvc.PeriodGuard,
	payables portssvc.VendorPayableUpdater,
	opts ...Option,
) (portssvc.VoucherSvcFacade, error) {
	if access == nil {
		return nil, errors.New("voucher service requires an entity access validator")
	}
	svc := &voucherService{
		uow:         uow,
		voucherRepo: repo,
		access:      access,
		audit:       audit,
		periods:     periods,
		payables:    payables,
	}
	svc.apply(opts)
	return svc, nil
}

var _ portssvc.VoucherSvcFacade = (*voucherService)(nil)

// draftOptions alters draft creation for system-generated reversals.
type draftOptions struct {
	reversalOf    *string
	allowInactive bool
}

// normalizeSpec checks the header and the entry set before anything is persisted.
func (s *voucherService) normalizeSpec(spec domain.VoucherSpec) (domain.VoucherSpec, decimal.Decimal, error) {
	if err := spec.Entity.Validate(); err != nil {
		return spec, decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if !spec.VoucherType.IsValid() {
		return spec, decimal.Zero, fmt.Errorf("%w: unknown voucher type %q", apperrors.ErrValidation, spec.VoucherType)
	}
	if spec.Entity.Type == domain.EntityVendor {
		switch spec.VendorID {
		case "":
			spec.VendorID = spec.Entity.ID
		case spec.Entity.ID:
		default:
			return spec, decimal.Zero, fmt.Errorf("%w: vendor voucher cannot reference vendor %s", apperrors.ErrValidation, spec.VendorID)
		}
	}
	if spec.VoucherDate.IsZero() {
		spec.VoucherDate = s.now()
	}
	spec.VoucherDate = dateOnly(spec.VoucherDate)
	spec.Narration = strings.TrimSpace(spec.Narration)

	debit, _, err := accounting.ValidateEntries(spec.Entries)
	if err != nil {
		return spec, decimal.Zero, err
	}
	return spec, debit, nil
}

func (s *voucherService) CreateVoucher(ctx context.Context, spec domain.VoucherSpec, actorID string) (*domain.Voucher, error) {
	spec.IsAuto = false
	spec.EventType = nil
	if spec.VoucherType == domain.VoucherReversal {
		return nil, fmt.Errorf("%w: reversal vouchers are created by reversing a posted voucher", apperrors.ErrValidation)
	}

	var voucher *domain.Voucher
	err := s.withSequenceRetry(ctx, "create_voucher", func() error {
		return s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
			v, err := s.createDraft(ctx, tx, spec, actorID, draftOptions{})
			voucher = v
			return err
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create voucher", slog.String("entity", spec.Entity.String()))
		return nil, err
	}

	s.LogInfo(ctx, "Voucher created",
		slog.String("voucher_id", voucher.VoucherID),
		slog.String("voucher_number", voucher.VoucherNumber))
	return voucher, nil
}

// CreateVoucherTx implements portssvc.VoucherTxSvc.
func (s *voucherService) CreateVoucherTx(ctx context.Context, tx portsrepo.TxRepositories, spec domain.VoucherSpec, actorID string) (*domain.Voucher, error) {
	if spec.VoucherType == domain.VoucherReversal {
		return nil, fmt.Errorf("%w: reversal vouchers are created by reversing a posted voucher", apperrors.ErrValidation)
	}
	return s.createDraft(ctx, tx, spec, actorID, draftOptions{})
}

func (s *voucherService) createDraft(ctx context.Context, tx portsrepo.TxRepositories, spec domain.VoucherSpec, actorID string, opt draftOptions) (*domain.Voucher, error) {
	spec, total, err := s.normalizeSpec(spec)
	if err != nil {
		return nil, err
	}
	if err := s.access.ValidateEntityAccess(ctx, spec.Entity, actorID); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(spec.Entries))
	for _, e := range spec.Entries {
		ids = append(ids, e.AccountID)
	}
	accounts, err := tx.Accounts().FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i, e := range spec.Entries {
		account, ok := accounts[e.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: entry %d: account %s", apperrors.ErrNotFound, i+1, e.AccountID)
		}
		if account.Entity != spec.Entity {
			return nil, fmt.Errorf("%w: entry %d: account %s belongs to %s", apperrors.ErrValidation, i+1, account.Code, account.Entity)
		}
		if !account.IsActive && !opt.allowInactive {
			return nil, fmt.Errorf("%w: entry %d: account %s is inactive", apperrors.ErrValidation, i+1, account.Code)
		}
	}

	seq, err := tx.Sequences().NextSequence(ctx, domain.VoucherSequenceScope(spec.Entity, spec.VoucherType, spec.VoucherDate))
	if err != nil {
		return nil, err
	}

	now := s.now()
	voucher := domain.Voucher{
		VoucherID:     uuid.NewString(),
		VoucherNumber: domain.FormatVoucherNumber(spec.VoucherType, spec.VoucherDate, seq),
		VoucherType:   spec.VoucherType,
		Entity:        spec.Entity,
		VoucherDate:   spec.VoucherDate,
		Narration:     spec.Narration,
		TotalDebit:    total,
		TotalCredit:   total,
		Status:        domain.VoucherDraft,
		IsAuto:        spec.IsAuto,
		EventType:     spec.EventType,
		SourceRef:     spec.SourceRef,
		VendorID:      spec.VendorID,
		ReversalOfID:  opt.reversalOf,
		AuditFields:   domain.NewAuditFields(actorID, now),
	}
	voucher.Entries = make([]domain.DraftEntry, len(spec.Entries))
	for i, e := range spec.Entries {
		voucher.Entries[i] = domain.DraftEntry{
			EntryID:    uuid.NewString(),
			VoucherID:  voucher.VoucherID,
			LineNo:     i + 1,
			AccountID:  e.AccountID,
			Debit:      e.Debit,
			Credit:     e.Credit,
			CostCenter: e.CostCenter,
			Department: e.Department,
			Reference:  e.Reference,
		}
	}

	if err := tx.Vouchers().SaveVoucher(ctx, voucher); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, tx, portssvc.AuditRecord{
		Action:     domain.AuditVoucherCreated,
		EntityName: "voucher",
		EntityID:   voucher.VoucherID,
		ActorID:    actorID,
		After:      voucherHeader(voucher),
	}); err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (s *voucherService) PostVoucher(ctx context.Context, voucherID string, actorID string) (*domain.Voucher, error) {
	var voucher *domain.Voucher
	err := s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		v, err := s.PostVoucherTx(ctx, tx, voucherID, actorID)
		voucher = v
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to post voucher", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}

	s.posted(ctx, *voucher)
	s.LogInfo(ctx, "Voucher posted",
		slog.String("voucher_id", voucher.VoucherID),
		slog.String("voucher_number", voucher.VoucherNumber))
	return voucher, nil
}

// PostVoucherTx moves the draft entries into the ledger inside the caller's transaction.
func (s *voucherService) PostVoucherTx(ctx context.Context, tx portsrepo.TxRepositories, voucherID string, actorID string) (*domain.Voucher, error) {
	v, err := tx.Vouchers().FindVoucherForUpdate(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if err := s.access.ValidateEntityAccess(ctx, v.Entity, actorID); err != nil {
		return nil, err
	}
	if v.IsLocked {
		return nil, fmt.Errorf("%w: voucher %s is locked", apperrors.ErrLocked, v.VoucherNumber)
	}
	if err := v.CanPost(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidState, err)
	}
	if err := s.periods.EnsurePostingAllowed(ctx, tx, v.Entity, v.VoucherDate); err != nil {
		return nil, err
	}

	specs := make([]domain.EntrySpec, len(v.Entries))
	for i, d := range v.Entries {
		specs[i] = domain.EntrySpec{AccountID: d.AccountID, Debit: d.Debit, Credit: d.Credit}
	}
	if _, _, err := accounting.ValidateEntries(specs); err != nil {
		return nil, fmt.Errorf("voucher %s: %w", v.VoucherNumber, err)
	}

	before := voucherHeader(*v)
	now := s.now()
	entries := make([]domain.LedgerEntry, len(v.Entries))
	for i, d := range v.Entries {
		entries[i] = domain.LedgerEntry{
			EntryID:    uuid.NewString(),
			VoucherID:  v.VoucherID,
			LineNo:     d.LineNo,
			Entity:     v.Entity,
			AccountID:  d.AccountID,
			EntryDate:  v.VoucherDate,
			Debit:      d.Debit,
			Credit:     d.Credit,
			CostCenter: d.CostCenter,
			Department: d.Department,
			Reference:  d.Reference,
			CreatedAt:  now,
			CreatedBy:  actorID,
		}
	}

	if err := tx.Ledger().InsertLedgerEntries(ctx, entries); err != nil {
		return nil, err
	}
	if err := tx.Vouchers().DeleteDraftEntries(ctx, v.VoucherID); err != nil {
		return nil, err
	}
	if err := tx.Vouchers().MarkVoucherPosted(ctx, v.VoucherID, actorID, now); err != nil {
		return nil, err
	}

	v.Status = domain.VoucherPosted
	v.PostedBy = &actorID
	v.PostedAt = &now
	v.Touch(actorID, now)
	v.Entries = nil
	v.LedgerEntries = entries

	if err := s.payables.ApplyPosted(ctx, tx, *v); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, tx, portssvc.AuditRecord{
		Action:     domain.AuditVoucherPosted,
		EntityName: "voucher",
		EntityID:   v.VoucherID,
		ActorID:    actorID,
		Before:     before,
		After:      voucherHeader(*v),
	}); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *voucherService) LockVoucher(ctx context.Context, voucherID string, actorID string) (*domain.Voucher, error) {
	var voucher *domain.Voucher
	err := s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		v, err := tx.Vouchers().FindVoucherForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		if err := s.access.ValidateEntityAccess(ctx, v.Entity, actorID); err != nil {
			return err
		}
		if err := v.CanLock(); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidState, err)
		}

		before := voucherHeader(*v)
		now := s.now()
		if err := tx.Vouchers().MarkVoucherLocked(ctx, v.VoucherID, actorID, now); err != nil {
			return err
		}
		v.IsLocked = true
		v.LockedBy = &actorID
		v.LockedAt = &now
		v.Touch(actorID, now)
		voucher = v
		return s.audit.Record(ctx, tx, portssvc.AuditRecord{
			Action:     domain.AuditVoucherLocked,
			EntityName: "voucher",
			EntityID:   v.VoucherID,
			ActorID:    actorID,
			Before:     before,
			After:      voucherHeader(*v),
		})
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Voucher locked", slog.String("voucher_id", voucherID))
	return voucher, nil
}

// ReverseVoucher posts a REVERSAL voucher that mirrors the original's ledger entries
// and marks the original REVERSED, all in one transaction.
func (s *voucherService) ReverseVoucher(ctx context.Context, voucherID string, reason string, date *time.Time, actorID string) (*domain.Voucher, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a reversal reason is required", apperrors.ErrValidation)
	}

	var reversal *domain.Voucher
	err := s.withSequenceRetry(ctx, "reverse_voucher", func() error {
		return s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
			r, err := s.reverseTx(ctx, tx, voucherID, reason, date, actorID)
			reversal = r
			return err
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to reverse voucher", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}

	s.posted(ctx, *reversal)
	s.LogInfo(ctx, "Voucher reversed",
		slog.String("voucher_id", voucherID),
		slog.String("reversal_id", reversal.VoucherID))
	return reversal, nil
}

func (s *voucherService) reverseTx(ctx context.Context, tx portsrepo.TxRepositories, voucherID, reason string, date *time.Time, actorID string) (*domain.Voucher, error) {
	original, err := tx.Vouchers().FindVoucherForUpdate(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if err := s.access.ValidateEntityAccess(ctx, original.Entity, actorID); err != nil {
		return nil, err
	}
	if original.IsLocked {
		return nil, fmt.Errorf("%w: voucher %s is locked", apperrors.ErrLocked, original.VoucherNumber)
	}
	if err := original.CanReverse(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidState, err)
	}

	reversalDate := s.now()
	if date != nil {
		reversalDate = *date
	}
	reversalDate = dateOnly(reversalDate)
	if reversalDate.Before(original.VoucherDate) {
		return nil, fmt.Errorf("%w: reversal date precedes voucher date %s", apperrors.ErrValidation, original.VoucherDate.Format(time.DateOnly))
	}

	ledger, err := tx.Ledger().ListLedgerEntriesByVoucher(ctx, original.VoucherID)
	if err != nil {
		return nil, err
	}

	spec := domain.VoucherSpec{
		Entity:      original.Entity,
		VoucherType: domain.VoucherReversal,
		VoucherDate: reversalDate,
		Narration:   fmt.Sprintf("REVERSAL: %s (%s)", reason, original.VoucherNumber),
		SourceRef:   original.SourceRef,
		VendorID:    original.VendorID,
		IsAuto:      original.IsAuto,
		EventType:   original.EventType,
		Entries:     accounting.ReversalEntries(ledger),
	}
	draft, err := s.createDraft(ctx, tx, spec, actorID, draftOptions{reversalOf: &original.VoucherID, allowInactive: true})
	if err != nil {
		return nil, err
	}
	reversal, err := s.PostVoucherTx(ctx, tx, draft.VoucherID, actorID)
	if err != nil {
		return nil, err
	}

	before := voucherHeader(*original)
	now := s.now()
	if err := tx.Vouchers().MarkVoucherReversed(ctx, original.VoucherID, reversal.VoucherID, reason, actorID, now); err != nil {
		return nil, err
	}
	original.Status = domain.VoucherReversed
	original.IsReversed = true
	original.ReversedByID = &reversal.VoucherID
	original.ReversalReason = reason
	original.Touch(actorID, now)

	if original.VoucherType == domain.VoucherCommission {
		record, err := tx.Commissions().FindCommissionByVoucherID(ctx, original.VoucherID)
		switch {
		case err == nil:
			if err := tx.Commissions().UpdateCommissionStatus(ctx, record.CommissionID, domain.CommissionReversed); err != nil {
				return nil, err
			}
		case !errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
	}

	if err := s.payables.ApplyReversed(ctx, tx, *original, *reversal); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, tx, portssvc.AuditRecord{
		Action:     domain.AuditVoucherReversed,
		EntityName: "voucher",
		EntityID:   original.VoucherID,
		ActorID:    actorID,
		Before:     before,
		After:      voucherHeader(*original),
	}); err != nil {
		return nil, err
	}
	return reversal, nil
}

func (s *voucherService) CancelVoucher(ctx context.Context, voucherID string, reason string, actorID string) (*domain.Voucher, error) {
	reason = strings.TrimSpace(reason)
	var voucher *domain.Voucher
	err := s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		v, err := tx.Vouchers().FindVoucherForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		if err := s.access.ValidateEntityAccess(ctx, v.Entity, actorID); err != nil {
			return err
		}
		if err := v.CanCancel(); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidState, err)
		}

		before := voucherHeader(*v)
		now := s.now()
		if err := tx.Vouchers().MarkVoucherCancelled(ctx, v.VoucherID, reason, actorID, now); err != nil {
			return err
		}
		v.Status = domain.VoucherCancelled
		v.CancelledBy = &actorID
		v.CancelledAt = &now
		v.CancelReason = reason
		v.Touch(actorID, now)
		voucher = v
		return s.audit.Record(ctx, tx, portssvc.AuditRecord{
			Action:     domain.AuditVoucherCancelled,
			EntityName: "voucher",
			EntityID:   v.VoucherID,
			ActorID:    actorID,
			Before:     before,
			After:      voucherHeader(*v),
		})
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Voucher cancelled", slog.String("voucher_id", voucherID))
	return voucher, nil
}

func (s *voucherService) GetVoucher(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	v, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find voucher", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}
	return v, nil
}

func (s *voucherService) ListVouchers(ctx context.Context, filter domain.VoucherFilter, page domain.PageRequest) ([]domain.Voucher, int, error) {
	if filter.Entity != nil {
		if err := filter.Entity.Validate(); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}
	vouchers, total, err := s.voucherRepo.ListVouchers(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		s.LogError(ctx, err, "Failed to list vouchers")
		return nil, 0, fmt.Errorf("failed to list vouchers: %w", err)
	}
	if vouchers == nil {
		vouchers = []domain.Voucher{}
	}
	return vouchers, total, nil
}
