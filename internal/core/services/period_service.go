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
	"github.com/google/uuid"
)

// periodService manages accounting periods and enforces the closed-period policy.
type periodService struct {
	BaseService
	uow        portsrepo.UnitOfWork
	periodRepo portsrepo.PeriodRepositoryFacade
	access     portssvc.EntityAccessValidator
	audit      portssvc.AuditRecorderSvc
	policy     domain.ClosedPeriodPolicy
}

// PeriodService is both the period facade and the posting guard.
type PeriodService interface {
	portssvc.PeriodSvcFacade
	portssvc.PeriodGuard
}

// NewPeriodService creates the period service. An unknown policy falls back to reject.
func NewPeriodService(
	uow portsrepo.UnitOfWork,
	repo portsrepo.PeriodRepositoryFacade,
	access portssvc.EntityAccessValidator,
	audit portssvc.AuditRecorderSvc,
	policy domain.ClosedPeriodPolicy,
	opts ...Option,
) (PeriodService, error) {
	if access == nil {
		return nil, errors.New("period service requires an entity access validator")
	}
	if !policy.IsValid() {
		policy = domain.ClosedPeriodReject
	}
	svc := &periodService{uow: uow, periodRepo: repo, access: access, audit: audit, policy: policy}
	svc.apply(opts)
	return svc, nil
}

var _ PeriodService = (*periodService)(nil)

func (s *periodService) CreatePeriod(ctx context.Context, cmd portssvc.CreatePeriodCmd, actorID string) (*domain.AccountingPeriod, error) {
	if err := cmd.Entity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: period name is required", apperrors.ErrValidation)
	}
	start, end := dateOnly(cmd.Start), dateOnly(cmd.End)
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: period start must be before its end", apperrors.ErrValidation)
	}
	if err := s.access.ValidateEntityAccess(ctx, cmd.Entity, actorID); err != nil {
		return nil, err
	}

	now := s.now()
	period := domain.AccountingPeriod{
		PeriodID:    uuid.NewString(),
		Entity:      cmd.Entity,
		Name:        name,
		StartDate:   start,
		EndDate:     end,
		AuditFields: domain.NewAuditFields(actorID, now),
	}

	err := s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		if err := tx.Periods().LockPeriodScope(ctx, cmd.Entity); err != nil {
			return err
		}
		existing, err := tx.Periods().ListPeriods(ctx, cmd.Entity)
		if err != nil {
			return err
		}
		for _, p := range existing {
			if p.Overlaps(start, end) {
				return fmt.Errorf("%w: period overlaps %q", apperrors.ErrConflict, p.Name)
			}
		}
		if err := tx.Periods().SavePeriod(ctx, period); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, portssvc.AuditRecord{
			Action:     domain.AuditPeriodCreated,
			EntityName: "period",
			EntityID:   period.PeriodID,
			ActorID:    actorID,
			After:      period,
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create period", slog.String("entity", cmd.Entity.String()))
		return nil, err
	}
	return &period, nil
}

func (s *periodService) ClosePeriod(ctx context.Context, periodID string, actorID string) (*domain.AccountingPeriod, error) {
	return s.setClosed(ctx, periodID, actorID, true)
}

func (s *periodService) ReopenPeriod(ctx context.Context, periodID string, actorID string) (*domain.AccountingPeriod, error) {
	return s.setClosed(ctx, periodID, actorID, false)
}

func (s *periodService) setClosed(ctx context.Context, periodID string, actorID string, closed bool) (*domain.AccountingPeriod, error) {
	var updated domain.AccountingPeriod
	err := s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		period, err := tx.Periods().FindPeriodByID(ctx, periodID)
		if err != nil {
			return err
		}
		if err := s.access.ValidateEntityAccess(ctx, period.Entity, actorID); err != nil {
			return err
		}
		if period.IsClosed == closed {
			return fmt.Errorf("%w: period %q is already %s", apperrors.ErrInvalidState, period.Name, closedWord(closed))
		}

		before := *period
		now := s.now()
		period.IsClosed = closed
		if closed {
			period.ClosedBy = &actorID
			period.ClosedAt = &now
		} else {
			period.ClosedBy = nil
			period.ClosedAt = nil
		}
		period.Touch(actorID, now)
		if err := tx.Periods().UpdatePeriod(ctx, *period); err != nil {
			return err
		}

		action := domain.AuditPeriodReopened
		if closed {
			action = domain.AuditPeriodClosed
		}
		updated = *period
		return s.audit.Record(ctx, tx, portssvc.AuditRecord{
			Action:     action,
			EntityName: "period",
			EntityID:   period.PeriodID,
			ActorID:    actorID,
			Before:     before,
			After:      updated,
		})
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Period "+closedWord(closed), slog.String("period_id", periodID))
	return &updated, nil
}

func closedWord(closed bool) string {
	if closed {
		return "closed"
	}
	return "open"
}

func (s *periodService) ListPeriods(ctx context.Context, entity domain.EntityRef) ([]domain.AccountingPeriod, error) {
	if err := entity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return s.periodRepo.ListPeriods(ctx, entity)
}

func (s *periodService) GetPeriod(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	return s.periodRepo.FindPeriodByID(ctx, periodID)
}

// EnsurePostingAllowed implements portssvc.PeriodGuard. Dates outside every period
// are open.
func (s *periodService) EnsurePostingAllowed(ctx context.Context, tx portsrepo.TxRepositories, entity domain.EntityRef, date time.Time) error {
	period, err := tx.Periods().FindPeriodCovering(ctx, entity, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if !period.IsClosed {
		return nil
	}
	if s.policy == domain.ClosedPeriodWarn {
		s.LogWarn(ctx, "Posting into closed period",
			slog.String("period_id", period.PeriodID),
			slog.String("entity", entity.String()),
			slog.Time("date", date))
		return nil
	}
	return fmt.Errorf("%w: period %q is closed", apperrors.ErrLocked, period.Name)
}
