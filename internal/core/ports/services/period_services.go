package services

import (
	"context"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
)

// CreatePeriodCmd describes a new [Start, End) accounting period.
type CreatePeriodCmd struct {
	Entity domain.EntityRef
	Name   string
	Start  time.Time
	End    time.Time
}

// PeriodSvcFacade manages accounting periods.
type PeriodSvcFacade interface {
	CreatePeriod(ctx context.Context, cmd CreatePeriodCmd, actorID string) (*domain.AccountingPeriod, error)
	ClosePeriod(ctx context.Context, periodID string, actorID string) (*domain.AccountingPeriod, error)
	ReopenPeriod(ctx context.Context, periodID string, actorID string) (*domain.AccountingPeriod, error)
	ListPeriods(ctx context.Context, entity domain.EntityRef) ([]domain.AccountingPeriod, error)
	GetPeriod(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)
}

// PeriodGuard applies the closed-period policy to a posting date.
type PeriodGuard interface {
	// EnsurePostingAllowed returns an error matching apperrors.ErrLocked when the policy
	// rejects posting on date.
	EnsurePostingAllowed(ctx context.Context, tx portsrepo.TxRepositories, entity domain.EntityRef, date time.Time) error
}
