package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// PeriodReader defines read operations for accounting periods
type PeriodReader interface {
	FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)

	// FindPeriodCovering returns the period containing date, or apperrors.ErrNotFound.
	FindPeriodCovering(ctx context.Context, entity domain.EntityRef, date time.Time) (*domain.AccountingPeriod, error)

	// ListPeriods returns an entity's periods by start date.
	ListPeriods(ctx context.Context, entity domain.EntityRef) ([]domain.AccountingPeriod, error)
}

// PeriodWriter defines write operations for accounting periods
type PeriodWriter interface {
	// LockPeriodScope serializes period writes for one entity until the transaction ends.
	LockPeriodScope(ctx context.Context, entity domain.EntityRef) error
	SavePeriod(ctx context.Context, period domain.AccountingPeriod) error
	UpdatePeriod(ctx context.Context, period domain.AccountingPeriod) error
}

// PeriodRepositoryFacade combines all period repository interfaces
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}
