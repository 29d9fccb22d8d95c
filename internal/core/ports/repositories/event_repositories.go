package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// ProcessedEventRepository records which accounting events were already booked.
type ProcessedEventRepository interface {
	// MarkEventProcessed records the event. A repeat returns apperrors.ErrDuplicate.
	MarkEventProcessed(ctx context.Context, eventType domain.EventType, sourceID string, at time.Time) error
}

// SequenceRepository hands out gap-tolerant, strictly increasing numbers per scope.
type SequenceRepository interface {
	// NextSequence atomically increments and returns the scope's counter, starting at 1.
	NextSequence(ctx context.Context, scope string) (int64, error)
}
