package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
)

// PgxProcessedEventRepository records booked events under a (event_type, source_id) primary key.
type PgxProcessedEventRepository struct {
	BaseRepository
}

var _ portsrepo.ProcessedEventRepository = (*PgxProcessedEventRepository)(nil)

func (r *PgxProcessedEventRepository) MarkEventProcessed(ctx context.Context, eventType domain.EventType, sourceID string, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO processed_events (event_type, source_id, processed_at) VALUES ($1, $2, $3)`,
		string(eventType), sourceID, at)
	if err != nil {
		return mapWriteError(err, "event "+string(eventType)+" "+sourceID)
	}
	return nil
}

// PgxSequenceRepository hands out numbers outside any business transaction.
type PgxSequenceRepository struct {
	BaseRepository
}

var _ portsrepo.SequenceRepository = (*PgxSequenceRepository)(nil)

func (r *PgxSequenceRepository) NextSequence(ctx context.Context, scope string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sequences (scope, value) VALUES ($1, 1)
		ON CONFLICT (scope) DO UPDATE SET value = sequences.value + 1
		RETURNING value`, scope).Scan(&n)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to advance sequence "+scope, err)
	}
	return n, nil
}
