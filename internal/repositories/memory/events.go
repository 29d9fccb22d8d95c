package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

func (r *repos) MarkEventProcessed(_ context.Context, eventType domain.EventType, sourceID string, at time.Time) error {
	key := string(eventType) + "|" + sourceID
	return r.write(func(st *state) error {
		if _, seen := st.events[key]; seen {
			return fmt.Errorf("%w: event %s %s", apperrors.ErrDuplicate, eventType, sourceID)
		}
		st.events[key] = at
		return nil
	})
}

func (r *repos) NextSequence(_ context.Context, scope string) (int64, error) {
	var n int64
	err := r.write(func(st *state) error {
		st.sequences[scope]++
		n = st.sequences[scope]
		return nil
	})
	return n, err
}
