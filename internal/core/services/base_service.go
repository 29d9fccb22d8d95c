package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
)

// maxSequenceAttempts bounds retries of operations that allocate a sequence number
// and hit the unique-constraint backstop.
const maxSequenceAttempts = 3

// LedgerMetrics receives bookkeeping counters. *observability.Metrics implements it.
type LedgerMetrics interface {
	VoucherPosted(entityType, voucherType string)
	EventHandled(eventType, outcome string)
}

// ChangeHook runs after a commit that changed balances or the chart of accounts.
type ChangeHook func(ctx context.Context)

// BaseService provides common functionality for all services
type BaseService struct {
	clock    func() time.Time
	metrics  LedgerMetrics
	onChange []ChangeHook
}

// Option configures the shared parts of a service.
type Option func(*BaseService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *BaseService) {
		s.clock = clock
	}
}

// WithMetrics attaches bookkeeping counters.
func WithMetrics(m LedgerMetrics) Option {
	return func(s *BaseService) {
		s.metrics = m
	}
}

// WithChangeHook registers a hook called after ledger-changing commits, e.g. to
// invalidate cached reports.
func WithChangeHook(h ChangeHook) Option {
	return func(s *BaseService) {
		s.onChange = append(s.onChange, h)
	}
}

func (s *BaseService) apply(opts []Option) {
	for _, opt := range opts {
		opt(s)
	}
}

// now returns the current UTC time from the configured clock.
func (s *BaseService) now() time.Time {
	if s.clock != nil {
		return s.clock().UTC()
	}
	return time.Now().UTC()
}

// changed notifies the change hooks. Call it only after the transaction committed.
func (s *BaseService) changed(ctx context.Context) {
	for _, h := range s.onChange {
		h(ctx)
	}
}

// posted records a committed voucher and notifies the change hooks.
func (s *BaseService) posted(ctx context.Context, v domain.Voucher) {
	if s.metrics != nil {
		s.metrics.VoucherPosted(string(v.Entity.Type), string(v.VoucherType))
	}
	s.changed(ctx)
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// withSequenceRetry reruns fn while it fails with apperrors.ErrDuplicate. Sequence
// numbers are never reused, so each attempt allocates a fresh one.
func (s *BaseService) withSequenceRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxSequenceAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, apperrors.ErrDuplicate) {
			return err
		}
		s.LogWarn(ctx, "Sequence collision, retrying",
			slog.String("operation", op),
			slog.Int("attempt", attempt))
	}
	return err
}

// dateOnly truncates t to midnight UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// voucherHeader strips entries for audit snapshots.
func voucherHeader(v domain.Voucher) domain.Voucher {
	v.Entries = nil
	v.LedgerEntries = nil
	return v
}

func accountCodeScope(entity domain.EntityRef, class domain.AccountClass) string {
	return "account:" + entity.ScopeKey() + ":" + string(class)
}
