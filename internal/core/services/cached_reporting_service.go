package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
)

// ReportCache is a versioned JSON cache. *cache.Cache implements it.
type ReportCache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Bump(ctx context.Context) error
}

// cachedReportingService serves statements from a ReportCache and delegates
// everything else. Entries are invalidated by bumping the cache version from a
// ChangeHook.
type cachedReportingService struct {
	portssvc.ReportingSvc
	BaseService
	cache ReportCache
}

// NewCachedReportingService wraps inner with cached trial balance, profit and loss
// and balance sheet reads.
func NewCachedReportingService(inner portssvc.ReportingSvc, cache ReportCache, opts ...Option) portssvc.ReportingSvc {
	svc := &cachedReportingService{ReportingSvc: inner, cache: cache}
	svc.apply(opts)
	return svc
}

// InvalidateReports returns a ChangeHook that bumps the cache version.
func InvalidateReports(cache ReportCache) ChangeHook {
	return func(ctx context.Context) {
		if err := cache.Bump(ctx); err != nil {
			// Entries still expire with the cache TTL
			middleware.GetLoggerFromCtx(ctx).Warn("Failed to invalidate report cache", slog.String("error", err.Error()))
		}
	}
}

// reportDate formats an optional report date; nil means today.
func (s *cachedReportingService) reportDate(asOf *time.Time) string {
	if asOf == nil {
		return dateOnly(s.now()).Format(time.DateOnly)
	}
	return asOf.UTC().Format(time.RFC3339)
}

// fetch reads through the cache and falls back to load when Redis misbehaves.
func fetch[T any](ctx context.Context, s *cachedReportingService, load func() (*T, error), parts ...string) (*T, error) {
	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		s.LogWarn(ctx, "Report cache unavailable", slog.String("error", err.Error()))
		return load()
	}

	var report T
	var loadErr error
	err = s.cache.FetchJSON(ctx, key, &report, func(context.Context) (any, error) {
		v, err := load()
		loadErr = err
		return v, err
	})
	if loadErr != nil {
		return nil, loadErr
	}
	if err != nil {
		s.LogWarn(ctx, "Report cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		return load()
	}
	return &report, nil
}

func (s *cachedReportingService) TrialBalance(ctx context.Context, entity domain.EntityRef, asOf *time.Time) (*domain.TrialBalance, error) {
	if err := entity.Validate(); err != nil {
		return s.ReportingSvc.TrialBalance(ctx, entity, asOf)
	}
	return fetch(ctx, s, func() (*domain.TrialBalance, error) {
		return s.ReportingSvc.TrialBalance(ctx, entity, asOf)
	}, "ledger", "tb", entity.ScopeKey(), s.reportDate(asOf))
}

func (s *cachedReportingService) ProfitAndLoss(ctx context.Context, entity domain.EntityRef, start, end time.Time) (*domain.ProfitAndLoss, error) {
	if err := entity.Validate(); err != nil || end.Before(start) {
		return s.ReportingSvc.ProfitAndLoss(ctx, entity, start, end)
	}
	return fetch(ctx, s, func() (*domain.ProfitAndLoss, error) {
		return s.ReportingSvc.ProfitAndLoss(ctx, entity, start, end)
	}, "ledger", "pl", entity.ScopeKey(), start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
}

func (s *cachedReportingService) BalanceSheet(ctx context.Context, entity domain.EntityRef, asOf *time.Time) (*domain.BalanceSheet, error) {
	if err := entity.Validate(); err != nil {
		return s.ReportingSvc.BalanceSheet(ctx, entity, asOf)
	}
	return fetch(ctx, s, func() (*domain.BalanceSheet, error) {
		return s.ReportingSvc.BalanceSheet(ctx, entity, asOf)
	}, "ledger", "bs", entity.ScopeKey(), s.reportDate(asOf))
}
