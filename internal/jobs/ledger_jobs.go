package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/authz"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/hibiken/asynq"
)

// systemContext runs a task as the system principal with a task-scoped logger.
func systemContext(ctx context.Context, logger *slog.Logger, actorID string, t *asynq.Task) context.Context {
	taskID, _ := asynq.GetTaskID(ctx)
	logger = logger.With(slog.String("task_type", t.Type()), slog.String("task_id", taskID))
	ctx = middleware.WithLogger(ctx, logger)
	return authz.WithPrincipal(ctx, domain.SystemPrincipal(actorID))
}

// permanent reports whether retrying err cannot succeed.
func permanent(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrPermission) ||
		errors.Is(err, apperrors.ErrInvalidState) ||
		errors.Is(err, apperrors.ErrImmutable) ||
		errors.Is(err, apperrors.ErrLocked) ||
		errors.Is(err, apperrors.ErrConflict)
}

// EventJob books queued accounting events.
type EventJob struct {
	autoVoucher portssvc.AutoVoucherSvc
	metrics     *Metrics
	logger      *slog.Logger
}

// NewEventJob constructs the event booking handler.
func NewEventJob(autoVoucher portssvc.AutoVoucherSvc, metrics *Metrics, logger *slog.Logger) *EventJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventJob{autoVoucher: autoVoucher, metrics: metrics, logger: logger}
}

// ProcessTask books the event. A replay is treated as done; a payload the ledger
// rejects is not retried.
func (j *EventJob) ProcessTask(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskBookEvent)

	var payload EventPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(fmt.Errorf("%w: decode task: %v", asynq.SkipRetry, err))
	}
	if payload.ActorID == "" {
		return tracker.End(fmt.Errorf("%w: %w: task carries no actor", asynq.SkipRetry, apperrors.ErrValidation))
	}
	event, err := domain.DecodeEvent(payload.EventType, payload.Payload)
	if err != nil {
		return tracker.End(fmt.Errorf("%w: %w", asynq.SkipRetry, err))
	}

	ctx = systemContext(ctx, j.logger, payload.ActorID, t)
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("event_type", string(payload.EventType)),
		slog.String("source_id", event.SourceID()))

	_, err = j.autoVoucher.CreateAutoVoucher(ctx, event, payload.ActorID)
	switch {
	case err == nil:
		return tracker.End(nil)
	case errors.Is(err, apperrors.ErrEventAlreadyProcessed):
		logger.Info("Queued event was already booked")
		return tracker.End(nil)
	case permanent(err):
		logger.Error("Queued event rejected", slog.String("error", err.Error()))
		return tracker.End(fmt.Errorf("%w: %w", asynq.SkipRetry, err))
	default:
		return tracker.End(err)
	}
}

// PayablesRebuildJob recomputes the vendor payable cache.
type PayablesRebuildJob struct {
	payables portssvc.VendorPayableSvcFacade
	metrics  *Metrics
	logger   *slog.Logger
}

// NewPayablesRebuildJob constructs the payable rebuild handler.
func NewPayablesRebuildJob(payables portssvc.VendorPayableSvcFacade, metrics *Metrics, logger *slog.Logger) *PayablesRebuildJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayablesRebuildJob{payables: payables, metrics: metrics, logger: logger}
}

func (j *PayablesRebuildJob) ProcessTask(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskRebuildPayables)

	var payload PayablesRebuildPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(fmt.Errorf("%w: decode task: %v", asynq.SkipRetry, err))
	}
	if payload.ActorID == "" {
		return tracker.End(fmt.Errorf("%w: %w: task carries no actor", asynq.SkipRetry, apperrors.ErrValidation))
	}
	ctx = systemContext(ctx, j.logger, payload.ActorID, t)

	drifts, err := j.payables.RebuildVendorPayables(ctx, payload.VendorID, payload.ActorID)
	if err != nil {
		if permanent(err) {
			err = fmt.Errorf("%w: %w", asynq.SkipRetry, err)
		}
		return tracker.End(err)
	}
	j.metrics.AddPayableDrifts(len(drifts))
	logger := middleware.GetLoggerFromCtx(ctx)
	for _, d := range drifts {
		logger.Warn("Vendor payable drift corrected",
			slog.String("vendor_id", d.VendorID),
			slog.String("cached", d.Cached.String()),
			slog.String("rebuilt", d.Rebuilt.String()))
	}
	return tracker.End(nil)
}

// IntegrityJob checks the posted ledger and reports violations.
type IntegrityJob struct {
	integrity portssvc.IntegritySvc
	metrics   *Metrics
	logger    *slog.Logger
	actorID   string
}

// NewIntegrityJob constructs the integrity check handler. actorID is the system
// actor the check runs as.
func NewIntegrityJob(integrity portssvc.IntegritySvc, metrics *Metrics, logger *slog.Logger, actorID string) *IntegrityJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrityJob{integrity: integrity, metrics: metrics, logger: logger, actorID: actorID}
}

func (j *IntegrityJob) ProcessTask(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskCheckIntegrity)

	var payload IntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(fmt.Errorf("%w: decode task: %v", asynq.SkipRetry, err))
	}
	ctx = systemContext(ctx, j.logger, j.actorID, t)

	issues, err := j.integrity.CheckIntegrity(ctx, payload.Entity)
	if err != nil {
		if permanent(err) {
			err = fmt.Errorf("%w: %w", asynq.SkipRetry, err)
		}
		return tracker.End(err)
	}
	j.metrics.AddIntegrityIssues(len(issues))
	logger := middleware.GetLoggerFromCtx(ctx)
	if len(issues) == 0 {
		logger.Info("Ledger integrity check passed")
		return tracker.End(nil)
	}
	for _, issue := range issues {
		logger.Error("Ledger integrity violation",
			slog.String("voucher_id", issue.VoucherID),
			slog.String("voucher_number", issue.VoucherNumber),
			slog.String("problem", issue.Problem))
	}
	// The check itself succeeded; violations are surfaced through logs and metrics.
	return tracker.End(nil)
}

// Handlers returns the task handlers of the ledger worker.
func Handlers(services *portssvc.ServiceContainer, metrics *Metrics, logger *slog.Logger, systemActor string) []TaskHandler {
	return []TaskHandler{
		{Type: TaskBookEvent, Handler: NewEventJob(services.AutoVoucher, metrics, logger)},
		{Type: TaskRebuildPayables, Handler: NewPayablesRebuildJob(services.VendorPayable, metrics, logger)},
		{Type: TaskCheckIntegrity, Handler: NewIntegrityJob(services.Integrity, metrics, logger, systemActor)},
	}
}
