package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/authz"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/core/services"
	"github.com/SscSPs/marketplace_ledger/internal/platform/config"
	"github.com/SscSPs/marketplace_ledger/internal/repositories/memory"
	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	systemActor = "order-system"
	vendorID    = "v1"
)

func newServices(t *testing.T) *portssvc.ServiceContainer {
	t.Helper()
	repos := memory.NewRepositoryProvider(memory.New())
	svc, err := services.NewServiceContainer(&config.Config{ClosedPeriodPolicy: domain.ClosedPeriodReject}, repos, authz.NewRoleAccessValidator(), nil)
	require.NoError(t, err)

	ctx := authz.WithPrincipal(context.Background(), domain.Principal{ActorID: systemActor, Role: domain.RoleSystem})
	_, err = svc.Account.ProvisionEntity(ctx, domain.AdminEntity(), systemActor)
	require.NoError(t, err)
	_, err = svc.Account.ProvisionEntity(ctx, domain.VendorEntity(vendorID), systemActor)
	require.NoError(t, err)
	return svc
}

func order(id, amount string) domain.OrderConfirmed {
	return domain.OrderConfirmed{
		OrderID:        id,
		VendorID:       vendorID,
		Amount:         decimal.RequireFromString(amount),
		CommissionRate: decimal.NewFromInt(10),
		Date:           time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewEventTask(t *testing.T) {
	task, err := NewEventTask(order("o-1", "1000"), systemActor)
	require.NoError(t, err)
	assert.Equal(t, TaskBookEvent, task.Type())

	var payload EventPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, domain.EventOrderConfirmed, payload.EventType)
	assert.Equal(t, systemActor, payload.ActorID)

	event, err := domain.DecodeEvent(payload.EventType, payload.Payload)
	require.NoError(t, err)
	assert.Equal(t, "o-1", event.SourceID())
	assert.Equal(t, "event:ORDER_CONFIRMED:o-1", EventTaskID(event))
}

func TestClientEnqueueEvent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	id, err := client.EnqueueEvent(ctx, order("o-1", "1000"), systemActor)
	require.NoError(t, err)
	assert.Equal(t, "event:ORDER_CONFIRMED:o-1", id)

	pending, err := mr.List("asynq:{" + QueueEvents + "}:pending")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, pending)

	_, err = client.EnqueueEvent(ctx, order("o-1", "1000"), systemActor)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate, "a pending event cannot be queued twice")

	_, err = client.EnqueuePayablesRebuild(ctx, PayablesRebuildPayload{ActorID: systemActor})
	require.NoError(t, err)
	maintenance, err := mr.List("asynq:{" + QueueMaintenance + "}:pending")
	require.NoError(t, err)
	assert.Len(t, maintenance, 1)
}

func TestEventJob(t *testing.T) {
	svc := newServices(t)
	metrics := NewMetrics(prometheus.NewRegistry())
	job := NewEventJob(svc.AutoVoucher, metrics, nil)
	ctx := context.Background()

	task, err := NewEventTask(order("o-1", "1000"), systemActor)
	require.NoError(t, err)
	require.NoError(t, job.ProcessTask(ctx, task))

	rows, err := svc.Reporting.VendorPayableReport(authz.WithPrincipal(ctx, domain.Principal{ActorID: systemActor, Role: domain.RoleSystem}), vendorID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// replay after a lost ack
	require.NoError(t, job.ProcessTask(ctx, task))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.runs.WithLabelValues(TaskBookEvent, "success")))

	invalid, err := NewEventTask(order("o-2", "0"), systemActor)
	require.NoError(t, err)
	err = job.ProcessTask(ctx, invalid)
	assert.True(t, errors.Is(err, asynq.SkipRetry), "rejected payloads are not retried")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	garbage := asynq.NewTask(TaskBookEvent, []byte(`{"eventType":"ORDER_SHIPPED","payload":{},"actorId":"order-system"}`))
	assert.True(t, errors.Is(job.ProcessTask(ctx, garbage), asynq.SkipRetry))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.failures.WithLabelValues(TaskBookEvent)))
}

func TestPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"malformed entry", fmt.Errorf("%w: line 1", apperrors.ErrMalformedEntry), true},
		{"closed period", apperrors.ErrLocked, true},
		{"payment already recorded", fmt.Errorf("%w: payment p-1 is already recorded", apperrors.ErrConflict), true},
		{"replay", apperrors.ErrEventAlreadyProcessed, true},
		{"vendor not provisioned yet", apperrors.ErrAccountResolution, false},
		{"sequence clash", apperrors.ErrDuplicate, false},
		{"database down", apperrors.NewAppError(500, "failed to write voucher", nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, permanent(tt.err))
		})
	}
}

func TestPayablesRebuildJob(t *testing.T) {
	svc := newServices(t)
	metrics := NewMetrics(prometheus.NewRegistry())
	events := NewEventJob(svc.AutoVoucher, metrics, nil)
	ctx := context.Background()

	task, err := NewEventTask(order("o-1", "500"), systemActor)
	require.NoError(t, err)
	require.NoError(t, events.ProcessTask(ctx, task))

	rebuild, err := NewPayablesRebuildTask(PayablesRebuildPayload{ActorID: systemActor})
	require.NoError(t, err)
	job := NewPayablesRebuildJob(svc.VendorPayable, metrics, nil)
	require.NoError(t, job.ProcessTask(ctx, rebuild))
	assert.Zero(t, testutil.ToFloat64(metrics.payableDrifts), "the cache is kept in step with postings")

	anonymous, err := NewPayablesRebuildTask(PayablesRebuildPayload{})
	require.NoError(t, err)
	err = job.ProcessTask(ctx, anonymous)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestIntegrityJob(t *testing.T) {
	svc := newServices(t)
	metrics := NewMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	events := NewEventJob(svc.AutoVoucher, metrics, nil)
	task, err := NewEventTask(order("o-1", "750"), systemActor)
	require.NoError(t, err)
	require.NoError(t, events.ProcessTask(ctx, task))

	check, err := NewIntegrityTask(IntegrityPayload{})
	require.NoError(t, err)
	job := NewIntegrityJob(svc.Integrity, metrics, nil, systemActor)
	require.NoError(t, job.ProcessTask(ctx, check))
	assert.Zero(t, testutil.ToFloat64(metrics.integrityIssues))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.runs.WithLabelValues(TaskCheckIntegrity, "success")))
}

func TestHandlersCoverEveryTask(t *testing.T) {
	svc := newServices(t)
	handlers := Handlers(svc, NewMetrics(prometheus.NewRegistry()), nil, systemActor)
	types := make([]string, 0, len(handlers))
	for _, h := range handlers {
		require.NotNil(t, h.Handler)
		types = append(types, h.Type)
	}
	assert.ElementsMatch(t, []string{TaskBookEvent, TaskRebuildPayables, TaskCheckIntegrity}, types)
}
