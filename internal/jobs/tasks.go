// Package jobs runs ledger work on an Asynq worker: queued marketplace events and
// the scheduled maintenance tasks.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/hibiken/asynq"
)

const (
	// QueueEvents carries accounting events from the order and payment subsystem.
	QueueEvents = "ledger_events"
	// QueueMaintenance carries rebuilds and integrity checks.
	QueueMaintenance = "ledger_maintenance"

	// TaskBookEvent books one accounting event.
	TaskBookEvent = "ledger:event"
	// TaskRebuildPayables recomputes the vendor payable cache.
	TaskRebuildPayables = "ledger:payables:rebuild"
	// TaskCheckIntegrity verifies the posted ledger.
	TaskCheckIntegrity = "ledger:integrity"
)

// EventPayload is the queued form of an accounting event.
type EventPayload struct {
	EventType domain.EventType `json:"eventType"`
	Payload   json.RawMessage  `json:"payload"`
	ActorID   string           `json:"actorId"`
}

// PayablesRebuildPayload selects one vendor, or all when VendorID is empty.
type PayablesRebuildPayload struct {
	VendorID string `json:"vendorId,omitempty"`
	ActorID  string `json:"actorId"`
}

// IntegrityPayload selects one entity, or the whole ledger when Entity is nil.
type IntegrityPayload struct {
	Entity *domain.EntityRef `json:"entity,omitempty"`
}

// NewEventTask constructs the task for an accounting event. The task id is derived
// from the event so the same event cannot be queued twice while pending.
func NewEventTask(event domain.AccountingEvent, actorID string) (*asynq.Task, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event.EventType(), err)
	}
	data, err := json.Marshal(EventPayload{EventType: event.EventType(), Payload: raw, ActorID: actorID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookEvent, data,
		asynq.Queue(QueueEvents),
		asynq.TaskID(EventTaskID(event)),
		asynq.MaxRetry(10),
	), nil
}

// EventTaskID returns the task id used for event.
func EventTaskID(event domain.AccountingEvent) string {
	return fmt.Sprintf("event:%s:%s", event.EventType(), event.SourceID())
}

// NewPayablesRebuildTask constructs a payable cache rebuild task.
func NewPayablesRebuildTask(payload PayablesRebuildPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRebuildPayables, data, asynq.Queue(QueueMaintenance), asynq.MaxRetry(3)), nil
}

// NewIntegrityTask constructs a ledger integrity check task.
func NewIntegrityTask(payload IntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCheckIntegrity, data, asynq.Queue(QueueMaintenance), asynq.MaxRetry(3)), nil
}
