package dto

import (
	"encoding/json"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// AccountingEventRequest wraps a marketplace event posted by the order and payment
// subsystem. Payload holds the event body, e.g. {"orderId": ..., "vendorId": ...}.
type AccountingEventRequest struct {
	EventType string          `json:"eventType" binding:"required"`
	Payload   json.RawMessage `json:"payload" binding:"required"`
	// Async queues the event for the background worker instead of booking it inline.
	Async bool `json:"async"`
}

// AutoVoucherResponse reports the vouchers an event produced.
type AutoVoucherResponse struct {
	EventType   domain.EventType          `json:"eventType"`
	SourceID    string                    `json:"sourceId"`
	Vouchers    []VoucherResponse         `json:"vouchers"`
	Commissions []domain.CommissionRecord `json:"commissions,omitempty"`
}

// ToAutoVoucherResponse converts an engine result.
func ToAutoVoucherResponse(res *domain.AutoVoucherResult) AutoVoucherResponse {
	return AutoVoucherResponse{
		EventType:   res.EventType,
		SourceID:    res.SourceID,
		Vouchers:    ToListVoucherResponse(res.Vouchers),
		Commissions: res.Commissions,
	}
}

// EventQueuedResponse acknowledges an event handed to the worker.
type EventQueuedResponse struct {
	TaskID    string           `json:"taskId"`
	EventType domain.EventType `json:"eventType"`
	SourceID  string           `json:"sourceId"`
}
