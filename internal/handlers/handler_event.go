package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/dto"
	"github.com/SscSPs/marketplace_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// EventQueue hands accounting events to the background worker.
type EventQueue interface {
	EnqueueEvent(ctx context.Context, event domain.AccountingEvent, actorID string) (string, error)
}

type eventHandler struct {
	autoVoucher portssvc.AutoVoucherSvc
	queue       EventQueue
}

// RegisterEventRoutes registers the auto-voucher intake. queue may be nil, in which
// case async requests are rejected.
func RegisterEventRoutes(rg *gin.RouterGroup, autoVoucher portssvc.AutoVoucherSvc, queue EventQueue) {
	h := &eventHandler{autoVoucher: autoVoucher, queue: queue}
	rg.POST("/events", middleware.RequireRole(domain.RoleAdmin, domain.RoleSystem), h.handleEvent)
}

// handleEvent godoc
// @Summary Book a marketplace event
// @Description Creates and posts the vouchers implied by an order, payment, settlement, payout or refund event. Each event is booked once per source id.
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.AccountingEventRequest true "Event type and payload"
// @Success 201 {object} dto.AutoVoucherResponse
// @Success 202 {object} dto.EventQueuedResponse "Queued for the worker"
// @Failure 400 {object} dto.ErrorResponse "Unknown event type or invalid payload"
// @Failure 404 {object} dto.ErrorResponse "A required system account is missing"
// @Failure 409 {object} dto.ErrorResponse "Event already processed"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /events [post]
func (h *eventHandler) handleEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AccountingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format: "+err.Error())
		return
	}
	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	event, err := domain.DecodeEvent(domain.EventType(req.EventType), req.Payload)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	logger = logger.With(slog.String("event_type", req.EventType), slog.String("source_id", event.SourceID()))

	if req.Async {
		if h.queue == nil {
			respondBadRequest(c, "asynchronous event processing is disabled")
			return
		}
		taskID, err := h.queue.EnqueueEvent(c.Request.Context(), event, actorID)
		if err != nil {
			respondError(c, err, "Failed to queue event")
			return
		}
		logger.Info("Event queued", slog.String("task_id", taskID))
		c.JSON(http.StatusAccepted, dto.EventQueuedResponse{TaskID: taskID, EventType: event.EventType(), SourceID: event.SourceID()})
		return
	}

	result, err := h.autoVoucher.CreateAutoVoucher(c.Request.Context(), event, actorID)
	if err != nil {
		respondError(c, err, "Failed to book event")
		return
	}

	logger.Info("Event booked", slog.Int("vouchers", len(result.Vouchers)))
	c.JSON(http.StatusCreated, dto.ToAutoVoucherResponse(result))
}
