package services

import (
	"context"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// AutoVoucherSvc books marketplace events without human input.
type AutoVoucherSvc interface {
	// CreateAutoVoucher creates and posts every voucher the event implies in one
	// transaction. A replayed event fails with apperrors.ErrEventAlreadyProcessed.
	CreateAutoVoucher(ctx context.Context, event domain.AccountingEvent, actorID string) (*domain.AutoVoucherResult, error)

	// SupportedEvents lists the registered event types.
	SupportedEvents() []domain.EventType
}
