package services

import (
	"context"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// IntegritySvc checks the posted ledger against its invariants.
type IntegritySvc interface {
	CheckIntegrity(ctx context.Context, entity *domain.EntityRef) ([]domain.IntegrityIssue, error)
}
