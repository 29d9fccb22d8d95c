package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// IntegrationKeyRepositoryFacade persists machine client keys
type IntegrationKeyRepositoryFacade interface {
	SaveIntegrationKey(ctx context.Context, key domain.IntegrationKey) error
	FindIntegrationKeyByID(ctx context.Context, keyID string) (*domain.IntegrationKey, error)
	ListIntegrationKeys(ctx context.Context) ([]domain.IntegrationKey, error)
	RevokeIntegrationKey(ctx context.Context, keyID string, at time.Time) error
	TouchIntegrationKey(ctx context.Context, keyID string, at time.Time) error
}
