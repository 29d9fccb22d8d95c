package services

import (
	"context"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// IntegrationKeySvcFacade manages machine client keys.
type IntegrationKeySvcFacade interface {
	// CreateKey stores a new key and returns it with the plaintext "<keyID>.<secret>", shown once.
	CreateKey(ctx context.Context, name string, actorID string) (*domain.IntegrationKey, string, error)

	// ValidateKey authenticates a plaintext key and returns the system principal it maps to.
	ValidateKey(ctx context.Context, raw string) (*domain.Principal, error)

	RevokeKey(ctx context.Context, keyID string, actorID string) error
	ListKeys(ctx context.Context) ([]domain.IntegrationKey, error)
}
