package dto

import (
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// CreateIntegrationKeyRequest names a new machine client.
type CreateIntegrationKeyRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// IntegrationKeyResponse describes a key without its secret.
type IntegrationKeyResponse struct {
	KeyID      string     `json:"keyID"`
	Name       string     `json:"name"`
	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
}

// CreateIntegrationKeyResponse carries the plaintext key. It is shown only once.
type CreateIntegrationKeyResponse struct {
	IntegrationKeyResponse
	Key string `json:"key"`
}

// ToIntegrationKeyResponse converts a domain key.
func ToIntegrationKeyResponse(k *domain.IntegrationKey) IntegrationKeyResponse {
	return IntegrationKeyResponse{
		KeyID:      k.KeyID,
		Name:       k.Name,
		CreatedBy:  k.CreatedBy,
		CreatedAt:  k.CreatedAt,
		LastUsedAt: k.LastUsedAt,
		RevokedAt:  k.RevokedAt,
	}
}

// ListIntegrationKeysResponse lists every key.
type ListIntegrationKeysResponse struct {
	Data []IntegrationKeyResponse `json:"data"`
}
