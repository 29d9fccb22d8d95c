package domain

import "time"

// IntegrationKey authenticates a machine client such as the order or payment subsystem.
type IntegrationKey struct {
	KeyID      string     `json:"keyID"`
	Name       string     `json:"name"`
	SecretHash string     `json:"-"`
	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
}

// IsRevoked reports whether the key was revoked.
func (k *IntegrationKey) IsRevoked() bool {
	return k.RevokedAt != nil
}
