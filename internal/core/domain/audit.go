package domain

import (
	"encoding/json"
	"time"
)

// AuditAction names a mutating operation.
type AuditAction string

const (
	AuditAccountCreated     AuditAction = "ACCOUNT_CREATED"
	AuditAccountUpdated     AuditAction = "ACCOUNT_UPDATED"
	AuditAccountDeleted     AuditAction = "ACCOUNT_DELETED"
	AuditEntityProvisioned  AuditAction = "ENTITY_PROVISIONED"
	AuditVoucherCreated     AuditAction = "VOUCHER_CREATED"
	AuditVoucherPosted      AuditAction = "VOUCHER_POSTED"
	AuditVoucherLocked      AuditAction = "VOUCHER_LOCKED"
	AuditVoucherReversed    AuditAction = "VOUCHER_REVERSED"
	AuditVoucherCancelled   AuditAction = "VOUCHER_CANCELLED"
	AuditAutoVoucherEvent   AuditAction = "AUTO_VOUCHER_EVENT"
	AuditPeriodCreated      AuditAction = "PERIOD_CREATED"
	AuditPeriodClosed       AuditAction = "PERIOD_CLOSED"
	AuditPeriodReopened     AuditAction = "PERIOD_REOPENED"
	AuditPayablesRebuilt    AuditAction = "VENDOR_PAYABLES_REBUILT"
	AuditIntegrationKeyMade AuditAction = "INTEGRATION_KEY_CREATED"
	AuditIntegrationKeyGone AuditAction = "INTEGRATION_KEY_REVOKED"
)

// AuditLogEntry is an append-only record of one mutating operation.
type AuditLogEntry struct {
	AuditID    string          `json:"auditID"`
	Action     AuditAction     `json:"action"`
	EntityName string          `json:"entityName"`
	EntityID   string          `json:"entityID"`
	ActorID    string          `json:"actorID"`
	ActorName  string          `json:"actorName,omitempty"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	EntityName string
	EntityID   string
	Action     AuditAction
	ActorID    string
	From       *time.Time
	To         *time.Time
}
