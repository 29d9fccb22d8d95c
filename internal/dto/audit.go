package dto

import (
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/SscSPs/marketplace_ledger/internal/utils/pagination"
)

// ListAuditLogsParams defines query parameters for the audit log.
type ListAuditLogsParams struct {
	PageParams
	EntityName string `form:"entityName"`
	EntityID   string `form:"entityId"`
	Action     string `form:"action"`
	ActorID    string `form:"actorId"`
	From       string `form:"from"`
	To         string `form:"to"`
}

// ListAuditLogsResponse wraps a page of audit entries.
type ListAuditLogsResponse struct {
	Data       []domain.AuditLogEntry `json:"data"`
	Pagination pagination.Pagination  `json:"pagination"`
}
