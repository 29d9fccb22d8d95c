package dto

import (
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
)

// CreatePeriodRequest defines a new accounting period. EndDate is exclusive.
type CreatePeriodRequest struct {
	EntityParams
	Name      string `json:"name" binding:"required"`
	StartDate string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" binding:"required,datetime=2006-01-02"`
}

// ToCommand converts the request for the given books. Dates were checked by binding.
func (r CreatePeriodRequest) ToCommand(entity domain.EntityRef) portssvc.CreatePeriodCmd {
	start, _ := time.Parse(DateLayout, r.StartDate)
	end, _ := time.Parse(DateLayout, r.EndDate)
	return portssvc.CreatePeriodCmd{Entity: entity, Name: r.Name, Start: start, End: end}
}

// PeriodResponse defines the data returned for an accounting period.
type PeriodResponse struct {
	PeriodID   string            `json:"periodID"`
	EntityType domain.EntityType `json:"entityType"`
	EntityID   string            `json:"entityId,omitempty"`
	Name       string            `json:"name"`
	StartDate  string            `json:"startDate"`
	EndDate    string            `json:"endDate"`
	IsClosed   bool              `json:"isClosed"`
	ClosedBy   *string           `json:"closedBy,omitempty"`
	ClosedAt   *time.Time        `json:"closedAt,omitempty"`
}

// ToPeriodResponse converts a domain period.
func ToPeriodResponse(p *domain.AccountingPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:   p.PeriodID,
		EntityType: p.Entity.Type,
		EntityID:   p.Entity.ID,
		Name:       p.Name,
		StartDate:  FormatDate(p.StartDate),
		EndDate:    FormatDate(p.EndDate),
		IsClosed:   p.IsClosed,
		ClosedBy:   p.ClosedBy,
		ClosedAt:   p.ClosedAt,
	}
}

// ListPeriodsResponse lists the periods of one entity.
type ListPeriodsResponse struct {
	Data []PeriodResponse `json:"data"`
}
