package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/SscSPs/marketplace_ledger/internal/utils/pagination"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// PageParams defines the page query parameters of list endpoints.
type PageParams struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=20"`
}

// ToPageRequest clamps the parameters into a domain page request.
func (p PageParams) ToPageRequest() domain.PageRequest {
	return pagination.Normalize(p.Page, p.Limit)
}

// EntityParams selects the books a request works on. An empty type means
// the caller's default books.
type EntityParams struct {
	EntityType string `form:"entityType" json:"entityType"`
	EntityID   string `form:"entityId" json:"entityId"`
}

// IsSet reports whether an entity was given explicitly.
func (p EntityParams) IsSet() bool {
	return p.EntityType != ""
}

// ToEntity converts the parameters to a validated entity ref.
func (p EntityParams) ToEntity() (domain.EntityRef, error) {
	ref := domain.EntityRef{Type: domain.EntityType(strings.ToUpper(p.EntityType)), ID: p.EntityID}
	if err := ref.Validate(); err != nil {
		return domain.EntityRef{}, err
	}
	return ref, nil
}

// ParseDate parses an optional YYYY-MM-DD value. An empty string yields nil.
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, use YYYY-MM-DD", value)
	}
	return &t, nil
}

// FormatDate renders a calendar date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
