// Package pagination normalizes page/limit parameters and builds the list envelope.
package pagination

import (
	"math"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	MaxPage      = 1_000_000
)

// Pagination is the envelope returned alongside list data.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Normalize clamps page to [1, MaxPage] and limit to [1, MaxLimit], defaulting to DefaultLimit.
func Normalize(page, limit int) domain.PageRequest {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return domain.PageRequest{Page: page, Limit: limit}
}

// New builds the envelope for a page of a result set of total rows.
func New(req domain.PageRequest, total int) Pagination {
	pages := 0
	if req.Limit > 0 && total > 0 {
		pages = int(math.Ceil(float64(total) / float64(req.Limit)))
	}
	return Pagination{Page: req.Page, Limit: req.Limit, Total: total, Pages: pages}
}
