package domain

import "time"

// AccountingPeriod is a [StartDate, EndDate) window of an entity's books.
type AccountingPeriod struct {
	PeriodID  string     `json:"periodID"`
	Entity    EntityRef  `json:"entity"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"startDate"`
	EndDate   time.Time  `json:"endDate"`
	IsClosed  bool       `json:"isClosed"`
	ClosedBy  *string    `json:"closedBy,omitempty"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
	AuditFields
}

// Contains reports whether t falls inside the period.
func (p AccountingPeriod) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && t.Before(p.EndDate)
}

// Overlaps reports whether the two windows intersect.
func (p AccountingPeriod) Overlaps(start, end time.Time) bool {
	return start.Before(p.EndDate) && p.StartDate.Before(end)
}

// ClosedPeriodPolicy decides what happens when a voucher is posted into a closed period.
type ClosedPeriodPolicy string

const (
	// ClosedPeriodReject fails the posting with a locked error.
	ClosedPeriodReject ClosedPeriodPolicy = "reject"
	// ClosedPeriodWarn allows the posting and logs a warning.
	ClosedPeriodWarn ClosedPeriodPolicy = "warn"
)

// IsValid reports whether p is a known policy.
func (p ClosedPeriodPolicy) IsValid() bool {
	return p == ClosedPeriodReject || p == ClosedPeriodWarn
}
