package periods

import (
	"errors"
	"strings"
	"time"
)

// PeriodStatus enumerates valid period states.
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
)

// Period represents a fiscal period window that gates postability.
type Period struct {
	ID        int64
	TenantID  int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Status    PeriodStatus
	ClosedAt  *time.Time
	ClosedBy  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Covers reports whether the date falls inside the period window.
func (p Period) Covers(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// CreateInput captures validation rules for new periods.
type CreateInput struct {
	TenantID  int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// Validate ensures the create period input is coherent.
func (in CreateInput) Validate() error {
	if in.TenantID == 0 {
		return errors.New("periods: tenant required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("periods: name required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return errors.New("periods: start and end date required")
	}
	if in.StartDate.After(in.EndDate) {
		return errors.New("periods: start date cannot be after end date")
	}
	return nil
}
