package membership

import (
	"errors"
	"math"
	"time"

	"facilitydesk/internal/domain/plan"
)

// Record status flags as stored on a membership row.
const (
	RecordActive   = "active"
	RecordInactive = "inactive"
)

// Domain errors
var (
	ErrNotFound     = errors.New("membership not found")
	ErrInvalidRange = errors.New("membership end date must be after start date")
)

// Membership is one renewal period of a member's subscription to a plan.
// INVARIANT: immutable once loaded for the duration of one computation
type Membership struct {
	ID         string
	MemberID   string
	StartDate  time.Time
	EndDate    time.Time
	Status     string
	IsDisabled bool
	Plan       *plan.Plan // nil when the plan reference is missing
}

// Validate checks if the Membership has valid data.
// PRE: Membership struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (m *Membership) Validate() error {
	if m.MemberID == "" {
		return errors.New("membership must belong to a member")
	}
	if m.StartDate.IsZero() || m.EndDate.IsZero() {
		return errors.New("membership dates are required")
	}
	if !m.EndDate.After(m.StartDate) {
		return ErrInvalidRange
	}
	if m.Status != RecordActive && m.Status != RecordInactive {
		return errors.New("status must be 'active' or 'inactive'")
	}
	return nil
}

// IsLive reports whether the record flag is active and the membership is not disabled.
func (m *Membership) IsLive() bool {
	return m.Status == RecordActive && !m.IsDisabled
}

// DaysUntil returns the whole days from now until end, rounded up.
// Negative values mean the end date has passed; zero means it ends today.
func DaysUntil(end, now time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}
