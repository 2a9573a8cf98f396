package membership

import (
	"time"

	"facilitydesk/internal/domain/plan"
)

// DefaultHorizonDays is how close to its end date an active membership must be
// before it is reported as expiring.
const DefaultHorizonDays = 7

// Status is the derived point-in-time lifecycle state of a member.
type Status string

// Lifecycle states.
const (
	Active   Status = "active"
	Expiring Status = "expiring"
	Expired  Status = "expired"
)

// Valid reports whether s is one of the three lifecycle states.
func (s Status) Valid() bool {
	return s == Active || s == Expiring || s == Expired
}

// Classification is the outcome of classifying one member's membership history.
type Classification struct {
	Status    Status
	PlanLabel string
	Current   *Membership // most recent membership, nil when there is none
}

// MostRecent returns the membership with the latest StartDate.
// Ties keep the first one seen in input order.
// POST: returns nil, false for an empty slice
func MostRecent(ms []Membership) (*Membership, bool) {
	if len(ms) == 0 {
		return nil, false
	}
	best := 0
	for i := 1; i < len(ms); i++ {
		if ms[i].StartDate.After(ms[best].StartDate) {
			best = i
		}
	}
	current := ms[best]
	return &current, true
}

// Classify derives a lifecycle status and plan label from a membership history.
// Only the most recent membership is considered. An active membership whose end date
// already passed is still Expiring: the horizon test is end <= now+horizon.
// PRE: horizonDays >= 0
// POST: Status is always one of Active, Expiring, Expired
func Classify(ms []Membership, now time.Time, horizonDays int) Classification {
	current, ok := MostRecent(ms)
	if !ok {
		return Classification{Status: Expired, PlanLabel: plan.LabelNoPlan}
	}

	c := Classification{PlanLabel: current.Plan.Label(), Current: current}
	horizon := now.Add(time.Duration(horizonDays) * 24 * time.Hour)

	switch {
	case !current.IsLive():
		c.Status = Expired
	case !current.EndDate.After(horizon):
		c.Status = Expiring
	default:
		c.Status = Active
	}
	return c
}
