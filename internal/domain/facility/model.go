package facility

import (
	"errors"
	"time"

	"facilitydesk/internal/domain/membership"
)

// ExpiringSoonDays is the threshold below which a facility subscription is flagged.
const ExpiringSoonDays = 5

// Subscription states reported on the settings page.
const (
	SubscriptionNone         = "none"
	SubscriptionActive       = "active"
	SubscriptionExpiringSoon = "expiring_soon"
	SubscriptionExpired      = "expired"
)

// ErrNotFound is returned by stores when no facility matches.
var ErrNotFound = errors.New("facility not found")

// Facility is a tenant that owns members, plans and transactions.
type Facility struct {
	ID       string
	OwnerID  string
	Name     string
	LogoURL  string
	Timezone string // IANA name; empty means the configured default
}

// Location resolves the facility time zone, falling back to def.
// PRE: def is non-nil
func (f *Facility) Location(def *time.Location) *time.Location {
	if f.Timezone == "" {
		return def
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return def
	}
	return loc
}

// Subscription is a facility's subscription to the dashboard product.
type Subscription struct {
	ID         string
	FacilityID string
	PlanName   string
	StartDate  time.Time
	EndDate    time.Time
	CreatedAt  time.Time
}

// SubscriptionStatus summarises how long a facility subscription has left.
type SubscriptionStatus struct {
	State    string
	DaysLeft int
}

// StatusOf derives the subscription state at now. A nil subscription yields SubscriptionNone.
func StatusOf(s *Subscription, now time.Time) SubscriptionStatus {
	if s == nil {
		return SubscriptionStatus{State: SubscriptionNone}
	}
	days := membership.DaysUntil(s.EndDate, now)
	switch {
	case days < 0:
		return SubscriptionStatus{State: SubscriptionExpired, DaysLeft: days}
	case days <= ExpiringSoonDays:
		return SubscriptionStatus{State: SubscriptionExpiringSoon, DaysLeft: days}
	default:
		return SubscriptionStatus{State: SubscriptionActive, DaysLeft: days}
	}
}
