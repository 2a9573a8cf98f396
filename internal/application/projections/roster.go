package projections

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"facilitydesk/internal/domain/member"
	"facilitydesk/internal/domain/membership"
)

// HomePreviewSize is how many expired / expiring members the home page lists.
const HomePreviewSize = 5

// ClassifiedMember is a member together with its derived lifecycle state.
// INVARIANT: built fresh on every classification pass and never mutated afterward
type ClassifiedMember struct {
	Member      member.Member
	Status      membership.Status
	CurrentPlan string
	Current     *membership.Membership // most recent membership, nil when none
	DaysLeft    int                    // days until Current ends; 0 when Current is nil
}

// classifiedMemberJSON is the wire shape of a ClassifiedMember.
type classifiedMemberJSON struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	PhotoURL    string            `json:"photoUrl,omitempty"`
	Balance     decimal.Decimal   `json:"balance"`
	Status      membership.Status `json:"status"`
	CurrentPlan string            `json:"currentPlan"`
	EndDate     string            `json:"endDate,omitempty"`
	DaysLeft    *int              `json:"daysLeft,omitempty"`
}

// MarshalJSON flattens the member and its classification into one object.
func (c ClassifiedMember) MarshalJSON() ([]byte, error) {
	out := classifiedMemberJSON{
		ID:          c.Member.ID,
		Name:        c.Member.Name,
		Email:       c.Member.Email,
		Phone:       c.Member.Phone,
		PhotoURL:    c.Member.PhotoURL,
		Balance:     c.Member.Balance,
		Status:      c.Status,
		CurrentPlan: c.CurrentPlan,
	}
	if c.Current != nil {
		out.EndDate = c.Current.EndDate.Format("2006-01-02")
		days := c.DaysLeft
		out.DaysLeft = &days
	}
	return json.Marshal(out)
}

// RosterCounts holds the per-status tallies for a facility.
// Total is len(members) regardless of classification.
type RosterCounts struct {
	Active   int `json:"active"`
	Expiring int `json:"expiring"`
	Expired  int `json:"expired"`
	Total    int `json:"total"`
}

// RosterResult carries the output of AggregateRoster. All lists keep input order.
type RosterResult struct {
	Counts       RosterCounts
	Classified   []ClassifiedMember
	Expired      []ClassifiedMember
	ExpiringSoon []ClassifiedMember
	WithBalance  []ClassifiedMember
}

// ClassifyMember runs the membership classifier for one member.
func ClassifyMember(m member.Member, now time.Time, horizonDays int) ClassifiedMember {
	c := membership.Classify(m.Memberships, now, horizonDays)
	cm := ClassifiedMember{
		Member:      m,
		Status:      c.Status,
		CurrentPlan: c.PlanLabel,
		Current:     c.Current,
	}
	if c.Current != nil {
		cm.DaysLeft = membership.DaysUntil(c.Current.EndDate, now)
	}
	return cm
}

// AggregateRoster classifies every member once and partitions the results.
// POST: Expired and ExpiringSoon are disjoint; Active members are in neither
// POST: Counts.Active+Counts.Expiring+Counts.Expired == Counts.Total
func AggregateRoster(members []member.Member, now time.Time, horizonDays int) RosterResult {
	result := RosterResult{
		Counts:     RosterCounts{Total: len(members)},
		Classified: make([]ClassifiedMember, 0, len(members)),
	}

	for _, m := range members {
		cm := ClassifyMember(m, now, horizonDays)
		result.Classified = append(result.Classified, cm)

		if m.HasBalance() {
			result.WithBalance = append(result.WithBalance, cm)
		}

		switch cm.Status {
		case membership.Active:
			result.Counts.Active++
		case membership.Expiring:
			result.Counts.Expiring++
			result.ExpiringSoon = append(result.ExpiringSoon, cm)
		default:
			result.Counts.Expired++
			result.Expired = append(result.Expired, cm)
		}
	}

	return result
}

// BirthdaysToday returns the members whose birth month and day match now in loc.
func BirthdaysToday(members []member.Member, now time.Time, loc *time.Location) []member.Member {
	var out []member.Member
	for _, m := range members {
		if m.IsBirthday(now, loc) {
			out = append(out, m)
		}
	}
	return out
}

// Top returns the first n items in input order.
func Top[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) <= n {
		return items
	}
	return items[:n]
}
