package window

import "time"

// Timeline keywords accepted by Resolve.
const (
	Today      = "today"
	Yesterday  = "yesterday"
	ThisMonth  = "thisMonth"
	LastMonth  = "lastMonth"
	Last7Days  = "last7Days"
	Last30Days = "last30Days"
)

// DateLayout is the calendar-date key format used for day buckets.
const DateLayout = "2006-01-02"

// Timelines lists every recognised keyword in display order.
var Timelines = []string{Today, Yesterday, ThisMonth, LastMonth, Last7Days, Last30Days}

// Window is a half-open [Start, End) time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseTimeline returns the effective keyword for raw.
// Anything unrecognised falls back to Today without an error.
func ParseTimeline(raw string) string {
	for _, t := range Timelines {
		if raw == t {
			return t
		}
	}
	return Today
}

// Resolve converts a timeline keyword into window boundaries.
// PRE: loc is non-nil
// POST: Start < End; both boundaries are local midnights in loc
func Resolve(keyword string, ref time.Time, loc *time.Location) Window {
	today := Midnight(ref, loc)
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)

	switch ParseTimeline(keyword) {
	case Yesterday:
		return Window{Start: today.AddDate(0, 0, -1), End: today}
	case ThisMonth:
		return Window{Start: firstOfMonth, End: firstOfMonth.AddDate(0, 1, 0)}
	case LastMonth:
		return Window{Start: firstOfMonth.AddDate(0, -1, 0), End: firstOfMonth}
	case Last7Days:
		return Window{Start: today.AddDate(0, 0, -7), End: today}
	case Last30Days:
		return Window{Start: today.AddDate(0, 0, -30), End: today}
	default:
		return Window{Start: today, End: today.AddDate(0, 0, 1)}
	}
}

// Midnight truncates t to the start of its calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// Previous returns the immediately preceding window of identical duration.
// Its Start is not a local midnight when a DST change falls inside w.
// INVARIANT: Previous().End equals w.Start
func (w Window) Previous() Window {
	return Window{Start: w.Start.Add(-w.Duration()), End: w.Start}
}

// Duration returns End - Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether Start <= t < End.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days returns the local calendar days covered by the window, starting at Start and
// stepping one calendar day at a time while the day is before End.
func (w Window) Days() []time.Time {
	var days []time.Time
	for d := w.Start; d.Before(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
