package facility_test

import (
	"testing"
	"time"

	"facilitydesk/internal/domain/facility"
)

// TestStatusOf tests the facility subscription thresholds.
func TestStatusOf(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		end       time.Time
		wantState string
		wantDays  int
	}{
		{"plenty left", now.AddDate(0, 1, 0), facility.SubscriptionActive, 31},
		{"five days", now.AddDate(0, 0, 5), facility.SubscriptionExpiringSoon, 5},
		{"ends later today", now.Add(time.Hour), facility.SubscriptionExpiringSoon, 1},
		{"ended two days ago", now.AddDate(0, 0, -2), facility.SubscriptionExpired, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := facility.StatusOf(&facility.Subscription{EndDate: tt.end}, now)
			if got.State != tt.wantState {
				t.Errorf("state=%q, want %q", got.State, tt.wantState)
			}
			if got.DaysLeft != tt.wantDays {
				t.Errorf("days=%d, want %d", got.DaysLeft, tt.wantDays)
			}
		})
	}
}

// TestStatusOf_NoSubscription verifies the nil case.
func TestStatusOf_NoSubscription(t *testing.T) {
	if got := facility.StatusOf(nil, time.Now()); got.State != facility.SubscriptionNone {
		t.Fatalf("state=%q, want none", got.State)
	}
}

// TestFacilityLocation verifies time zone fallback.
func TestFacilityLocation(t *testing.T) {
	def := time.UTC
	if got := (&facility.Facility{}).Location(def); got != def {
		t.Errorf("empty timezone: got %v, want default", got)
	}
	if got := (&facility.Facility{Timezone: "Not/AZone"}).Location(def); got != def {
		t.Errorf("bad timezone: got %v, want default", got)
	}
	if got := (&facility.Facility{Timezone: "Asia/Kolkata"}).Location(def); got.String() != "Asia/Kolkata" {
		t.Errorf("kolkata: got %v", got)
	}
}
