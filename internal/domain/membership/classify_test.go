package membership_test

import (
	"testing"
	"time"

	"facilitydesk/internal/domain/membership"
	"facilitydesk/internal/domain/plan"
)

var now = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

func monthly() *plan.Plan { return &plan.Plan{ID: "p1", Name: "Monthly"} }

// TestClassify covers the lifecycle rules for a single most-recent membership.
func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		ms         []membership.Membership
		wantStatus membership.Status
		wantLabel  string
	}{
		{
			name:       "no memberships",
			ms:         nil,
			wantStatus: membership.Expired,
			wantLabel:  plan.LabelNoPlan,
		},
		{
			name: "active far from end",
			ms: []membership.Membership{
				{ID: "a", StartDate: now.AddDate(0, 0, -10), EndDate: now.AddDate(0, 0, 20), Status: membership.RecordActive, Plan: monthly()},
			},
			wantStatus: membership.Active,
			wantLabel:  "Monthly",
		},
		{
			name: "ends in three days",
			ms: []membership.Membership{
				{ID: "a", StartDate: now.AddDate(0, 0, -27), EndDate: now.AddDate(0, 0, 3), Status: membership.RecordActive, Plan: monthly()},
			},
			wantStatus: membership.Expiring,
			wantLabel:  "Monthly",
		},
		{
			name: "ended yesterday but still flagged active",
			ms: []membership.Membership{
				{ID: "a", StartDate: now.AddDate(0, 0, -31), EndDate: now.AddDate(0, 0, -1), Status: membership.RecordActive, Plan: monthly()},
			},
			wantStatus: membership.Expiring,
			wantLabel:  "Monthly",
		},
		{
			name: "end exactly on horizon is inclusive",
			ms: []membership.Membership{
				{ID: "a", StartDate: now.AddDate(0, 0, -20), EndDate: now.Add(7 * 24 * time.Hour), Status: membership.RecordActive, Plan: monthly()},
			},
			wantStatus: membership.Expiring,
			wantLabel:  "Monthly",
		},
		{
			name: "one nanosecond past horizon",
			ms: []membership.Membership{
				{ID: "a", StartDate: now.AddDate(0, 0, -20), EndDate: now.Add(7*24*time.Hour + time.Nanosecond), Status: membership.RecordActive, Plan: monthly()},
			},
			wantStatus: membership.Active,
			wantLabel:  "Monthly",
		},
		{
			name: "inactive flag",
			ms: []membership.Membership{
				{ID: "a", StartDate: now.AddDate(0, 0, -10), EndDate: now.AddDate(0, 0, 20), Status: membership.RecordInactive, Plan: monthly()},
			},
			wantStatus: membership.Expired,
			wantLabel:  "Monthly",
		},
		{
			name: "disabled",
			ms: []membership.Membership{
				{ID: "a", StartDate: now.AddDate(0, 0, -10), EndDate: now.AddDate(0, 0, 20), Status: membership.RecordActive, IsDisabled: true, Plan: monthly()},
			},
			wantStatus: membership.Expired,
			wantLabel:  "Monthly",
		},
		{
			name: "plan without name",
			ms: []membership.Membership{
				{ID: "a", StartDate: now.AddDate(0, 0, -10), EndDate: now.AddDate(0, 0, 20), Status: membership.RecordActive, Plan: &plan.Plan{ID: "p2"}},
			},
			wantStatus: membership.Active,
			wantLabel:  plan.LabelUnknownPlan,
		},
		{
			name: "missing plan reference",
			ms: []membership.Membership{
				{ID: "a", StartDate: now.AddDate(0, 0, -10), EndDate: now.AddDate(0, 0, 20), Status: membership.RecordActive},
			},
			wantStatus: membership.Active,
			wantLabel:  plan.LabelUnknownPlan,
		},
		{
			name: "older active membership is not reconsidered",
			ms: []membership.Membership{
				{ID: "old", StartDate: now.AddDate(0, -2, 0), EndDate: now.AddDate(0, 2, 0), Status: membership.RecordActive, Plan: monthly()},
				{ID: "new", StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 1, 0), Status: membership.RecordInactive, Plan: &plan.Plan{Name: "Annual"}},
			},
			wantStatus: membership.Expired,
			wantLabel:  "Annual",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := membership.Classify(tt.ms, now, membership.DefaultHorizonDays)
			if got.Status != tt.wantStatus {
				t.Errorf("status=%q, want %q", got.Status, tt.wantStatus)
			}
			if got.PlanLabel != tt.wantLabel {
				t.Errorf("label=%q, want %q", got.PlanLabel, tt.wantLabel)
			}
			if !got.Status.Valid() {
				t.Errorf("status %q is not a lifecycle state", got.Status)
			}
		})
	}
}

// TestMostRecent_TieKeepsFirstSeen verifies the documented tie-break.
func TestMostRecent_TieKeepsFirstSeen(t *testing.T) {
	start := now.AddDate(0, 0, -5)
	ms := []membership.Membership{
		{ID: "older", StartDate: now.AddDate(0, -1, 0)},
		{ID: "first", StartDate: start},
		{ID: "second", StartDate: start},
	}

	got, ok := membership.MostRecent(ms)
	if !ok {
		t.Fatal("expected a membership")
	}
	if got.ID != "first" {
		t.Fatalf("id=%q, want first", got.ID)
	}
}

// TestMostRecent_DoesNotReorderInput verifies the reduction leaves the slice untouched.
func TestMostRecent_DoesNotReorderInput(t *testing.T) {
	ms := []membership.Membership{
		{ID: "a", StartDate: now.AddDate(0, -3, 0)},
		{ID: "b", StartDate: now},
	}
	membership.MostRecent(ms)
	if ms[0].ID != "a" || ms[1].ID != "b" {
		t.Fatalf("input reordered: %v, %v", ms[0].ID, ms[1].ID)
	}
}

// TestClassify_CustomHorizon verifies the horizon parameter is honoured.
func TestClassify_CustomHorizon(t *testing.T) {
	ms := []membership.Membership{
		{ID: "a", StartDate: now.AddDate(0, 0, -20), EndDate: now.AddDate(0, 0, 10), Status: membership.RecordActive},
	}
	if got := membership.Classify(ms, now, 7).Status; got != membership.Active {
		t.Errorf("horizon 7: status=%q, want active", got)
	}
	if got := membership.Classify(ms, now, 14).Status; got != membership.Expiring {
		t.Errorf("horizon 14: status=%q, want expiring", got)
	}
}

// TestDaysUntil verifies rounding up to whole days.
func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"later today", now.Add(2 * time.Hour), 1},
		{"exactly now", now, 0},
		{"three days", now.AddDate(0, 0, 3), 3},
		{"earlier today", now.Add(-2 * time.Hour), 0},
		{"two days ago", now.AddDate(0, 0, -2), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := membership.DaysUntil(tt.end, now); got != tt.want {
				t.Errorf("DaysUntil=%d, want %d", got, tt.want)
			}
		})
	}
}

// TestMembershipValidate tests validation of Membership.
func TestMembershipValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       membership.Membership
		wantErr bool
	}{
		{"valid", membership.Membership{MemberID: "m1", StartDate: now, EndDate: now.AddDate(0, 1, 0), Status: membership.RecordActive}, false},
		{"missing member", membership.Membership{StartDate: now, EndDate: now.AddDate(0, 1, 0), Status: membership.RecordActive}, true},
		{"reversed range", membership.Membership{MemberID: "m1", StartDate: now, EndDate: now, Status: membership.RecordActive}, true},
		{"bad status", membership.Membership{MemberID: "m1", StartDate: now, EndDate: now.AddDate(0, 1, 0), Status: "paused"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
