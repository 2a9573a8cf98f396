package orchestrators

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"facilitydesk/internal/domain/facility"
	"facilitydesk/internal/domain/member"
	"facilitydesk/internal/domain/membership"
	"facilitydesk/internal/domain/plan"
	"facilitydesk/internal/domain/transaction"
)

type seedFacilityStore interface {
	List(ctx context.Context) ([]facility.Facility, error)
	Save(ctx context.Context, f facility.Facility) error
	SaveSubscription(ctx context.Context, s facility.Subscription) error
}

type seedPlanStore interface {
	Save(ctx context.Context, p plan.Plan) error
}

type seedMemberStore interface {
	Save(ctx context.Context, m member.Member) error
}

// MembershipWriter persists memberships.
type MembershipWriter interface {
	Save(ctx context.Context, ms membership.Membership) error
}

type seedTransactionStore interface {
	Save(ctx context.Context, t transaction.Transaction) error
}

// SeedDemoDeps holds all stores needed for demo data seeding.
type SeedDemoDeps struct {
	FacilityStore    seedFacilityStore
	PlanStore        seedPlanStore
	MemberStore      seedMemberStore
	MembershipStore  MembershipWriter
	TransactionStore seedTransactionStore
}

// SeedDemoResult reports what was created.
type SeedDemoResult struct {
	Seeded     bool
	FacilityID string
	Members    int
}

type demoMember struct {
	name     string
	email    string
	phone    string
	balance  int64
	startAgo int // days before now the latest membership started; <0 means no membership
	disabled bool
	birthday bool
}

// ExecuteSeedDemo creates one facility with plans, members in every lifecycle state
// and a month of payments. It does nothing when any facility already exists.
// POST: Seeded is false when the database already held data
func ExecuteSeedDemo(ctx context.Context, now time.Time, deps SeedDemoDeps) (SeedDemoResult, error) {
	existing, err := deps.FacilityStore.List(ctx)
	if err != nil {
		return SeedDemoResult{}, err
	}
	if len(existing) > 0 {
		return SeedDemoResult{}, nil
	}

	fac := facility.Facility{ID: uuid.New().String(), OwnerID: "demo-owner", Name: "Iron Temple Fitness", Timezone: "Asia/Kolkata"}
	if err := deps.FacilityStore.Save(ctx, fac); err != nil {
		return SeedDemoResult{}, fmt.Errorf("seed facility: %w", err)
	}
	sibling := facility.Facility{ID: uuid.New().String(), OwnerID: fac.OwnerID, Name: "Iron Temple Annex", Timezone: "Asia/Kolkata"}
	if err := deps.FacilityStore.Save(ctx, sibling); err != nil {
		return SeedDemoResult{}, fmt.Errorf("seed facility: %w", err)
	}
	if err := deps.FacilityStore.SaveSubscription(ctx, facility.Subscription{
		ID: uuid.New().String(), FacilityID: fac.ID, PlanName: "Pro",
		StartDate: now.AddDate(0, -11, 0), EndDate: now.AddDate(0, 0, 4), CreatedAt: now,
	}); err != nil {
		return SeedDemoResult{}, fmt.Errorf("seed subscription: %w", err)
	}

	monthly := plan.Plan{ID: uuid.New().String(), FacilityID: fac.ID, Name: "Monthly", DurationDays: 30, Price: decimal.NewFromInt(1500)}
	quarterly := plan.Plan{ID: uuid.New().String(), FacilityID: fac.ID, Name: "Quarterly", DurationDays: 90, Price: decimal.NewFromInt(4000)}
	for _, p := range []plan.Plan{monthly, quarterly} {
		if err := deps.PlanStore.Save(ctx, p); err != nil {
			return SeedDemoResult{}, fmt.Errorf("seed plan: %w", err)
		}
	}

	roster := []demoMember{
		{name: "Asha Verma", email: "asha@example.com", phone: "+91 98000 00001", startAgo: 5, birthday: true},
		{name: "Bilal Khan", email: "bilal@example.com", phone: "+91 98000 00002", balance: 1500, startAgo: 27},
		{name: "Chitra Rao", phone: "+91 98000 00003", startAgo: 31},
		{name: "Dev Malhotra", email: "dev@example.com", balance: 500, startAgo: 10, disabled: true},
		{name: "Esha Nair", email: "esha@example.com", startAgo: -1},
		{name: "Farhan Ali", email: "farhan@example.com", balance: -200, startAgo: 45},
	}

	for i, dm := range roster {
		m := member.Member{
			ID:         uuid.New().String(),
			FacilityID: fac.ID,
			Name:       dm.name,
			Email:      dm.email,
			Phone:      dm.phone,
			Balance:    decimal.NewFromInt(dm.balance),
			JoinedDate: now.AddDate(-1, 0, -i),
		}
		if dm.birthday {
			m.DateOfBirth = time.Date(1992, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		}
		if err := deps.MemberStore.Save(ctx, m); err != nil {
			return SeedDemoResult{}, fmt.Errorf("seed member: %w", err)
		}
		if dm.startAgo < 0 {
			continue
		}

		start := now.AddDate(0, 0, -dm.startAgo)
		ms := membership.Membership{
			ID:         uuid.New().String(),
			MemberID:   m.ID,
			StartDate:  start.UTC(),
			EndDate:    start.AddDate(0, 0, monthly.DurationDays).UTC(),
			Status:     membership.RecordActive,
			IsDisabled: dm.disabled,
			Plan:       &monthly,
		}
		if err := deps.MembershipStore.Save(ctx, ms); err != nil {
			return SeedDemoResult{}, fmt.Errorf("seed membership: %w", err)
		}

		// Spread three payments per member over the last month.
		for k := 0; k < 3; k++ {
			t := transaction.Transaction{
				ID:           uuid.New().String(),
				FacilityID:   fac.ID,
				MemberID:     m.ID,
				MembershipID: ms.ID,
				Type:         transaction.TypePayment,
				Amount:       decimal.NewFromInt(int64(250 * (k + 1))),
				CreatedAt:    now.AddDate(0, 0, -(i*3 + k*9)).UTC(),
			}
			if k == 2 {
				t.MembershipID = ""
			}
			if err := deps.TransactionStore.Save(ctx, t); err != nil {
				return SeedDemoResult{}, fmt.Errorf("seed transaction: %w", err)
			}
		}
	}

	logrus.WithFields(logrus.Fields{"facility_id": fac.ID, "members": len(roster)}).Info("demo_data_seeded")
	return SeedDemoResult{Seeded: true, FacilityID: fac.ID, Members: len(roster)}, nil
}
