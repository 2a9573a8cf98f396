package orchestrators

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"facilitydesk/internal/domain/member"
	"facilitydesk/internal/domain/membership"
	"facilitydesk/internal/domain/plan"
)

// MemberLookup resolves a member by ID.
type MemberLookup interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// PlanLookup resolves a plan by ID.
type PlanLookup interface {
	GetByID(ctx context.Context, id string) (plan.Plan, error)
}

// MembershipCharger stores a new membership together with its charge to the member balance.
type MembershipCharger interface {
	ChargeMembership(ctx context.Context, ms membership.Membership, price decimal.Decimal) error
}

// StartMembershipInput carries input for the orchestrator.
type StartMembershipInput struct {
	FacilityID string
	MemberID   string
	PlanID     string
	StartDate  time.Time // zero means now
}

// StartMembershipDeps holds dependencies for StartMembership.
type StartMembershipDeps struct {
	MemberStore     MemberLookup
	PlanStore       PlanLookup
	MembershipStore MembershipCharger
	Now             func() time.Time
}

// ExecuteStartMembership renews a member onto a plan and charges the plan price to the
// member's balance.
// PRE: member and plan both belong to input.FacilityID
// POST: new active membership spans plan.DurationDays from StartDate; Balance increased by plan.Price
func ExecuteStartMembership(ctx context.Context, input StartMembershipInput, deps StartMembershipDeps) (membership.Membership, error) {
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return membership.Membership{}, err
	}
	if m.FacilityID != input.FacilityID {
		return membership.Membership{}, fmt.Errorf("member %s: %w", m.ID, member.ErrNotFound)
	}

	p, err := deps.PlanStore.GetByID(ctx, input.PlanID)
	if err != nil {
		return membership.Membership{}, err
	}
	if p.FacilityID != input.FacilityID {
		return membership.Membership{}, fmt.Errorf("plan %s: %w", p.ID, plan.ErrNotFound)
	}

	start := input.StartDate
	if start.IsZero() {
		start = deps.Now()
	}
	ms := membership.Membership{
		ID:        uuid.New().String(),
		MemberID:  m.ID,
		StartDate: start.UTC(),
		EndDate:   start.AddDate(0, 0, p.DurationDays).UTC(),
		Status:    membership.RecordActive,
		Plan:      &p,
	}
	if err := ms.Validate(); err != nil {
		return membership.Membership{}, invalid(err)
	}

	if err := deps.MembershipStore.ChargeMembership(ctx, ms, p.Price); err != nil {
		return membership.Membership{}, err
	}

	logrus.WithFields(logrus.Fields{
		"member_id":     m.ID,
		"membership_id": ms.ID,
		"plan_id":       p.ID,
		"end_date":      ms.EndDate.Format(time.DateOnly),
	}).Info("membership_started")
	return ms, nil
}
