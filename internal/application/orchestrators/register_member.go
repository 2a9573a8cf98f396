package orchestrators

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"facilitydesk/internal/domain/facility"
	"facilitydesk/internal/domain/member"
)

// FacilityLookup resolves the facility a write belongs to.
type FacilityLookup interface {
	GetByID(ctx context.Context, id string) (facility.Facility, error)
}

// MemberStore defines the interface for member persistence.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// RegisterMemberInput carries input for the orchestrator.
type RegisterMemberInput struct {
	FacilityID     string
	Name           string
	Email          string
	Phone          string
	PhotoURL       string
	DateOfBirth    time.Time // zero when unknown
	OpeningBalance decimal.Decimal
}

// RegisterMemberDeps holds dependencies for RegisterMember.
type RegisterMemberDeps struct {
	FacilityStore FacilityLookup
	MemberStore   MemberStore
	Now           func() time.Time
}

// ExecuteRegisterMember coordinates member registration.
// PRE: input.FacilityID names an existing facility
// POST: Member created with a new ID and JoinedDate set to today
func ExecuteRegisterMember(ctx context.Context, input RegisterMemberInput, deps RegisterMemberDeps) (member.Member, error) {
	if strings.TrimSpace(input.Name) == "" {
		return member.Member{}, invalid(errors.New("name cannot be empty"))
	}

	fac, err := deps.FacilityStore.GetByID(ctx, input.FacilityID)
	if err != nil {
		return member.Member{}, err
	}

	m := member.Member{
		ID:          uuid.New().String(),
		FacilityID:  fac.ID,
		Name:        strings.TrimSpace(input.Name),
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		PhotoURL:    input.PhotoURL,
		Balance:     input.OpeningBalance,
		DateOfBirth: input.DateOfBirth,
		JoinedDate:  deps.Now(),
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, invalid(err)
	}

	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, err
	}

	logrus.WithFields(logrus.Fields{"member_id": m.ID, "facility_id": m.FacilityID}).Info("member_registered")
	return m, nil
}
