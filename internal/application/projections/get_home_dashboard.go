package projections

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	memberStore "facilitydesk/internal/adapters/storage/member"
	domainFacility "facilitydesk/internal/domain/facility"
	domainMember "facilitydesk/internal/domain/member"
	"facilitydesk/internal/domain/membership"
	"facilitydesk/internal/domain/window"
)

// GetHomeDashboardQuery carries query parameters.
type GetHomeDashboardQuery struct {
	FacilityID string
	Now        time.Time
}

// GetHomeDashboardDeps holds dependencies for GetHomeDashboard.
type GetHomeDashboardDeps struct {
	FacilityStore   FacilityStore
	MemberStore     MemberStore
	DefaultLocation *time.Location
	HorizonDays     int // 0 means membership.DefaultHorizonDays
}

// GetHomeDashboardResult carries the home page payload.
type GetHomeDashboardResult struct {
	Facility      FacilitySummary    `json:"facility"`
	Facilities    []FacilitySummary  `json:"facilities"`
	Counts        RosterCounts       `json:"counts"`
	Expired       []ClassifiedMember `json:"expired"`
	ExpiredTotal  int                `json:"expiredTotal"`
	Expiring      []ClassifiedMember `json:"expiringSoon"`
	ExpiringTotal int                `json:"expiringSoonTotal"`
	WithBalance   []ClassifiedMember `json:"withBalance"`
	Birthdays     []MemberSummary    `json:"birthdays"`
	CurrentDate   string             `json:"currentDate"`
}

// QueryGetHomeDashboard builds the facility home page.
// The facility (with its owner's other facilities) and the member roster are fetched
// concurrently; any failed fetch fails the whole query.
// PRE: query.FacilityID is non-empty; query.Now is set
// POST: Counts cover every member; Expired and Expiring hold at most HomePreviewSize
// entries in roster order, with totals carrying the full list lengths
func QueryGetHomeDashboard(ctx context.Context, query GetHomeDashboardQuery, deps GetHomeDashboardDeps) (GetHomeDashboardResult, error) {
	var (
		fac      domainFacility.Facility
		siblings []domainFacility.Facility
		members  []domainMember.Member
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if fac, err = deps.FacilityStore.GetByID(gctx, query.FacilityID); err != nil {
			return err
		}
		if siblings, err = deps.FacilityStore.ListByOwner(gctx, fac.OwnerID); err != nil {
			return fmt.Errorf("list owner facilities: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		members, err = deps.MemberStore.List(gctx, memberStore.ListFilter{FacilityID: query.FacilityID})
		return err
	})
	if err := g.Wait(); err != nil {
		return GetHomeDashboardResult{}, err
	}

	loc := fac.Location(deps.DefaultLocation)
	roster := AggregateRoster(members, query.Now, horizonOrDefault(deps.HorizonDays))

	result := GetHomeDashboardResult{
		Facility:      summarizeFacility(fac),
		Facilities:    make([]FacilitySummary, 0, len(siblings)),
		Counts:        roster.Counts,
		Expired:       nonNil(Top(roster.Expired, HomePreviewSize)),
		ExpiredTotal:  len(roster.Expired),
		Expiring:      nonNil(Top(roster.ExpiringSoon, HomePreviewSize)),
		ExpiringTotal: len(roster.ExpiringSoon),
		WithBalance:   nonNil(roster.WithBalance),
		Birthdays:     []MemberSummary{},
		CurrentDate:   query.Now.In(loc).Format(window.DateLayout),
	}
	for _, f := range siblings {
		result.Facilities = append(result.Facilities, summarizeFacility(f))
	}
	for _, m := range BirthdaysToday(members, query.Now, loc) {
		result.Birthdays = append(result.Birthdays, summarizeMember(m))
	}
	return result, nil
}

func horizonOrDefault(days int) int {
	if days <= 0 {
		return membership.DefaultHorizonDays
	}
	return days
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
