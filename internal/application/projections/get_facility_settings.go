package projections

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	domainFacility "facilitydesk/internal/domain/facility"
)

// GetFacilitySettingsQuery carries query parameters.
type GetFacilitySettingsQuery struct {
	FacilityID string
	Now        time.Time
}

// GetFacilitySettingsDeps holds dependencies for GetFacilitySettings.
type GetFacilitySettingsDeps struct {
	FacilityStore     FacilityStore
	SubscriptionStore SubscriptionStore
}

// SubscriptionView is the facility subscription as shown on the settings page.
type SubscriptionView struct {
	PlanName  string `json:"planName,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	State     string `json:"state"`
	DaysLeft  int    `json:"daysLeft"`
}

// GetFacilitySettingsResult carries the settings page payload.
type GetFacilitySettingsResult struct {
	Facility     FacilitySummary  `json:"facility"`
	Timezone     string           `json:"timezone"`
	Subscription SubscriptionView `json:"subscription"`
}

// QueryGetFacilitySettings returns the facility and its latest subscription state.
// PRE: query.FacilityID is non-empty
// POST: Subscription.State is domainFacility.SubscriptionNone when there is no subscription
func QueryGetFacilitySettings(ctx context.Context, query GetFacilitySettingsQuery, deps GetFacilitySettingsDeps) (GetFacilitySettingsResult, error) {
	var (
		fac domainFacility.Facility
		sub *domainFacility.Subscription
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fac, err = deps.FacilityStore.GetByID(gctx, query.FacilityID)
		return err
	})
	g.Go(func() error {
		var err error
		sub, err = deps.SubscriptionStore.LatestSubscription(gctx, query.FacilityID)
		return err
	})
	if err := g.Wait(); err != nil {
		return GetFacilitySettingsResult{}, err
	}

	status := domainFacility.StatusOf(sub, query.Now)
	view := SubscriptionView{State: status.State, DaysLeft: status.DaysLeft}
	if sub != nil {
		view.PlanName = sub.PlanName
		view.StartDate = sub.StartDate.Format(time.DateOnly)
		view.EndDate = sub.EndDate.Format(time.DateOnly)
	}
	return GetFacilitySettingsResult{
		Facility:     summarizeFacility(fac),
		Timezone:     fac.Timezone,
		Subscription: view,
	}, nil
}
