package projections

import (
	"context"
	"sort"
	"strings"
	"time"

	"facilitydesk/internal/adapters/storage/member"
	"facilitydesk/internal/application/listutil"
	"facilitydesk/internal/domain/membership"
)

// Sort columns accepted by QueryGetMemberList.
const (
	SortByName    = "name"
	SortByBalance = "balance"
	SortByEndDate = "end_date"
)

// MemberListSortColumns lists the allowed sort columns.
var MemberListSortColumns = []string{SortByName, SortByBalance, SortByEndDate}

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	FacilityID string
	Status     string // "", "active", "expiring" or "expired"; anything else is ignored
	Search     string
	Sort       string
	Dir        string
	Page       int
	PerPage    int
	Now        time.Time
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members  []ClassifiedMember `json:"members"`
	Counts   RosterCounts       `json:"counts"`
	PageInfo listutil.PageInfo  `json:"pageInfo"`
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberStore MemberStore
	HorizonDays int // 0 means membership.DefaultHorizonDays
}

// QueryGetMemberList returns one page of classified members.
// Counts are taken over the searched roster before the status filter so the tabs
// always show every bucket.
// PRE: query.FacilityID is non-empty; query.Now is set
// POST: every returned member has Status == query.Status when a valid status is given
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	members, err := deps.MemberStore.List(ctx, member.ListFilter{
		FacilityID: query.FacilityID,
		Search:     query.Search,
	})
	if err != nil {
		return GetMemberListResult{}, err
	}

	roster := AggregateRoster(members, query.Now, horizonOrDefault(deps.HorizonDays))

	rows := roster.Classified
	if status := membership.Status(query.Status); status.Valid() {
		rows = make([]ClassifiedMember, 0, len(roster.Classified))
		for _, cm := range roster.Classified {
			if cm.Status == status {
				rows = append(rows, cm)
			}
		}
	}
	sortClassified(rows, query.Sort, query.Dir == "desc")

	info := listutil.NewPageInfo(query.Page, query.PerPage, len(rows))
	return GetMemberListResult{
		Members:  nonNil(listutil.Paginate(rows, info)),
		Counts:   roster.Counts,
		PageInfo: info,
	}, nil
}

// sortClassified orders rows in place. Ties keep roster order.
func sortClassified(rows []ClassifiedMember, column string, desc bool) {
	var compare func(a, b ClassifiedMember) int
	switch column {
	case SortByBalance:
		compare = func(a, b ClassifiedMember) int { return a.Member.Balance.Cmp(b.Member.Balance) }
	case SortByEndDate:
		compare = func(a, b ClassifiedMember) int { return endDate(a).Compare(endDate(b)) }
	default:
		compare = func(a, b ClassifiedMember) int {
			return strings.Compare(strings.ToLower(a.Member.Name), strings.ToLower(b.Member.Name))
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(rows[i], rows[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// endDate sorts members without a membership first.
func endDate(cm ClassifiedMember) time.Time {
	if cm.Current == nil {
		return time.Time{}
	}
	return cm.Current.EndDate
}
