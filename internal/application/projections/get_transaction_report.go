package projections

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	transactionStore "facilitydesk/internal/adapters/storage/transaction"
	domainPlan "facilitydesk/internal/domain/plan"
	domainTransaction "facilitydesk/internal/domain/transaction"
	"facilitydesk/internal/domain/window"
)

// GetTransactionReportQuery carries query parameters.
type GetTransactionReportQuery struct {
	FacilityID string
	Timeline   string // unknown keywords fall back to window.Today
	PlanID     string
	Search     string
	Now        time.Time
}

// GetTransactionReportDeps holds dependencies for GetTransactionReport.
type GetTransactionReportDeps struct {
	FacilityStore    FacilityStore
	TransactionStore TransactionStore
	BalanceStore     BalanceStore
	PlanStore        PlanStore
	DefaultLocation  *time.Location
	RingRadius       float64 // 0 means DefaultRingRadius
}

// TransactionRow is one payment in the report list.
type TransactionRow struct {
	ID          string          `json:"id"`
	MemberID    string          `json:"memberId"`
	MemberName  string          `json:"memberName"`
	MemberEmail string          `json:"memberEmail,omitempty"`
	Plan        string          `json:"plan"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   string          `json:"createdAt"` // RFC3339 in the facility zone
}

// PlanOption is a selectable plan filter.
type PlanOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReportFilters echoes the effective filters back to the client.
type ReportFilters struct {
	Timeline string `json:"timeline"`
	PlanID   string `json:"plan"`
	Search   string `json:"search"`
}

// GetTransactionReportResult carries the transactions page payload.
type GetTransactionReportResult struct {
	TransactionSummary
	Transactions []TransactionRow `json:"transactions"`
	WindowStart  string           `json:"windowStart"`
	WindowEnd    string           `json:"windowEnd"`
	Arcs         Arcs             `json:"arcs"`
	Plans        []PlanOption     `json:"plans"`
	Filters      ReportFilters    `json:"filters"`
}

// QueryGetTransactionReport builds the transactions page for one timeline.
// The current-window list honours the plan and search filters; previous-window income
// is computed over all payments of the facility.
// PRE: query.FacilityID is non-empty; query.Now is set
// POST: len(DailyEarnings) equals the number of days in the resolved window
func QueryGetTransactionReport(ctx context.Context, query GetTransactionReportQuery, deps GetTransactionReportDeps) (GetTransactionReportResult, error) {
	fac, err := deps.FacilityStore.GetByID(ctx, query.FacilityID)
	if err != nil {
		return GetTransactionReportResult{}, err
	}
	loc := fac.Location(deps.DefaultLocation)
	timeline := window.ParseTimeline(query.Timeline)
	w := window.Resolve(timeline, query.Now, loc)
	prev := w.Previous()

	var (
		current  []domainTransaction.Transaction
		previous []domainTransaction.Transaction
		balances []decimal.Decimal
		plans    []domainPlan.Plan
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = deps.TransactionStore.List(gctx, transactionStore.ListFilter{
			FacilityID: fac.ID,
			From:       w.Start,
			To:         w.End,
			PlanID:     query.PlanID,
			Search:     query.Search,
		})
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = deps.TransactionStore.List(gctx, transactionStore.ListFilter{
			FacilityID: fac.ID,
			From:       prev.Start,
			To:         prev.End,
		})
		return err
	})
	g.Go(func() error {
		var err error
		balances, err = deps.BalanceStore.Balances(gctx, fac.ID)
		return err
	})
	g.Go(func() error {
		var err error
		plans, err = deps.PlanStore.ListByFacility(gctx, fac.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return GetTransactionReportResult{}, err
	}

	summary := AggregateTransactions(current, previous, w, balances, loc)
	radius := deps.RingRadius
	if radius <= 0 {
		radius = DefaultRingRadius
	}

	result := GetTransactionReportResult{
		TransactionSummary: summary,
		Transactions:       make([]TransactionRow, 0, len(current)),
		WindowStart:        w.Start.Format(time.RFC3339),
		WindowEnd:          w.End.Format(time.RFC3339),
		Arcs:               DeriveArcs(summary.TotalIncome, summary.TotalPendingBalance, radius),
		Plans:              make([]PlanOption, 0, len(plans)),
		Filters:            ReportFilters{Timeline: timeline, PlanID: query.PlanID, Search: query.Search},
	}
	for _, t := range current {
		if !w.Contains(t.CreatedAt) {
			continue
		}
		result.Transactions = append(result.Transactions, TransactionRow{
			ID:          t.ID,
			MemberID:    t.MemberID,
			MemberName:  t.MemberName,
			MemberEmail: t.MemberEmail,
			Plan:        planLabel(t.PlanName),
			Amount:      t.Amount,
			CreatedAt:   t.CreatedAt.In(loc).Format(time.RFC3339),
		})
	}
	for _, p := range plans {
		result.Plans = append(result.Plans, PlanOption{ID: p.ID, Name: p.Name})
	}
	return result, nil
}

func planLabel(name string) string {
	if name == "" {
		return domainPlan.LabelNotAvailable
	}
	return name
}
