package projections

import (
	"context"

	"github.com/shopspring/decimal"

	memberStore "facilitydesk/internal/adapters/storage/member"
	transactionStore "facilitydesk/internal/adapters/storage/transaction"
	domainFacility "facilitydesk/internal/domain/facility"
	domainMember "facilitydesk/internal/domain/member"
	domainPlan "facilitydesk/internal/domain/plan"
	domainTransaction "facilitydesk/internal/domain/transaction"
)

// FacilityStore interface for facility queries.
type FacilityStore interface {
	GetByID(ctx context.Context, id string) (domainFacility.Facility, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domainFacility.Facility, error)
}

// SubscriptionStore interface for facility subscription queries.
type SubscriptionStore interface {
	LatestSubscription(ctx context.Context, facilityID string) (*domainFacility.Subscription, error)
}

// MemberStore interface for member queries.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (domainMember.Member, error)
	List(ctx context.Context, filter memberStore.ListFilter) ([]domainMember.Member, error)
}

// BalanceStore interface for balance snapshots.
type BalanceStore interface {
	Balances(ctx context.Context, facilityID string) ([]decimal.Decimal, error)
}

// TransactionStore interface for transaction queries.
type TransactionStore interface {
	List(ctx context.Context, filter transactionStore.ListFilter) ([]domainTransaction.Transaction, error)
}

// PlanStore interface for plan queries.
type PlanStore interface {
	ListByFacility(ctx context.Context, facilityID string) ([]domainPlan.Plan, error)
}
