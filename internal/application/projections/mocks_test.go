package projections

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	memberStore "facilitydesk/internal/adapters/storage/member"
	transactionStore "facilitydesk/internal/adapters/storage/transaction"
	domainFacility "facilitydesk/internal/domain/facility"
	domainMember "facilitydesk/internal/domain/member"
	domainPlan "facilitydesk/internal/domain/plan"
	domainTransaction "facilitydesk/internal/domain/transaction"
)

var errStoreDown = errors.New("store unavailable")

type mockFacilityStore struct {
	facilities []domainFacility.Facility
	sub        *domainFacility.Subscription
	err        error
}

func (m *mockFacilityStore) GetByID(_ context.Context, id string) (domainFacility.Facility, error) {
	if m.err != nil {
		return domainFacility.Facility{}, m.err
	}
	for _, f := range m.facilities {
		if f.ID == id {
			return f, nil
		}
	}
	return domainFacility.Facility{}, fmt.Errorf("facility %s: %w", id, domainFacility.ErrNotFound)
}

func (m *mockFacilityStore) ListByOwner(_ context.Context, ownerID string) ([]domainFacility.Facility, error) {
	var out []domainFacility.Facility
	for _, f := range m.facilities {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFacilityStore) LatestSubscription(_ context.Context, _ string) (*domainFacility.Subscription, error) {
	return m.sub, nil
}

type mockMemberStore struct {
	members []domainMember.Member
	err     error
}

func (m *mockMemberStore) GetByID(_ context.Context, id string) (domainMember.Member, error) {
	for _, mem := range m.members {
		if mem.ID == id {
			return mem, nil
		}
	}
	return domainMember.Member{}, fmt.Errorf("member %s: %w", id, domainMember.ErrNotFound)
}

func (m *mockMemberStore) List(_ context.Context, filter memberStore.ListFilter) ([]domainMember.Member, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domainMember.Member
	for _, mem := range m.members {
		if mem.FacilityID == filter.FacilityID {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *mockMemberStore) Balances(_ context.Context, facilityID string) ([]decimal.Decimal, error) {
	var out []decimal.Decimal
	for _, mem := range m.members {
		if mem.FacilityID == facilityID {
			out = append(out, mem.Balance)
		}
	}
	return out, nil
}

// mockTransactionStore applies the window filter like the SQL store and records every
// filter it was asked for.
type mockTransactionStore struct {
	mu      sync.Mutex
	txs     []domainTransaction.Transaction
	filters []transactionStore.ListFilter
}

func (m *mockTransactionStore) List(_ context.Context, filter transactionStore.ListFilter) ([]domainTransaction.Transaction, error) {
	m.mu.Lock()
	m.filters = append(m.filters, filter)
	m.mu.Unlock()

	var out []domainTransaction.Transaction
	for _, t := range m.txs {
		if t.FacilityID != filter.FacilityID || t.CreatedAt.Before(filter.From) || !t.CreatedAt.Before(filter.To) {
			continue
		}
		if filter.PlanID != "" && t.PlanID != filter.PlanID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type mockPlanStore struct {
	plans []domainPlan.Plan
}

func (m *mockPlanStore) ListByFacility(_ context.Context, facilityID string) ([]domainPlan.Plan, error) {
	var out []domainPlan.Plan
	for _, p := range m.plans {
		if p.FacilityID == facilityID {
			out = append(out, p)
		}
	}
	return out, nil
}
