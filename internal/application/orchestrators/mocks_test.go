package orchestrators

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	emailAdapter "facilitydesk/internal/adapters/email"
	memberStore "facilitydesk/internal/adapters/storage/member"
	"facilitydesk/internal/domain/facility"
	"facilitydesk/internal/domain/member"
	"facilitydesk/internal/domain/membership"
	"facilitydesk/internal/domain/plan"
	"facilitydesk/internal/domain/transaction"
)

var errStoreDown = errors.New("store unavailable")

// --- Mock facility store ---

type mockFacilityStore struct {
	facilities    []facility.Facility
	subscriptions []facility.Subscription
}

// GetByID retrieves a mock facility by ID.
func (m *mockFacilityStore) GetByID(_ context.Context, id string) (facility.Facility, error) {
	for _, f := range m.facilities {
		if f.ID == id {
			return f, nil
		}
	}
	return facility.Facility{}, fmt.Errorf("facility %s: %w", id, facility.ErrNotFound)
}

// List returns every mock facility.
func (m *mockFacilityStore) List(_ context.Context) ([]facility.Facility, error) {
	return m.facilities, nil
}

// Save appends a mock facility.
func (m *mockFacilityStore) Save(_ context.Context, f facility.Facility) error {
	m.facilities = append(m.facilities, f)
	return nil
}

// SaveSubscription appends a mock subscription.
func (m *mockFacilityStore) SaveSubscription(_ context.Context, s facility.Subscription) error {
	m.subscriptions = append(m.subscriptions, s)
	return nil
}

// --- Mock member store ---

type mockMemberStore struct {
	members map[string]member.Member
	order   []string
	saveErr error
}

func newMockMemberStore(members ...member.Member) *mockMemberStore {
	s := &mockMemberStore{members: make(map[string]member.Member)}
	for _, m := range members {
		s.members[m.ID] = m
		s.order = append(s.order, m.ID)
	}
	return s
}

// GetByID retrieves a mock member by ID.
func (m *mockMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	mem, ok := m.members[id]
	if !ok {
		return member.Member{}, fmt.Errorf("member %s: %w", id, member.ErrNotFound)
	}
	return mem, nil
}

// Save persists a mock member.
func (m *mockMemberStore) Save(_ context.Context, mem member.Member) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.members[mem.ID]; !ok {
		m.order = append(m.order, mem.ID)
	}
	m.members[mem.ID] = mem
	return nil
}

// List returns the facility's members in insertion order.
func (m *mockMemberStore) List(_ context.Context, filter memberStore.ListFilter) ([]member.Member, error) {
	var out []member.Member
	for _, id := range m.order {
		if mem := m.members[id]; mem.FacilityID == filter.FacilityID {
			out = append(out, mem)
		}
	}
	return out, nil
}

// --- Mock plan store ---

type mockPlanStore struct {
	plans map[string]plan.Plan
}

// GetByID retrieves a mock plan by ID.
func (m *mockPlanStore) GetByID(_ context.Context, id string) (plan.Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return plan.Plan{}, fmt.Errorf("plan %s: %w", id, plan.ErrNotFound)
	}
	return p, nil
}

// Save persists a mock plan.
func (m *mockPlanStore) Save(_ context.Context, p plan.Plan) error {
	if m.plans == nil {
		m.plans = make(map[string]plan.Plan)
	}
	m.plans[p.ID] = p
	return nil
}

// --- Mock membership store ---

type mockMembershipStore struct {
	saved   []membership.Membership
	charged []decimal.Decimal
	err     error
}

// GetByID retrieves a saved mock membership by ID.
func (m *mockMembershipStore) GetByID(_ context.Context, id string) (membership.Membership, error) {
	for _, ms := range m.saved {
		if ms.ID == id {
			return ms, nil
		}
	}
	return membership.Membership{}, fmt.Errorf("membership %s: %w", id, membership.ErrNotFound)
}

// Save appends a mock membership.
func (m *mockMembershipStore) Save(_ context.Context, ms membership.Membership) error {
	m.saved = append(m.saved, ms)
	return nil
}

// ChargeMembership appends a mock membership and records its price.
func (m *mockMembershipStore) ChargeMembership(_ context.Context, ms membership.Membership, price decimal.Decimal) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, ms)
	m.charged = append(m.charged, price)
	return nil
}

// --- Mock transaction store ---

type mockTransactionStore struct {
	recorded []transaction.Transaction
	saved    []transaction.Transaction
	err      error
}

// RecordPayment records a mock payment.
func (m *mockTransactionStore) RecordPayment(_ context.Context, t transaction.Transaction) error {
	if m.err != nil {
		return m.err
	}
	m.recorded = append(m.recorded, t)
	return nil
}

// Save appends a mock transaction.
func (m *mockTransactionStore) Save(_ context.Context, t transaction.Transaction) error {
	m.saved = append(m.saved, t)
	return nil
}

// --- Recording sender ---

type recordingSender struct {
	batches [][]emailAdapter.SendRequest
	err     error
}

// Send records a single request.
func (s *recordingSender) Send(ctx context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	res, err := s.SendBatch(ctx, []emailAdapter.SendRequest{req})
	if err != nil {
		return emailAdapter.SendResult{}, err
	}
	return res[0], nil
}

// SendBatch records a batch of requests.
func (s *recordingSender) SendBatch(_ context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.batches = append(s.batches, reqs)
	results := make([]emailAdapter.SendResult, len(reqs))
	for i := range reqs {
		results[i] = emailAdapter.SendResult{MessageID: fmt.Sprintf("msg-%d", i)}
	}
	return results, nil
}
