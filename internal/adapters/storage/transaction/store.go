package transaction

import (
	"context"
	"time"

	domain "facilitydesk/internal/domain/transaction"
)

// Store persists Transaction state.
type Store interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Transaction, error)
	Save(ctx context.Context, value domain.Transaction) error
	RecordPayment(ctx context.Context, value domain.Transaction) error
}

// ListFilter selects payments for a facility within [From, To).
type ListFilter struct {
	FacilityID string // required
	From       time.Time
	To         time.Time
	PlanID     string // optional; matches the plan of the attributed membership
	Search     string // optional; case-insensitive match on member name or email
}
