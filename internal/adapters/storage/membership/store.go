package membership

import (
	"context"

	"github.com/shopspring/decimal"

	domain "facilitydesk/internal/domain/membership"
)

// Store persists Membership state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Membership, error)
	ListByMember(ctx context.Context, memberID string) ([]domain.Membership, error)
	Save(ctx context.Context, value domain.Membership) error
	ChargeMembership(ctx context.Context, value domain.Membership, price decimal.Decimal) error
}
