package member

import (
	"context"

	"github.com/shopspring/decimal"

	domain "facilitydesk/internal/domain/member"
)

// Store persists Member state. Read methods return members with their full
// membership history attached.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	Balances(ctx context.Context, facilityID string) ([]decimal.Decimal, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	FacilityID string // required
	Search     string // case-insensitive match on name, email or phone
}
