package plan

import (
	"context"

	domain "facilitydesk/internal/domain/plan"
)

// Store persists Plan state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Plan, error)
	ListByFacility(ctx context.Context, facilityID string) ([]domain.Plan, error)
	Save(ctx context.Context, value domain.Plan) error
}
