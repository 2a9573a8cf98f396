package facility

import (
	"context"

	domain "facilitydesk/internal/domain/facility"
)

// Store persists Facility state and facility subscriptions.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Facility, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Facility, error)
	List(ctx context.Context) ([]domain.Facility, error)
	Save(ctx context.Context, value domain.Facility) error
	LatestSubscription(ctx context.Context, facilityID string) (*domain.Subscription, error)
	SaveSubscription(ctx context.Context, value domain.Subscription) error
}
