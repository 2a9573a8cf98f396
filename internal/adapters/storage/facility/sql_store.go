package facility

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"facilitydesk/internal/adapters/storage"
	domain "facilitydesk/internal/domain/facility"
)

// SQLStore implements Store over storage.SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new facility store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

const facilityColumns = "id, owner_id, name, logo_url, timezone"

// GetByID retrieves a Facility by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Facility, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+facilityColumns+" FROM facility WHERE id = ?", id)

	var f domain.Facility
	err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.LogoURL, &f.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Facility{}, fmt.Errorf("facility %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Facility{}, fmt.Errorf("get facility: %w", err)
	}
	return f, nil
}

// ListByOwner returns every facility owned by ownerID ordered by name.
func (s *SQLStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Facility, error) {
	return s.list(ctx, "SELECT "+facilityColumns+" FROM facility WHERE owner_id = ? ORDER BY name, id", ownerID)
}

// List returns every facility ordered by name.
func (s *SQLStore) List(ctx context.Context) ([]domain.Facility, error) {
	return s.list(ctx, "SELECT "+facilityColumns+" FROM facility ORDER BY name, id")
}

func (s *SQLStore) list(ctx context.Context, query string, args ...any) ([]domain.Facility, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	defer rows.Close()

	var out []domain.Facility
	for rows.Next() {
		var f domain.Facility
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Name, &f.LogoURL, &f.Timezone); err != nil {
			return nil, fmt.Errorf("scan facility: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Save persists a Facility (insert or update).
func (s *SQLStore) Save(ctx context.Context, f domain.Facility) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO facility (id, owner_id, name, logo_url, timezone) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET owner_id=excluded.owner_id, name=excluded.name, logo_url=excluded.logo_url, timezone=excluded.timezone`,
		f.ID, f.OwnerID, f.Name, f.LogoURL, f.Timezone)
	if err != nil {
		return fmt.Errorf("save facility: %w", err)
	}
	return nil
}

// LatestSubscription returns the most recently started subscription, or nil when the
// facility has never subscribed.
func (s *SQLStore) LatestSubscription(ctx context.Context, facilityID string) (*domain.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, facility_id, plan_name, start_date, end_date, created_at
		FROM facility_subscription WHERE facility_id = ? ORDER BY start_date DESC, created_at DESC LIMIT 1`, facilityID)

	var sub domain.Subscription
	var start, end, created string
	err := row.Scan(&sub.ID, &sub.FacilityID, &sub.PlanName, &start, &end, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest subscription: %w", err)
	}
	if sub.StartDate, err = storage.ParseTime(start); err != nil {
		return nil, err
	}
	if sub.EndDate, err = storage.ParseTime(end); err != nil {
		return nil, err
	}
	if sub.CreatedAt, err = storage.ParseTime(created); err != nil {
		return nil, err
	}
	return &sub, nil
}

// SaveSubscription persists a facility subscription (insert or update).
func (s *SQLStore) SaveSubscription(ctx context.Context, sub domain.Subscription) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO facility_subscription (id, facility_id, plan_name, start_date, end_date, created_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET plan_name=excluded.plan_name, start_date=excluded.start_date, end_date=excluded.end_date`,
		sub.ID, sub.FacilityID, sub.PlanName,
		storage.FormatTime(sub.StartDate), storage.FormatTime(sub.EndDate), storage.FormatTime(sub.CreatedAt))
	if err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}
