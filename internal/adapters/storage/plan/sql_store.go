package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"facilitydesk/internal/adapters/storage"
	domain "facilitydesk/internal/domain/plan"
)

// SQLStore implements Store over storage.SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new plan store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a Plan by its ID.
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Plan, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, facility_id, name, duration_days, price FROM plan WHERE id = ?", id)

	var p domain.Plan
	err := row.Scan(&p.ID, &p.FacilityID, &p.Name, &p.DurationDays, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Plan{}, fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Plan{}, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

// ListByFacility returns the facility's plans ordered by name.
func (s *SQLStore) ListByFacility(ctx context.Context, facilityID string) ([]domain.Plan, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, facility_id, name, duration_days, price FROM plan WHERE facility_id = ? ORDER BY name, id", facilityID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var out []domain.Plan
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.ID, &p.FacilityID, &p.Name, &p.DurationDays, &p.Price); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Save persists a Plan (insert or update).
// PRE: value has been validated
func (s *SQLStore) Save(ctx context.Context, p domain.Plan) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO plan (id, facility_id, name, duration_days, price) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, duration_days=excluded.duration_days, price=excluded.price`,
		p.ID, p.FacilityID, p.Name, p.DurationDays, p.Price.String())
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}
