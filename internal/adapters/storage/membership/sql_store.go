package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"facilitydesk/internal/adapters/storage"
	memberDomain "facilitydesk/internal/domain/member"
	domain "facilitydesk/internal/domain/membership"
	planDomain "facilitydesk/internal/domain/plan"
)

// SQLStore implements Store over storage.SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new membership store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// selectWithPlan joins the plan so a dangling plan_id yields a nil Plan.
const selectWithPlan = `SELECT ms.id, ms.member_id, ms.start_date, ms.end_date, ms.status, ms.is_disabled,
	p.id, p.facility_id, p.name, p.duration_days, p.price
	FROM membership ms
	JOIN member m ON m.id = ms.member_id
	LEFT JOIN plan p ON p.id = ms.plan_id`

// GetByID retrieves a Membership with its plan.
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Membership, error) {
	grouped, err := LoadWithPlans(ctx, s.db, "ms.id = ?", id)
	if err != nil {
		return domain.Membership{}, err
	}
	for _, ms := range grouped {
		return ms[0], nil
	}
	return domain.Membership{}, fmt.Errorf("membership %s: %w", id, domain.ErrNotFound)
}

// ListByMember returns a member's memberships, oldest first.
func (s *SQLStore) ListByMember(ctx context.Context, memberID string) ([]domain.Membership, error) {
	grouped, err := LoadWithPlans(ctx, s.db, "ms.member_id = ?", memberID)
	if err != nil {
		return nil, err
	}
	return grouped[memberID], nil
}

// Save persists a Membership (insert or update).
// PRE: value has been validated
func (s *SQLStore) Save(ctx context.Context, ms domain.Membership) error {
	return save(ctx, s.db, ms)
}

// ChargeMembership stores a new membership and adds price to its member's balance in
// one database transaction.
// PRE: ms has been validated
// POST: on error neither the membership nor the charge is persisted
func (s *SQLStore) ChargeMembership(ctx context.Context, ms domain.Membership, price decimal.Decimal) error {
	return s.db.InTx(ctx, func(q storage.Querier) error {
		err := storage.AdjustBalance(ctx, q, ms.MemberID, func(_ string, balance decimal.Decimal) (decimal.Decimal, error) {
			return balance.Add(price), nil
		})
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("member %s: %w", ms.MemberID, memberDomain.ErrNotFound)
		}
		if err != nil {
			return err
		}
		return save(ctx, q, ms)
	})
}

func save(ctx context.Context, q storage.Querier, ms domain.Membership) error {
	var planID any
	if ms.Plan != nil && ms.Plan.ID != "" {
		planID = ms.Plan.ID
	}
	_, err := q.ExecContext(ctx, `INSERT INTO membership (id, member_id, plan_id, start_date, end_date, status, is_disabled) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET plan_id=excluded.plan_id, start_date=excluded.start_date, end_date=excluded.end_date, status=excluded.status, is_disabled=excluded.is_disabled`,
		ms.ID, ms.MemberID, planID,
		storage.FormatTime(ms.StartDate), storage.FormatTime(ms.EndDate),
		ms.Status, storage.BoolToInt(ms.IsDisabled))
	if err != nil {
		return fmt.Errorf("save membership: %w", err)
	}
	return nil
}

// LoadWithPlans loads memberships matching where, grouped by member ID. Each group is
// ordered by start date ascending.
// PRE: where references only the ms, m and p aliases and uses "?" placeholders
func LoadWithPlans(ctx context.Context, q storage.Querier, where string, args ...any) (map[string][]domain.Membership, error) {
	rows, err := q.QueryContext(ctx, selectWithPlan+" WHERE "+where+" ORDER BY ms.member_id, ms.start_date, ms.id", args...)
	if err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]domain.Membership)
	for rows.Next() {
		var (
			ms                             domain.Membership
			start, end                     string
			disabled                       int
			planID, planFacility, planName sql.NullString
			planDuration                   sql.NullInt64
			planPrice                      decimal.NullDecimal
		)
		if err := rows.Scan(&ms.ID, &ms.MemberID, &start, &end, &ms.Status, &disabled,
			&planID, &planFacility, &planName, &planDuration, &planPrice); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		if ms.StartDate, err = storage.ParseTime(start); err != nil {
			return nil, err
		}
		if ms.EndDate, err = storage.ParseTime(end); err != nil {
			return nil, err
		}
		ms.IsDisabled = disabled != 0
		if planID.Valid {
			ms.Plan = &planDomain.Plan{
				ID:           planID.String,
				FacilityID:   planFacility.String,
				Name:         planName.String,
				DurationDays: int(planDuration.Int64),
				Price:        planPrice.Decimal,
			}
		}
		grouped[ms.MemberID] = append(grouped[ms.MemberID], ms)
	}
	return grouped, rows.Err()
}
