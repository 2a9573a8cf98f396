package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"facilitydesk/internal/adapters/storage"
	membershipStore "facilitydesk/internal/adapters/storage/membership"
	domain "facilitydesk/internal/domain/member"
)

// SQLStore implements Store over storage.SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new member store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

const memberColumns = "id, facility_id, name, email, phone, photo_url, balance, date_of_birth, joined_date"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (domain.Member, error) {
	var m domain.Member
	var dob, joined string
	if err := row.Scan(&m.ID, &m.FacilityID, &m.Name, &m.Email, &m.Phone, &m.PhotoURL, &m.Balance, &dob, &joined); err != nil {
		return domain.Member{}, err
	}
	var err error
	if m.DateOfBirth, err = storage.ParseDate(dob); err != nil {
		return domain.Member{}, err
	}
	if m.JoinedDate, err = storage.ParseDate(joined); err != nil {
		return domain.Member{}, err
	}
	return m, nil
}

// GetByID retrieves a Member and its memberships.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping domain.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Member{}, fmt.Errorf("get member: %w", err)
	}

	grouped, err := membershipStore.LoadWithPlans(ctx, s.db, "ms.member_id = ?", id)
	if err != nil {
		return domain.Member{}, err
	}
	m.Memberships = grouped[id]
	return m, nil
}

// List returns the facility's members ordered by name, each with its memberships.
// Memberships are loaded in a single query for the whole facility.
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	where := []string{"facility_id = ?"}
	args := []any{filter.FacilityID}
	if q := strings.TrimSpace(filter.Search); q != "" {
		like := storage.ContainsPattern(strings.ToLower(q))
		where = append(where, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+memberColumns+" FROM member WHERE "+strings.Join(where, " AND ")+" ORDER BY name, id", args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return members, nil
	}

	grouped, err := membershipStore.LoadWithPlans(ctx, s.db, "m.facility_id = ?", filter.FacilityID)
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].Memberships = grouped[members[i].ID]
	}
	return members, nil
}

// Save persists a Member (insert or update). Memberships are saved separately.
// PRE: entity has been validated
func (s *SQLStore) Save(ctx context.Context, m domain.Member) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO member (`+memberColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email, phone=excluded.phone, photo_url=excluded.photo_url,
		balance=excluded.balance, date_of_birth=excluded.date_of_birth, joined_date=excluded.joined_date`,
		m.ID, m.FacilityID, m.Name, m.Email, m.Phone, m.PhotoURL, m.Balance.String(),
		storage.FormatDate(m.DateOfBirth), storage.FormatDate(m.JoinedDate))
	if err != nil {
		return fmt.Errorf("save member: %w", err)
	}
	return nil
}

// Balances returns every member balance in the facility, including zero and negative.
func (s *SQLStore) Balances(ctx context.Context, facilityID string) ([]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT balance FROM member WHERE facility_id = ?", facilityID)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var out []decimal.Decimal
	for rows.Next() {
		var b decimal.Decimal
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
