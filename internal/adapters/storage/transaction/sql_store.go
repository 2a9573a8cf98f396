package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"facilitydesk/internal/adapters/storage"
	memberDomain "facilitydesk/internal/domain/member"
	planDomain "facilitydesk/internal/domain/plan"
	domain "facilitydesk/internal/domain/transaction"
)

// SQLStore implements Store over storage.SQLDB.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new transaction store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// List returns payments matching filter, newest first, joined with member and plan.
// POST: PlanName is planDomain.LabelNotAvailable for unattributed payments
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Transaction, error) {
	where := []string{"t.facility_id = ?", "t.type = ?", "t.created_at >= ?", "t.created_at < ?"}
	args := []any{filter.FacilityID, domain.TypePayment, storage.FormatTime(filter.From), storage.FormatTime(filter.To)}
	if filter.PlanID != "" {
		where = append(where, "p.id = ?")
		args = append(args, filter.PlanID)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		like := storage.ContainsPattern(strings.ToLower(q))
		where = append(where, `(LOWER(m.name) LIKE ? ESCAPE '\' OR LOWER(m.email) LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}

	query := `SELECT t.id, t.facility_id, t.member_id, COALESCE(t.membership_id, ''), t.type, t.amount, t.created_at,
		COALESCE(m.name, ''), COALESCE(m.email, ''), COALESCE(p.id, ''), COALESCE(p.name, '')
		FROM payment_transaction t
		LEFT JOIN member m ON m.id = t.member_id
		LEFT JOIN membership ms ON ms.id = t.membership_id
		LEFT JOIN plan p ON p.id = ms.plan_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY t.created_at DESC, t.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var created string
		if err := rows.Scan(&t.ID, &t.FacilityID, &t.MemberID, &t.MembershipID, &t.Type, &t.Amount, &created,
			&t.MemberName, &t.MemberEmail, &t.PlanID, &t.PlanName); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.CreatedAt, err = storage.ParseTime(created); err != nil {
			return nil, err
		}
		if strings.TrimSpace(t.PlanName) == "" {
			t.PlanName = planDomain.LabelNotAvailable
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Save persists a Transaction without touching the member balance.
// PRE: value has been validated
func (s *SQLStore) Save(ctx context.Context, t domain.Transaction) error {
	return insert(ctx, s.db, t)
}

// RecordPayment stores a payment and reduces the member's balance by its amount in
// one database transaction.
// PRE: value has been validated and is a payment
// POST: on error neither the transaction row nor the balance change is persisted
func (s *SQLStore) RecordPayment(ctx context.Context, t domain.Transaction) error {
	return s.db.InTx(ctx, func(q storage.Querier) error {
		err := storage.AdjustBalance(ctx, q, t.MemberID, func(facilityID string, balance decimal.Decimal) (decimal.Decimal, error) {
			if facilityID != t.FacilityID {
				return decimal.Zero, fmt.Errorf("member %s: %w", t.MemberID, memberDomain.ErrNotFound)
			}
			m := memberDomain.Member{ID: t.MemberID, FacilityID: facilityID, Balance: balance}
			if err := m.ApplyPayment(t.Amount); err != nil {
				return decimal.Zero, err
			}
			return m.Balance, nil
		})
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("member %s: %w", t.MemberID, memberDomain.ErrNotFound)
		}
		if err != nil {
			return err
		}
		return insert(ctx, q, t)
	})
}

func insert(ctx context.Context, q storage.Querier, t domain.Transaction) error {
	var membershipID any
	if t.MembershipID != "" {
		membershipID = t.MembershipID
	}
	_, err := q.ExecContext(ctx, `INSERT INTO payment_transaction (id, facility_id, member_id, membership_id, type, amount, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.FacilityID, t.MemberID, membershipID, t.Type, t.Amount.String(), storage.FormatTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}
	return nil
}
