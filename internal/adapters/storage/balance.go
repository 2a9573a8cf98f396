package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrBalanceContended is returned when a member balance keeps changing between the
// read and the guarded update.
var ErrBalanceContended = errors.New("member balance changed concurrently")

const maxBalanceAttempts = 5

// BalanceFunc computes a member's new balance from the stored one.
type BalanceFunc func(facilityID string, balance decimal.Decimal) (decimal.Decimal, error)

// AdjustBalance rewrites a member balance through apply. The update only matches
// while the row still holds the text that was read, so a concurrent writer makes it
// miss and the balance is read again.
// POST: returns an error wrapping sql.ErrNoRows when the member does not exist
func AdjustBalance(ctx context.Context, q Querier, memberID string, apply BalanceFunc) error {
	for range maxBalanceAttempts {
		var facilityID, stored string
		if err := q.QueryRowContext(ctx, "SELECT facility_id, balance FROM member WHERE id = ?", memberID).Scan(&facilityID, &stored); err != nil {
			return fmt.Errorf("read balance: %w", err)
		}
		current, err := decimal.NewFromString(stored)
		if err != nil {
			return fmt.Errorf("parse balance %q: %w", stored, err)
		}
		next, err := apply(facilityID, current)
		if err != nil {
			return err
		}

		res, err := q.ExecContext(ctx, "UPDATE member SET balance = ? WHERE id = ? AND balance = ?", next.String(), memberID, stored)
		if err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		if n == 1 {
			return nil
		}
	}
	return fmt.Errorf("member %s: %w", memberID, ErrBalanceContended)
}
