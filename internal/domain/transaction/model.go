package transaction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types. Only payments count as income.
const (
	TypePayment = "payment"
	TypeRefund  = "refund"
)

// ErrInvalidAmount is returned when an amount is zero or negative.
var ErrInvalidAmount = errors.New("transaction amount must be positive")

// Transaction is a recorded money movement for a facility member.
// INVARIANT: immutable within one computation
type Transaction struct {
	ID           string
	FacilityID   string
	MemberID     string
	MembershipID string // empty when the payment is not attributed to a membership
	Type         string
	Amount       decimal.Decimal
	CreatedAt    time.Time

	// Read-side joins, filled by stores.
	MemberName  string
	MemberEmail string
	PlanID      string
	PlanName    string // plan.LabelNotAvailable when unattributed
}

// Validate checks if the Transaction has valid data.
// PRE: Transaction struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (t *Transaction) Validate() error {
	if t.FacilityID == "" || t.MemberID == "" {
		return errors.New("transaction must reference a facility and a member")
	}
	if t.Type != TypePayment && t.Type != TypeRefund {
		return errors.New("type must be 'payment' or 'refund'")
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.CreatedAt.IsZero() {
		return errors.New("transaction timestamp is required")
	}
	return nil
}
