package member

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"facilitydesk/internal/domain/membership"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Domain errors
var (
	ErrNotFound        = errors.New("member not found")
	ErrNegativePayment = errors.New("payment amount must be positive")
)

// Member holds state for the concept.
type Member struct {
	ID          string
	FacilityID  string
	Name        string
	Email       string
	Phone       string
	PhotoURL    string
	Balance     decimal.Decimal
	DateOfBirth time.Time // zero when unknown
	JoinedDate  time.Time
	Memberships []membership.Membership // renewal history, unordered
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name must not be empty, Email (when set) must contain '@'
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("member name cannot be empty")
	}
	if utf8.RuneCountInString(m.Name) > MaxNameLength {
		return errors.New("member name cannot exceed 100 characters")
	}
	if m.Email != "" && !strings.Contains(m.Email, "@") {
		return errors.New("member email must be valid")
	}
	if m.FacilityID == "" {
		return errors.New("member must belong to a facility")
	}
	return nil
}

// HasBalance reports whether the member owes a strictly positive amount.
// INVARIANT: Balance is not mutated
func (m *Member) HasBalance() bool {
	return m.Balance.IsPositive()
}

// IsBirthday reports whether the member's birth month and day match now in loc.
// Members without a birth date never match; years are ignored.
func (m *Member) IsBirthday(now time.Time, loc *time.Location) bool {
	if m.DateOfBirth.IsZero() {
		return false
	}
	local := now.In(loc)
	return m.DateOfBirth.Month() == local.Month() && m.DateOfBirth.Day() == local.Day()
}

// ApplyPayment reduces the outstanding balance by amount.
// The balance may go below zero when a member prepays.
// PRE: amount > 0
// POST: Balance decreased by amount
func (m *Member) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNegativePayment
	}
	m.Balance = m.Balance.Sub(amount)
	return nil
}
