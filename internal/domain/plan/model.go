package plan

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Labels used when a plan name cannot be resolved.
const (
	LabelNoPlan       = "No Plan"
	LabelUnknownPlan  = "Unknown Plan"
	LabelNotAvailable = "N/A"
)

// ErrNotFound is returned by stores when no plan matches.
var ErrNotFound = errors.New("plan not found")

// Plan is a purchasable membership plan offered by a facility.
type Plan struct {
	ID           string
	FacilityID   string
	Name         string
	DurationDays int
	Price        decimal.Decimal
}

// Validate checks if the Plan has valid data.
// PRE: Plan struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("plan name cannot be empty")
	}
	if p.DurationDays <= 0 {
		return errors.New("plan duration must be positive")
	}
	if p.Price.IsNegative() {
		return errors.New("plan price cannot be negative")
	}
	return nil
}

// Label returns the display name, or LabelUnknownPlan when the name is blank.
// INVARIANT: a nil plan also yields LabelUnknownPlan
func (p *Plan) Label() string {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return LabelUnknownPlan
	}
	return p.Name
}
