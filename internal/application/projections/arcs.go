package projections

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultRingRadius matches the transactions ring drawn in a 100x100 viewBox.
const DefaultRingRadius = 45.0

// Arcs describes a two-segment ring split between received and pending amounts.
type Arcs struct {
	ReceivedFraction      float64 `json:"receivedFraction"`
	PendingFraction       float64 `json:"pendingFraction"`
	Circumference         float64 `json:"circumference"`
	ReceivedArcLength     float64 `json:"receivedArcLength"`
	PendingArcLength      float64 `json:"pendingArcLength"`
	PendingArcStartOffset float64 `json:"pendingArcStartOffset"`
}

// DeriveArcs converts received and pending sums into ring fractions and arc lengths.
// The pending arc starts at -ReceivedArcLength so the two segments are contiguous.
// POST: both fractions are 0 when received+pending is 0; otherwise they sum to 1
func DeriveArcs(received, pending decimal.Decimal, radius float64) Arcs {
	circumference := 2 * math.Pi * radius
	arcs := Arcs{Circumference: circumference}

	total := received.Add(pending)
	if total.IsZero() {
		return arcs
	}

	t := total.InexactFloat64()
	arcs.ReceivedFraction = received.InexactFloat64() / t
	arcs.PendingFraction = pending.InexactFloat64() / t
	arcs.ReceivedArcLength = arcs.ReceivedFraction * circumference
	arcs.PendingArcLength = arcs.PendingFraction * circumference
	arcs.PendingArcStartOffset = -arcs.ReceivedArcLength
	return arcs
}
