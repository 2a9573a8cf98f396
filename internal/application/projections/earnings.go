package projections

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"facilitydesk/internal/domain/transaction"
	"facilitydesk/internal/domain/window"
)

// DailyEarning is the summed income for one facility-local calendar day.
type DailyEarning struct {
	Date   string          `json:"date"` // YYYY-MM-DD
	Amount decimal.Decimal `json:"amount"`
}

// Change is a period-over-period percentage change.
// When the previous value is zero the ratio is undefined: Value holds the raw IEEE
// result (+Inf, -Inf or NaN) and Computable is false.
type Change struct {
	Value      float64
	Computable bool
}

// MarshalJSON encodes a non-computable change as null.
func (c Change) MarshalJSON() ([]byte, error) {
	if !c.Computable {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// TransactionSummary carries the output of AggregateTransactions.
type TransactionSummary struct {
	TotalIncome         decimal.Decimal `json:"totalIncome"`
	PreviousIncome      decimal.Decimal `json:"previousIncome"`
	Change              Change          `json:"changePercent"`
	TotalPendingBalance decimal.Decimal `json:"totalPendingBalance"`
	DailyEarnings       []DailyEarning  `json:"dailyEarnings"`
}

// AggregateTransactions sums income for w and its previous window and builds the
// zero-filled daily series.
// PRE: w boundaries are local midnights in loc (as produced by window.Resolve)
// POST: len(DailyEarnings) == len(w.Days()); sum of DailyEarnings == TotalIncome
func AggregateTransactions(current, previous []transaction.Transaction, w window.Window, balances []decimal.Decimal, loc *time.Location) TransactionSummary {
	total := SumIncome(current, w)
	prev := SumIncome(previous, w.Previous())

	return TransactionSummary{
		TotalIncome:         total,
		PreviousIncome:      prev,
		Change:              PercentChange(total, prev),
		TotalPendingBalance: PendingBalance(balances),
		DailyEarnings:       DailySeries(current, w, loc),
	}
}

// SumIncome sums amounts of transactions whose timestamp falls inside w.
// Transactions outside w are ignored even if the caller passed them in.
func SumIncome(txs []transaction.Transaction, w window.Window) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if w.Contains(t.CreatedAt) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// DailySeries returns one entry per calendar day of w, including zero days.
func DailySeries(txs []transaction.Transaction, w window.Window, loc *time.Location) []DailyEarning {
	days := w.Days()
	series := make([]DailyEarning, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		key := d.In(loc).Format(window.DateLayout)
		series[i] = DailyEarning{Date: key, Amount: decimal.Zero}
		index[key] = i
	}

	for _, t := range txs {
		if !w.Contains(t.CreatedAt) {
			continue
		}
		i, ok := index[t.CreatedAt.In(loc).Format(window.DateLayout)]
		if !ok {
			continue
		}
		series[i].Amount = series[i].Amount.Add(t.Amount)
	}
	return series
}

// PendingBalance sums the strictly positive balances. It is a snapshot, not a flow.
func PendingBalance(balances []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range balances {
		if b.IsPositive() {
			sum = sum.Add(b)
		}
	}
	return sum
}

// PercentChange returns (income - previous) / previous * 100.
// POST: Computable is false exactly when previous is zero
func PercentChange(income, previous decimal.Decimal) Change {
	cur := income.InexactFloat64()
	prev := previous.InexactFloat64()
	value := (cur - prev) / prev * 100
	return Change{
		Value:      value,
		Computable: !previous.IsZero() && !math.IsInf(value, 0) && !math.IsNaN(value),
	}
}
