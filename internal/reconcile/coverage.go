package reconcile

import (
	"github.com/shopspring/decimal"
)

type CoverageState string

const (
	Covered   CoverageState = "covered"
	Partial   CoverageState = "partial"
	Uncovered CoverageState = "uncovered"
)

var hundred = decimal.NewFromInt(100)

type Coverage struct {
	State   CoverageState   `json:"state"`
	Applied decimal.Decimal `json:"applied"`
	Percent decimal.Decimal `json:"percent"`
}

// Allocate spreads totalPaid over the given amounts, oldest debt first.
// amounts are in display order (newest first); the result uses the same
// order. Every item the pool fully covers is Covered; the first item the pool
// cannot fully cover becomes the single Partial item when something is left,
// and everything after it is Uncovered.
func Allocate(amounts []decimal.Decimal, totalPaid decimal.Decimal) []Coverage {
	out := make([]Coverage, len(amounts))
	for i := range out {
		out[i] = Coverage{State: Uncovered, Applied: decimal.Zero, Percent: decimal.Zero}
	}

	remaining := totalPaid
	for i := len(amounts) - 1; i >= 0; i-- {
		amount := amounts[i]
		if remaining.GreaterThanOrEqual(amount) {
			out[i] = Coverage{State: Covered, Applied: amount, Percent: hundred}
			remaining = remaining.Sub(amount)
			continue
		}
		if remaining.IsPositive() {
			out[i] = Coverage{
				State:   Partial,
				Applied: remaining,
				Percent: remaining.Div(amount).Mul(hundred).Round(2),
			}
		}
		break
	}
	return out
}
