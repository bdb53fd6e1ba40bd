// Package calculator implements the pure balance and settlement arithmetic.
//
// Every function here is deterministic and side-effect free: the same
// expense collection always yields the same result, and inputs are never
// mutated. Results are float64 with full precision; rounding happens only
// at the presentation layer. Callers compare balances with an epsilon, not
// exact equality.
package calculator

import (
	"errors"

	"github.com/hisaab-app/hisaab/internal/models"
)

// ErrEmptySplit is returned when an expense has no split participants.
// The ledger never commits such a record; this guards against callers
// passing unvalidated data.
var ErrEmptySplit = errors.New("expense has no split participants")

// SplitAmount computes each participant's equal share of one expense.
func SplitAmount(e models.Expense) (float64, error) {
	if len(e.SplitBetween) == 0 {
		return 0, ErrEmptySplit
	}
	return e.Amount / float64(len(e.SplitBetween)), nil
}
