// Package reconcile compares the computed statement total with the total
// reported by the extraction service.
package reconcile

import (
	"fjacquet/statement-scanner/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultTolerance is the largest absolute difference, exclusive, at which
// the totals still agree.
var DefaultTolerance = decimal.NewFromInt(1)

// Reasons reported in Result.
const (
	ReasonMatched    = "matched"
	ReasonMismatch   = "mismatch"
	ReasonNoReported = "no reported total"
)

// Result describes one reconciliation.
type Result struct {
	ComputedTotal decimal.Decimal  `json:"computedTotal" xml:"computedTotal"`
	ReportedTotal *decimal.Decimal `json:"reportedTotal,omitempty" xml:"reportedTotal,omitempty"`
	Difference    *decimal.Decimal `json:"difference,omitempty" xml:"difference,omitempty"`
	Tolerance     decimal.Decimal  `json:"tolerance" xml:"tolerance"`
	Reconciled    bool             `json:"reconciled" xml:"reconciled"`
	Reason        string           `json:"reason" xml:"reason"`
}

// Checker compares totals within a tolerance.
type Checker struct {
	tolerance decimal.Decimal
}

// NewChecker creates a Checker. A non-positive tolerance selects DefaultTolerance.
func NewChecker(tolerance decimal.Decimal) *Checker {
	if !tolerance.IsPositive() {
		tolerance = DefaultTolerance
	}
	return &Checker{tolerance: tolerance}
}

// Tolerance returns the configured tolerance.
func (c *Checker) Tolerance() decimal.Decimal {
	return c.tolerance
}

// ExpenseTotal sums the positive amounts. Payments and credits are ignored.
func ExpenseTotal(txs []models.ResolvedTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Amount.IsPositive() {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// Check reconciles the full resolved statement against reported. A nil
// reported total is not an error; the statement is simply not reconciled.
func (c *Checker) Check(txs []models.ResolvedTransaction, reported *decimal.Decimal) Result {
	res := Result{
		ComputedTotal: ExpenseTotal(txs),
		Tolerance:     c.tolerance,
	}
	if reported == nil {
		res.Reason = ReasonNoReported
		return res
	}

	r := *reported
	diff := res.ComputedTotal.Sub(r)
	res.ReportedTotal = &r
	res.Difference = &diff
	res.Reconciled = diff.Abs().LessThan(c.tolerance)
	if res.Reconciled {
		res.Reason = ReasonMatched
	} else {
		res.Reason = ReasonMismatch
	}
	return res
}

// IsReconciled reports whether the totals agree within the tolerance.
func (c *Checker) IsReconciled(txs []models.ResolvedTransaction, reported *decimal.Decimal) bool {
	return c.Check(txs, reported).Reconciled
}
