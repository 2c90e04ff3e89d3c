package report

import (
	"encoding/xml"
	"sort"

	"fjacquet/statement-scanner/internal/models"
	"fjacquet/statement-scanner/internal/reconcile"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CategoryTotal is one line of the spending breakdown.
type CategoryTotal struct {
	Category   string          `json:"category" xml:"category"`
	Amount     decimal.Decimal `json:"amount" xml:"amount"`
	Percentage decimal.Decimal `json:"percentage" xml:"percentage"`
	Color      string          `json:"color" xml:"color"`
}

// Summary is the statement overview presented next to the transaction list.
type Summary struct {
	XMLName          xml.Name         `json:"-" xml:"summary"`
	FileName         string           `json:"fileName,omitempty" xml:"fileName,omitempty"`
	Period           models.Period    `json:"period" xml:"period"`
	Search           string           `json:"search,omitempty" xml:"search,omitempty"`
	TransactionCount int              `json:"transactionCount" xml:"transactionCount"`
	TotalSpend       decimal.Decimal  `json:"totalSpend" xml:"totalSpend"`
	Breakdown        []CategoryTotal  `json:"breakdown" xml:"breakdown>item"`
	Reconciliation   reconcile.Result `json:"reconciliation" xml:"reconciliation"`
}

// Breakdown sums the expenses of txs per effective category, largest first.
// Percentages are relative to the sum of all expenses and rounded to one
// decimal place.
func Breakdown(txs []models.ResolvedTransaction, colorFor func(category string) models.CategoryColor) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	var order []string
	grand := decimal.Zero

	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		if _, seen := totals[tx.EffectiveCategory]; !seen {
			order = append(order, tx.EffectiveCategory)
		}
		totals[tx.EffectiveCategory] = totals[tx.EffectiveCategory].Add(tx.Amount)
		grand = grand.Add(tx.Amount)
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, category := range order {
		amount := totals[category]
		pct := decimal.Zero
		if grand.IsPositive() {
			pct = amount.Mul(hundred).Div(grand).Round(1)
		}
		out = append(out, CategoryTotal{
			Category:   category,
			Amount:     amount,
			Percentage: pct,
			Color:      colorFor(category).Fill,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// TotalSpend sums the positive amounts of txs.
func TotalSpend(txs []models.ResolvedTransaction) decimal.Decimal {
	return reconcile.ExpenseTotal(txs)
}
