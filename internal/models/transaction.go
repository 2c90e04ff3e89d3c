// Package models provides the data structures shared by the statement scanner.
package models

import (
	"github.com/shopspring/decimal"
)

// Transaction is one line of a loaded statement.
//
// Category is the label proposed by the extraction service and never changes
// after load. ManualCategory, when non-empty, overrides every other source.
// Records are treated as values: an update replaces the whole Transaction.
type Transaction struct {
	ID               string          `json:"id" yaml:"id"`
	Date             string          `json:"date" yaml:"date"`
	Description      string          `json:"description" yaml:"description"`
	CardLast4        string          `json:"cardLast4,omitempty" yaml:"card_last4,omitempty"`
	Amount           decimal.Decimal `json:"amount" yaml:"amount"`
	Category         string          `json:"category" yaml:"category"`
	OriginalCategory string          `json:"originalCategory,omitempty" yaml:"original_category,omitempty"`
	ManualCategory   string          `json:"manualCategory,omitempty" yaml:"manual_category,omitempty"`
}

// IsExpense reports whether the transaction is a purchase (positive amount).
// Payments, credits and refunds are negative.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsPositive()
}

// HasManualCategory reports whether a user override is set.
func (t Transaction) HasManualCategory() bool {
	return t.ManualCategory != ""
}

// WithManualCategory returns a copy of t carrying the given override.
// An empty category clears the override.
func (t Transaction) WithManualCategory(category string) Transaction {
	t.ManualCategory = category
	return t
}

// CategorySource names the step of the resolution order that decided a category.
type CategorySource string

const (
	SourceManual CategorySource = "manual"
	SourceRule   CategorySource = "rule"
	SourceAI     CategorySource = "ai"
)

// ResolvedTransaction is a Transaction paired with its effective category.
type ResolvedTransaction struct {
	Transaction
	EffectiveCategory string         `json:"effectiveCategory"`
	Source            CategorySource `json:"source"`
	RuleID            string         `json:"ruleId,omitempty"`
}
