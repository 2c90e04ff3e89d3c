package categorizer

import (
	"fjacquet/statement-scanner/internal/models"
)

// Result is the outcome of a successful strategy.
type Result struct {
	Category string
	Source   models.CategorySource
	RuleID   string
}

// Strategy is one step of the resolution order.
// Strategies are pure: they read the transaction and their own inputs only.
type Strategy interface {
	// Categorize returns the category decided by this strategy and whether
	// the strategy applies to the transaction.
	Categorize(tx models.Transaction) (Result, bool)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}
