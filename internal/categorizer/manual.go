package categorizer

import "fjacquet/statement-scanner/internal/models"

// ManualStrategy applies the user's override.
type ManualStrategy struct{}

// Name returns the name of this strategy for logging and debugging.
func (ManualStrategy) Name() string {
	return "Manual"
}

// Categorize returns the manual category when one is set.
func (ManualStrategy) Categorize(tx models.Transaction) (Result, bool) {
	if tx.ManualCategory == "" {
		return Result{}, false
	}
	return Result{Category: tx.ManualCategory, Source: models.SourceManual}, true
}
