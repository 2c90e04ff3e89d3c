package categorizer

import "fjacquet/statement-scanner/internal/models"

// AIStrategy falls back to the category proposed by the extraction service.
// It always applies.
type AIStrategy struct{}

// Name returns the name of this strategy for logging and debugging.
func (AIStrategy) Name() string {
	return "AI"
}

// Categorize returns the extraction-time category.
func (AIStrategy) Categorize(tx models.Transaction) (Result, bool) {
	return Result{Category: tx.Category, Source: models.SourceAI}, true
}
