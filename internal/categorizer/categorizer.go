// Package categorizer computes the effective category of a transaction.
//
// The resolution order is fixed: a manual override wins, then the first
// keyword rule in list order whose keyword occurs in the description, then
// the category proposed by the extraction service.
package categorizer

import (
	"fjacquet/statement-scanner/internal/models"
)

// Resolver runs strategies in order and keeps the first result.
type Resolver struct {
	strategies []Strategy
}

// NewResolver creates a Resolver using the standard resolution order over rules.
func NewResolver(rules []models.KeywordRule) *Resolver {
	return NewResolverWithStrategies(
		ManualStrategy{},
		NewKeywordStrategy(rules),
		AIStrategy{},
	)
}

// NewResolverWithStrategies creates a Resolver with a custom strategy order.
func NewResolverWithStrategies(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve returns the resolved form of tx. If no strategy applies the
// effective category is the extraction-time category.
func (r *Resolver) Resolve(tx models.Transaction) models.ResolvedTransaction {
	for _, strategy := range r.strategies {
		if res, ok := strategy.Categorize(tx); ok {
			return models.ResolvedTransaction{
				Transaction:       tx,
				EffectiveCategory: res.Category,
				Source:            res.Source,
				RuleID:            res.RuleID,
			}
		}
	}
	return models.ResolvedTransaction{
		Transaction:       tx,
		EffectiveCategory: tx.Category,
		Source:            models.SourceAI,
	}
}

// ResolveAll resolves every transaction, preserving order.
func (r *Resolver) ResolveAll(txs []models.Transaction) []models.ResolvedTransaction {
	out := make([]models.ResolvedTransaction, len(txs))
	for i, tx := range txs {
		out[i] = r.Resolve(tx)
	}
	return out
}

// Resolve returns the effective category of tx under rules.
func Resolve(tx models.Transaction, rules []models.KeywordRule) string {
	return NewResolver(rules).Resolve(tx).EffectiveCategory
}

// ResolveAll resolves txs under rules.
func ResolveAll(txs []models.Transaction, rules []models.KeywordRule) []models.ResolvedTransaction {
	return NewResolver(rules).ResolveAll(txs)
}
