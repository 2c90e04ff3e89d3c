package categorizer

import (
	"strings"

	"fjacquet/statement-scanner/internal/models"
)

// KeywordStrategy matches the transaction description against keyword rules.
type KeywordStrategy struct {
	rules []models.KeywordRule
}

// NewKeywordStrategy creates a KeywordStrategy over the given rules, in priority order.
func NewKeywordStrategy(rules []models.KeywordRule) *KeywordStrategy {
	return &KeywordStrategy{rules: rules}
}

// Name returns the name of this strategy for logging and debugging.
func (s *KeywordStrategy) Name() string {
	return "Keyword"
}

// Categorize returns the category of the first rule whose keyword occurs in
// the description, ignoring case. Matching is a plain substring test.
func (s *KeywordStrategy) Categorize(tx models.Transaction) (Result, bool) {
	if tx.Description == "" {
		return Result{}, false
	}
	description := strings.ToLower(tx.Description)

	for _, rule := range s.rules {
		if rule.Keyword == "" {
			continue
		}
		if strings.Contains(description, strings.ToLower(rule.Keyword)) {
			return Result{Category: rule.Category, Source: models.SourceRule, RuleID: rule.ID}, true
		}
	}
	return Result{}, false
}

// MatchingRule returns the first rule that matches description.
func MatchingRule(description string, rules []models.KeywordRule) (models.KeywordRule, bool) {
	res, ok := NewKeywordStrategy(rules).Categorize(models.Transaction{Description: description})
	if !ok {
		return models.KeywordRule{}, false
	}
	for _, r := range rules {
		if r.ID == res.RuleID {
			return r, true
		}
	}
	return models.KeywordRule{Category: res.Category}, true
}
