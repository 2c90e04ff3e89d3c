// Package rules manages the ordered list of keyword categorization rules.
package rules

import (
	"strings"

	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/models"
	"fjacquet/statement-scanner/internal/scanerror"

	"github.com/google/uuid"
)

// Set is the ordered Rule Set. Position in the list is priority: the first
// matching rule wins. It is not safe for concurrent use.
type Set struct {
	rules  []models.KeywordRule
	logger logging.Logger
	newID  func() string
}

// New creates a Set holding a copy of the given rules. Rules without an id,
// or repeating an id already seen, get a fresh one.
func New(initial []models.KeywordRule, logger logging.Logger) *Set {
	s := &Set{
		rules:  make([]models.KeywordRule, 0, len(initial)),
		logger: logger,
		newID:  uuid.NewString,
	}
	for _, rule := range initial {
		rule.ID = s.uniqueID(rule.ID)
		s.rules = append(s.rules, rule)
	}
	return s
}

// NewDefault creates a Set holding the default rules.
func NewDefault(logger logging.Logger) *Set {
	return New(models.DefaultRules(), logger)
}

func validate(rule models.KeywordRule) error {
	if strings.TrimSpace(rule.Keyword) == "" {
		return &scanerror.RuleError{Field: "keyword", Reason: "must not be empty"}
	}
	return nil
}

// Add appends a rule at the lowest priority and returns it with its id.
// A fresh id is assigned when the rule has none or its id is taken.
func (s *Set) Add(rule models.KeywordRule) (models.KeywordRule, error) {
	if err := validate(rule); err != nil {
		return models.KeywordRule{}, err
	}
	rule.ID = s.uniqueID(rule.ID)
	s.rules = append(s.rules, rule)

	s.logger.WithFields(
		logging.Field{Key: logging.FieldRuleID, Value: rule.ID},
		logging.Field{Key: logging.FieldKeyword, Value: rule.Keyword},
		logging.Field{Key: logging.FieldCategory, Value: rule.Category},
	).Info("Rule added")
	return rule, nil
}

// Update replaces the rule with the same id. It reports false, and changes
// nothing, when the id is unknown.
func (s *Set) Update(rule models.KeywordRule) (bool, error) {
	if err := validate(rule); err != nil {
		return false, err
	}
	i := s.indexOf(rule.ID)
	if i < 0 {
		return false, nil
	}
	s.rules[i] = rule

	s.logger.WithFields(
		logging.Field{Key: logging.FieldRuleID, Value: rule.ID},
		logging.Field{Key: logging.FieldKeyword, Value: rule.Keyword},
		logging.Field{Key: logging.FieldCategory, Value: rule.Category},
	).Info("Rule updated")
	return true, nil
}

// Delete removes the rule with the given id and reports whether it existed.
func (s *Set) Delete(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.rules = append(s.rules[:i], s.rules[i+1:]...)

	s.logger.WithField(logging.FieldRuleID, id).Info("Rule deleted")
	return true
}

// Move puts the rule with the given id at position, clamped to the list
// bounds, shifting the others. It reports whether the id exists.
func (s *Set) Move(id string, position int) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	if position < 0 {
		position = 0
	}
	if position >= len(s.rules) {
		position = len(s.rules) - 1
	}

	rule := s.rules[i]
	s.rules = append(s.rules[:i], s.rules[i+1:]...)
	s.rules = append(s.rules[:position], append([]models.KeywordRule{rule}, s.rules[position:]...)...)

	s.logger.WithFields(
		logging.Field{Key: logging.FieldRuleID, Value: id},
		logging.Field{Key: "position", Value: position},
	).Debug("Rule moved")
	return true
}

// Get returns the rule with the given id.
func (s *Set) Get(id string) (models.KeywordRule, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return models.KeywordRule{}, false
	}
	return s.rules[i], true
}

// List returns a copy of the rules in priority order.
func (s *Set) List() []models.KeywordRule {
	out := make([]models.KeywordRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of rules.
func (s *Set) Len() int {
	return len(s.rules)
}

// Orphans returns the rules whose category is not known.
func (s *Set) Orphans(known func(category string) bool) []models.KeywordRule {
	var orphans []models.KeywordRule
	for _, r := range s.rules {
		if !known(r.Category) {
			orphans = append(orphans, r)
		}
	}
	return orphans
}

func (s *Set) uniqueID(id string) string {
	for id == "" || s.indexOf(id) >= 0 {
		id = s.newID()
	}
	return id
}

func (s *Set) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, r := range s.rules {
		if r.ID == id {
			return i
		}
	}
	return -1
}
