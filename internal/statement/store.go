// Package statement holds the transactions of the currently loaded statement.
package statement

import (
	"strings"
	"sync"

	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/models"

	"github.com/shopspring/decimal"
)

// snapshot is an immutable view of one loaded statement.
type snapshot struct {
	transactions  []models.Transaction
	index         map[string]int
	period        models.Period
	reportedTotal *decimal.Decimal
}

func newSnapshot(txs []models.Transaction, period models.Period, reportedTotal *decimal.Decimal) *snapshot {
	s := &snapshot{
		transactions: make([]models.Transaction, len(txs)),
		index:        make(map[string]int, len(txs)),
		period:       period,
	}
	copy(s.transactions, txs)
	for i, tx := range s.transactions {
		s.index[tx.ID] = i
	}
	if reportedTotal != nil {
		total := *reportedTotal
		s.reportedTotal = &total
	}
	return s
}

var emptySnapshot = newSnapshot(nil, models.NewPeriod("", ""), nil)

// Store is the Transaction Store. Loads replace the whole snapshot at once,
// so readers never see a partially loaded statement.
type Store struct {
	mu     sync.RWMutex
	snap   *snapshot
	logger logging.Logger
}

// NewStore creates an empty Store.
func NewStore(logger logging.Logger) *Store {
	return &Store{snap: emptySnapshot, logger: logger}
}

// Load replaces the current statement. A nil reportedTotal means the
// statement total is unknown.
func (s *Store) Load(txs []models.Transaction, period models.Period, reportedTotal *decimal.Decimal) {
	next := newSnapshot(txs, period, reportedTotal)

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	s.logger.WithFields(
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
		logging.Field{Key: "period_start", Value: period.Start},
		logging.Field{Key: "period_end", Value: period.End},
	).Info("Statement loaded")
}

// Clear discards the current statement.
func (s *Store) Clear() {
	s.mu.Lock()
	s.snap = emptySnapshot
	s.mu.Unlock()
}

// SetManualCategory replaces the transaction with the given id by a copy
// carrying the override. An empty category clears it. It reports whether
// the id exists.
func (s *Store) SetManualCategory(id, category string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.snap.index[id]
	if !ok {
		return false
	}

	txs := make([]models.Transaction, len(s.snap.transactions))
	copy(txs, s.snap.transactions)
	txs[i] = txs[i].WithManualCategory(category)
	s.snap = &snapshot{
		transactions:  txs,
		index:         s.snap.index,
		period:        s.snap.period,
		reportedTotal: s.snap.reportedTotal,
	}

	s.logger.WithFields(
		logging.Field{Key: logging.FieldTransactionID, Value: id},
		logging.Field{Key: logging.FieldCategory, Value: category},
	).Debug("Manual category set")
	return true
}

// Get returns the transaction with the given id.
func (s *Store) Get(id string) (models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.snap.index[id]
	if !ok {
		return models.Transaction{}, false
	}
	return s.snap.transactions[i], true
}

// All returns a copy of the transactions in statement order.
func (s *Store) All() []models.Transaction {
	return s.Filter(nil)
}

// Filter returns a copy of the transactions accepted by keep. A nil keep
// accepts everything.
func (s *Store) Filter(keep func(models.Transaction) bool) []models.Transaction {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	out := make([]models.Transaction, 0, len(snap.transactions))
	for _, tx := range snap.transactions {
		if keep == nil || keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// Period returns the statement period.
func (s *Store) Period() models.Period {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.period
}

// ReportedTotal returns the statement total reported by the extraction
// service, if any.
func (s *Store) ReportedTotal() (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.reportedTotal == nil {
		return decimal.Zero, false
	}
	return *s.snap.reportedTotal, true
}

// Len returns the number of loaded transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap.transactions)
}

// MatchesSearch reports whether tx matches a free-text search term.
// The term matches the description ignoring case, the amount in its shortest
// decimal form ("153.2", "-20") or the card suffix. An empty term matches
// everything.
func MatchesSearch(tx models.Transaction, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(tx.Description), strings.ToLower(term)) {
		return true
	}
	if strings.Contains(tx.Amount.String(), term) {
		return true
	}
	return tx.CardLast4 != "" && strings.Contains(tx.CardLast4, term)
}

// SearchPredicate returns a Filter predicate for term.
func SearchPredicate(term string) func(models.Transaction) bool {
	return func(tx models.Transaction) bool {
		return MatchesSearch(tx, term)
	}
}
