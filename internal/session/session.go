// Package session holds the process-wide application state: the loaded
// statement, the keyword rules and the category registry, together with
// the upload state machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"fjacquet/statement-scanner/internal/categorizer"
	"fjacquet/statement-scanner/internal/export"
	"fjacquet/statement-scanner/internal/extraction"
	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/models"
	"fjacquet/statement-scanner/internal/reconcile"
	"fjacquet/statement-scanner/internal/registry"
	"fjacquet/statement-scanner/internal/report"
	"fjacquet/statement-scanner/internal/rules"
	"fjacquet/statement-scanner/internal/scanerror"
	"fjacquet/statement-scanner/internal/statement"
	"fjacquet/statement-scanner/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultExtractionTimeout bounds a single extraction call.
const DefaultExtractionTimeout = 2 * time.Minute

// ErrNoGateway is returned by Upload when extraction is disabled.
var ErrNoGateway = errors.New("no extraction gateway configured")

// Session is the explicit application-state object. All methods are safe
// for concurrent use.
type Session struct {
	mu sync.Mutex

	state    models.AppState
	fileName string
	notice   string

	store    *statement.Store
	rules    *rules.Set
	registry *registry.Registry

	gateway  extraction.Gateway
	checker  *reconcile.Checker
	exporter *export.Exporter
	timeout  time.Duration
	newID    func() string
	logger   logging.Logger
}

// Options configures a Session.
type Options struct {
	Rules    *rules.Set
	Registry *registry.Registry
	Gateway  extraction.Gateway
	Checker  *reconcile.Checker
	Exporter *export.Exporter
	Timeout  time.Duration
	Logger   logging.Logger
}

// New creates an IDLE session. Missing collaborators get defaults, except
// the gateway which is required for uploads.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	s := &Session{
		state:    models.StateIdle,
		store:    statement.NewStore(logger),
		rules:    opts.Rules,
		registry: opts.Registry,
		gateway:  opts.Gateway,
		checker:  opts.Checker,
		exporter: opts.Exporter,
		timeout:  opts.Timeout,
		newID:    uuid.NewString,
		logger:   logger,
	}
	if s.rules == nil {
		s.rules = rules.NewDefault(logger)
	}
	if s.registry == nil {
		s.registry = registry.NewDefault(logger)
	}
	if s.checker == nil {
		s.checker = reconcile.NewChecker(reconcile.DefaultTolerance)
	}
	if s.exporter == nil {
		s.exporter = export.NewExporter(export.DefaultOptions(), logger)
	}
	if s.timeout <= 0 {
		s.timeout = DefaultExtractionTimeout
	}
	return s
}

// Upload validates doc, runs one extraction and loads the result.
//
// Only an IDLE session accepts uploads; while an extraction runs further
// uploads fail with ErrExtractionInProgress. A document that is not a PDF
// leaves the session IDLE with a notice. Extraction failures move the
// session to ERROR.
func (s *Session) Upload(ctx context.Context, doc extraction.Document) error {
	s.mu.Lock()
	switch s.state {
	case models.StateIdle:
	case models.StateProcessing:
		s.mu.Unlock()
		return scanerror.ErrExtractionInProgress
	default:
		from := s.state
		s.mu.Unlock()
		return &scanerror.TransitionError{From: string(from), Action: "upload"}
	}

	if err := validation.ValidateDocument(doc.Name, doc.MIMEType, doc.Data); err != nil {
		s.notice = scanerror.MsgInvalidDocument
		s.mu.Unlock()
		s.logger.WithFields(
			logging.Field{Key: logging.FieldFileName, Value: doc.Name},
			logging.Field{Key: logging.FieldMIMEType, Value: doc.MIMEType},
		).Warn("Rejected upload")
		return err
	}
	if s.gateway == nil {
		s.mu.Unlock()
		return ErrNoGateway
	}

	s.state = models.StateProcessing
	s.fileName = doc.Name
	s.notice = ""
	if len(doc.Categories) == 0 {
		doc.Categories = s.registry.Names()
	}
	gateway := s.gateway
	s.mu.Unlock()

	s.logger.WithFields(
		logging.Field{Key: logging.FieldFileName, Value: doc.Name},
		logging.Field{Key: logging.FieldStrategy, Value: gateway.Name()},
	).Info("Extracting statement")

	// The extraction is not tied to the caller: it runs to completion or to
	// the configured timeout.
	extractCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	result, err := gateway.Extract(extractCtx, doc)
	if err == nil && result == nil {
		err = extraction.ErrEmptyResponse
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = models.StateError
		s.notice = scanerror.MsgExtractionFailed
		s.logger.WithError(err).WithFields(
			logging.Field{Key: logging.FieldFileName, Value: doc.Name},
			logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()},
		).Error("Statement extraction failed")
		var extractionErr *scanerror.ExtractionError
		if errors.As(err, &extractionErr) {
			return err
		}
		return &scanerror.ExtractionError{FileName: doc.Name, Stage: extractionStage(err), Err: err}
	}

	txs := s.toTransactions(result.Transactions)
	s.store.Load(txs, models.NewPeriod(result.StartDate, result.EndDate), result.StatementTotal)
	s.state = models.StateAnalyzed

	s.logger.WithFields(
		logging.Field{Key: logging.FieldFileName, Value: doc.Name},
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()},
	).Info("Statement analyzed")
	return nil
}

// extractionStage classifies a gateway failure.
func extractionStage(err error) string {
	switch {
	case errors.Is(err, extraction.ErrMalformedResponse):
		return scanerror.StageDecode
	case errors.Is(err, extraction.ErrEmptyResponse), errors.Is(err, extraction.ErrMissingTransactions):
		return scanerror.StageResponse
	default:
		return scanerror.StageRequest
	}
}

func (s *Session) toTransactions(raw []extraction.RawTransaction) []models.Transaction {
	txs := make([]models.Transaction, len(raw))
	for i, r := range raw {
		txs[i] = models.Transaction{
			ID:               s.newID(),
			Date:             r.Date,
			Description:      r.Description,
			CardLast4:        r.CardLast4,
			Amount:           r.Amount,
			Category:         r.Category,
			OriginalCategory: r.Category,
		}
	}
	return txs
}

// Reset discards the analyzed statement. Rules and categories are kept.
func (s *Session) Reset() error {
	return s.backToIdle(models.StateAnalyzed, "reset")
}

// Retry leaves the ERROR state so a new upload can be attempted.
func (s *Session) Retry() error {
	return s.backToIdle(models.StateError, "retry")
}

func (s *Session) backToIdle(from models.AppState, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != from {
		return &scanerror.TransitionError{From: string(s.state), Action: action}
	}
	s.store.Clear()
	s.fileName = ""
	s.notice = ""
	s.state = models.StateIdle

	s.logger.WithField(logging.FieldOperation, action).Info("Session returned to idle")
	return nil
}

// State returns the current state.
func (s *Session) State() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot is a read-only view of the session header.
type Snapshot struct {
	State            models.AppState   `json:"state"`
	FileName         string            `json:"fileName,omitempty"`
	Message          string            `json:"message,omitempty"`
	Period           models.Period     `json:"period"`
	TransactionCount int               `json:"transactionCount"`
	ReportedTotal    *decimal.Decimal  `json:"reportedTotal,omitempty"`
	Reconciliation   *reconcile.Result `json:"reconciliation,omitempty"`
}

// Snapshot returns the current state, file name, user message and totals.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:            s.state,
		FileName:         s.fileName,
		Message:          s.notice,
		Period:           s.store.Period(),
		TransactionCount: s.store.Len(),
	}
	if total, ok := s.store.ReportedTotal(); ok {
		snap.ReportedTotal = &total
	}
	if s.state == models.StateAnalyzed {
		res := s.reconcileLocked()
		snap.Reconciliation = &res
	}
	return snap
}

// SetManualCategory overrides the category of one transaction; an empty
// category clears the override. It reports whether the id exists.
func (s *Session) SetManualCategory(id, category string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SetManualCategory(id, category)
}

func (s *Session) resolvedLocked() []models.ResolvedTransaction {
	return categorizer.ResolveAll(s.store.All(), s.rules.List())
}

func (s *Session) filteredLocked(search string) []models.ResolvedTransaction {
	all := s.resolvedLocked()
	if search == "" {
		return all
	}
	match := statement.SearchPredicate(search)
	out := make([]models.ResolvedTransaction, 0, len(all))
	for _, tx := range all {
		if match(tx.Transaction) {
			out = append(out, tx)
		}
	}
	return out
}

// Transactions returns the resolved transactions matching search, in
// statement order.
func (s *Session) Transactions(search string) []models.ResolvedTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filteredLocked(search)
}

func (s *Session) reconcileLocked() reconcile.Result {
	var reported *decimal.Decimal
	if total, ok := s.store.ReportedTotal(); ok {
		reported = &total
	}
	return s.checker.Check(s.resolvedLocked(), reported)
}

// Reconciliation checks the whole statement, regardless of any search,
// against the reported total.
func (s *Session) Reconciliation() reconcile.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconcileLocked()
}

// Summary builds the statement overview for the transactions matching
// search. Reconciliation always covers the whole statement.
func (s *Session) Summary(search string) *report.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.filteredLocked(search)
	return &report.Summary{
		FileName:         s.fileName,
		Period:           s.store.Period(),
		Search:           search,
		TransactionCount: len(filtered),
		TotalSpend:       report.TotalSpend(filtered),
		Breakdown:        report.Breakdown(filtered, s.registry.ColorFor),
		Reconciliation:   s.reconcileLocked(),
	}
}

// Export writes the resolved transactions matching search as CSV.
func (s *Session) Export(w io.Writer, search string) error {
	s.mu.Lock()
	txs := s.filteredLocked(search)
	s.mu.Unlock()

	if err := s.exporter.Write(w, txs); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Rules returns the keyword rules in priority order.
func (s *Session) Rules() []models.KeywordRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.List()
}

// AddRule appends a keyword rule.
func (s *Session) AddRule(rule models.KeywordRule) (models.KeywordRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Add(rule)
}

// UpdateRule replaces a keyword rule by id.
func (s *Session) UpdateRule(rule models.KeywordRule) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Update(rule)
}

// DeleteRule removes a keyword rule by id.
func (s *Session) DeleteRule(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Delete(id)
}

// MoveRule changes the priority of a keyword rule.
func (s *Session) MoveRule(id string, position int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Move(id, position)
}

// OrphanRules returns rules whose category is not registered.
func (s *Session) OrphanRules() []models.KeywordRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Orphans(s.registry.Has)
}

// Categories returns the registered categories.
func (s *Session) Categories() []models.CategoryConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.List()
}

// AddCategory registers a category and reports whether it was added.
func (s *Session) AddCategory(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.AddCategory(name)
}

// SetCategoryColor changes the color of a registered category.
func (s *Session) SetCategoryColor(name string, color models.CategoryColor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.SetColor(name, color)
}

// ColorFor returns the display color of a category.
func (s *Session) ColorFor(name string) models.CategoryColor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.ColorFor(name)
}
