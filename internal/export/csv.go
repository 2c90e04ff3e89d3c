// Package export writes resolved transactions as CSV.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/models"

	"github.com/gocarina/gocsv"
)

// BOM is written first so spreadsheet tools detect UTF-8.
const BOM = "\uFEFF"

// ErrNoTransactions is returned when there is nothing to export.
var ErrNoTransactions = errors.New("no transactions to export")

// Row is one exported line.
type Row struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Card        string `csv:"Card"`
	Category    string `csv:"Category"`
	Amount      string `csv:"Amount"`
}

const descriptionColumn = 1

// Options controls the CSV dialect.
type Options struct {
	Delimiter  rune
	IncludeBOM bool
	QuoteAll   bool
}

// DefaultOptions returns a comma-separated dialect with a BOM.
func DefaultOptions() Options {
	return Options{Delimiter: ',', IncludeBOM: true}
}

// Exporter writes resolved transactions as CSV.
type Exporter struct {
	opts   Options
	logger logging.Logger
}

// NewExporter creates an Exporter. A zero delimiter selects a comma.
func NewExporter(opts Options, logger logging.Logger) *Exporter {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &Exporter{opts: opts, logger: logger}
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// NewRow converts a resolved transaction to its exported form.
func NewRow(tx models.ResolvedTransaction) Row {
	return Row{
		Date:        tx.Date,
		Description: newlines.Replace(tx.Description),
		Card:        tx.CardLast4,
		Category:    tx.EffectiveCategory,
		Amount:      tx.Amount.StringFixed(2),
	}
}

// Write writes the header and one row per transaction to w.
func (e *Exporter) Write(w io.Writer, txs []models.ResolvedTransaction) error {
	if len(txs) == 0 {
		return ErrNoTransactions
	}

	if e.opts.IncludeBOM {
		if _, err := io.WriteString(w, BOM); err != nil {
			return fmt.Errorf("error writing BOM: %w", err)
		}
	}

	rows := make([]Row, len(txs))
	for i, tx := range txs {
		rows[i] = NewRow(tx)
	}

	writer := newQuotingWriter(w, e.opts.Delimiter, e.opts.QuoteAll, descriptionColumn)
	if err := gocsv.MarshalCSV(rows, writer); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	e.logger.WithFields(
		logging.Field{Key: logging.FieldCount, Value: len(rows)},
		logging.Field{Key: logging.FieldDelimiter, Value: string(e.opts.Delimiter)},
	).Debug("Transactions exported")
	return nil
}

// WriteFile writes the CSV export to path, creating parent directories.
func (e *Exporter) WriteFile(path string, txs []models.ResolvedTransaction) error {
	if len(txs) == 0 {
		return ErrNoTransactions
	}

	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := e.Write(file, txs); err != nil {
		return err
	}

	e.logger.WithFields(
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
	).Info("Successfully wrote transactions to CSV file")
	return nil
}

// FileName returns the default export file name for a given time.
func FileName(now time.Time) string {
	return fmt.Sprintf("statement_export_%d.csv", now.UnixMilli())
}
