// Package scan implements the one-shot statement extraction command.
package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"fjacquet/statement-scanner/cmd/root"
	"fjacquet/statement-scanner/internal/export"
	"fjacquet/statement-scanner/internal/extraction"
	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/models"
	"fjacquet/statement-scanner/internal/report"
	"fjacquet/statement-scanner/internal/session"
	"fjacquet/statement-scanner/internal/validation"

	"github.com/spf13/cobra"
)

var (
	search string
	format string
)

// Cmd represents the scan command
var Cmd = &cobra.Command{
	Use:   "scan",
	Short: "Extract, categorize and export one statement PDF",
	Long: `Extract the transactions of a statement PDF, categorize them and write them out.

The csv format writes the transactions (default file statement_export_<millis>.csv).
The json and xml formats write the statement summary with the category breakdown
and the reconciliation against the statement total (default stdout).`,
	Example: `  statement-scanner scan -i statement.pdf
  statement-scanner scan -i statement.pdf -o out.csv --search costco
  statement-scanner scan -i statement.pdf --format json`,
	RunE: scanFunc,
}

func init() {
	Cmd.Flags().StringVar(&search, "search", "", "Only keep transactions matching this text")
	Cmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv, json or xml")
}

func scanFunc(cmd *cobra.Command, args []string) error {
	input := root.SharedFlags.Input
	if input == "" {
		return fmt.Errorf("input file is required (-i)")
	}
	if err := validation.IsValidInputFile(input); err != nil {
		return err
	}
	if err := validation.IsValidOutputFormat(format); err != nil {
		return err
	}

	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	log := c.GetLogger()

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("error reading input file: %w", err)
	}

	sess := c.GetSession()
	doc := extraction.Document{
		Name:     filepath.Base(input),
		MIMEType: validation.DetectMIMEType(input, "", data),
		Data:     data,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := sess.Upload(ctx, doc); err != nil {
		return err
	}

	rec := sess.Reconciliation()
	recLog := log.WithFields(
		logging.Field{Key: logging.FieldReason, Value: rec.Reason},
		logging.Field{Key: "computed_total", Value: rec.ComputedTotal.StringFixed(2)},
	)
	if rec.Reconciled {
		recLog.Info("Statement total reconciled")
	} else {
		recLog.Warn("Statement total not reconciled")
	}

	switch format {
	case "csv":
		return writeCSV(sess, c.GetExporter(), log)
	default:
		return writeSummary(cmd.OutOrStdout(), sess.Summary(search), c.GetGenerator())
	}
}

func writeCSV(sess *session.Session, exporter *export.Exporter, log logging.Logger) error {
	output := root.SharedFlags.Output
	if output == "" {
		output = export.FileName(time.Now())
	}

	txs := sess.Transactions(search)
	if err := exporter.WriteFile(output, txs); err != nil {
		return err
	}

	log.WithFields(
		logging.Field{Key: logging.FieldOutputFile, Value: output},
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
	).Info("Transactions exported")
	return nil
}

func writeSummary(stdout io.Writer, summary *report.Summary, generator *report.Generator) error {
	out, err := generator.Generate(summary, format)
	if err != nil {
		return err
	}

	if output := root.SharedFlags.Output; output != "" {
		if err := os.WriteFile(output, out, models.PermissionReportFile); err != nil {
			return fmt.Errorf("error writing summary: %w", err)
		}
		return nil
	}
	_, err = stdout.Write(out)
	return err
}
