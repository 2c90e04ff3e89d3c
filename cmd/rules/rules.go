// Package rules implements the keyword rule commands.
package rules

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fjacquet/statement-scanner/cmd/root"
	"fjacquet/statement-scanner/internal/categorizer"
	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/models"
	ruleset "fjacquet/statement-scanner/internal/rules"
	"fjacquet/statement-scanner/internal/store"

	"github.com/spf13/cobra"
)

var csvFile string

// Cmd represents the rules command
var Cmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and import keyword categorization rules",
	Long: `Keyword rules map a case-insensitive substring of the transaction description
to a category. The first matching rule wins; manual corrections override rules.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the keyword rules in priority order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		sess := c.GetSession()
		return List(cmd.OutOrStdout(), sess.Rules(), sess.OrphanRules())
	},
}

var testCmd = &cobra.Command{
	Use:   "test <description>",
	Short: "Show which rule categorizes a description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		Explain(cmd.OutOrStdout(), strings.Join(args, " "), c.GetSession().Rules())
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Append rules from a CSV file (keyword,category) to the settings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		added, err := Import(csvFile, c.GetSettings(), c.GetLogger())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rules\n", added)
		return err
	},
}

func init() {
	importCmd.Flags().StringVar(&csvFile, "csv", "", "CSV file with keyword and category columns")
	_ = importCmd.MarkFlagRequired("csv")

	Cmd.AddCommand(listCmd, testCmd, importCmd)
}

// List prints the rules as a table, marking rules whose category is unknown.
func List(w io.Writer, all, orphans []models.KeywordRule) error {
	orphanIDs := make(map[string]bool, len(orphans))
	for _, r := range orphans {
		orphanIDs[r.ID] = true
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKEYWORD\tCATEGORY\tID")
	for i, r := range all {
		category := r.Category
		if orphanIDs[r.ID] {
			category += " (unknown category)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, r.Keyword, category, r.ID)
	}
	return tw.Flush()
}

// Explain prints the rule deciding the category of description, if any.
func Explain(w io.Writer, description string, all []models.KeywordRule) {
	rule, ok := categorizer.MatchingRule(description, all)
	if !ok {
		fmt.Fprintf(w, "No rule matches %q; the AI category is kept\n", description)
		return
	}
	fmt.Fprintf(w, "%q -> %s (rule %s, keyword %q)\n", description, rule.Category, rule.ID, rule.Keyword)
}

// Import appends the rules of a CSV file to the settings and saves them.
// It returns the number of rules added.
func Import(path string, repo store.Repository, log logging.Logger) (int, error) {
	imported, err := store.ReadRulesCSV(path, log)
	if err != nil {
		return 0, err
	}

	settings, err := repo.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}

	set := ruleset.New(settings.Rules, log)
	added := 0
	for _, r := range imported {
		if _, err := set.Add(r); err != nil {
			log.WithError(err).WithField(logging.FieldKeyword, r.Keyword).Warn("Skipping invalid rule")
			continue
		}
		added++
	}

	settings.Rules = set.List()
	if err := repo.Save(settings); err != nil {
		return 0, fmt.Errorf("failed to save settings: %w", err)
	}
	return added, nil
}
