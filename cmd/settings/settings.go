// Package settings implements the settings file commands.
package settings

import (
	"fmt"
	"io"
	"os"

	"fjacquet/statement-scanner/cmd/root"
	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/store"

	"github.com/spf13/cobra"
)

var force bool

// Cmd represents the settings command
var Cmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage the categories and rules settings file",
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default categories and rules to a settings file",
	Long: `Write the built-in categories, with their colors, and the default keyword
rules to a YAML settings file. The file is read at startup to seed the
category list and the rules. Use -o to choose the path (default settings.file).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := root.SharedFlags.Output
		if path == "" && root.AppConfig != nil {
			path = root.AppConfig.Settings.File
		}
		return Init(cmd.OutOrStdout(), path, force, root.Logger())
	},
}

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	Cmd.AddCommand(initCmd)
}

// Init writes the default settings to path. An existing file is kept unless
// overwrite is set.
func Init(w io.Writer, path string, overwrite bool, log logging.Logger) error {
	if path == "" {
		path = store.DefaultSettingsFile
	}
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("settings file %s already exists (use --force to overwrite)", path)
	}

	if err := store.NewSettingsStore(path, log).Save(store.DefaultSettings()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Wrote default settings to %s\n", path)
	return err
}
