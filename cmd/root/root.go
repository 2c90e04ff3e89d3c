// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/statement-scanner/internal/config"
	"fjacquet/statement-scanner/internal/container"
	"fjacquet/statement-scanner/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input     string
	Output    string
	Config    string
	LogLevel  string
	LogFormat string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// AppConfig is the configuration loaded before any subcommand runs
	AppConfig *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "statement-scanner",
		Short: "A CLI tool to extract, categorize and export credit-card statement transactions.",
		Long: `statement-scanner extracts the transactions of a credit-card statement PDF with
Gemini, assigns each one a spending category from keyword rules, manual
corrections or the AI label, checks them against the statement total and
exports the result as CSV, JSON or XML. It can also serve the same workflow
over an HTTP API.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to statement-scanner!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv(Log)

			cfg, err := config.InitializeConfigFromFile(SharedFlags.Config)
			if err != nil {
				return err
			}
			if SharedFlags.LogLevel != "" {
				cfg.Log.Level = SharedFlags.LogLevel
			}
			if SharedFlags.LogFormat != "" {
				cfg.Log.Format = SharedFlags.LogFormat
			}

			AppConfig = cfg
			Log = config.ConfigureLoggingFromConfig(cfg)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer == nil {
				return
			}
			if err := appContainer.Close(); err != nil {
				Log.Warnf("Failed to close container: %v", err)
			}
			appContainer = nil
		},
	}

	// SharedFlags holds the flags accessible to all commands
	SharedFlags = CommonFlags{}

	appContainer *container.Container
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Config, "config", "", "Config file (default searches $HOME/.statement-scanner, .statement-scanner and .)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text or json)")
}

// Logger returns the command logger behind the logging interface.
func Logger() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}

// GetContainer wires the application dependencies on first use.
func GetContainer() (*container.Container, error) {
	if appContainer != nil {
		return appContainer, nil
	}
	if AppConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	c, err := container.NewContainer(AppConfig, container.WithLogger(Logger()))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	appContainer = c
	return c, nil
}
