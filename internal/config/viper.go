// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// AI client names accepted by ai.client.
const (
	AIClientGenAI        = "genai"
	AIClientGenerativeAI = "generative-ai"
	AIClientFixture      = "fixture"
)

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CSVConfig holds the export dialect.
type CSVConfig struct {
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`
	IncludeBOM bool   `mapstructure:"include_bom" yaml:"include_bom"`
	QuoteAll   bool   `mapstructure:"quote_all" yaml:"quote_all"`
}

// AIConfig holds extraction service settings.
type AIConfig struct {
	Client         string `mapstructure:"client" yaml:"client"`
	Model          string `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	FixtureFile    string `mapstructure:"fixture_file" yaml:"fixture_file"`
	APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
}

// SettingsConfig locates the categories and rules seed file.
type SettingsConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address     string `mapstructure:"address" yaml:"address"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// ReconciliationConfig holds the statement total check settings.
type ReconciliationConfig struct {
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`
}

// Config represents the complete application configuration
type Config struct {
	Log            LogConfig            `mapstructure:"log" yaml:"log"`
	CSV            CSVConfig            `mapstructure:"csv" yaml:"csv"`
	AI             AIConfig             `mapstructure:"ai" yaml:"ai"`
	Settings       SettingsConfig       `mapstructure:"settings" yaml:"settings"`
	Server         ServerConfig         `mapstructure:"server" yaml:"server"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation" yaml:"reconciliation"`
}

// DelimiterRune returns the CSV delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	r := []rune(c.CSV.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile loads configuration, reading the given file
// instead of searching the standard locations when file is not empty.
func InitializeConfigFromFile(file string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.statement-scanner")
		v.AddConfigPath(".statement-scanner")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("SCANNER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless explicitly given)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			if file != "" {
				return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
			}
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. The API key comes from the unprefixed variables
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY", "API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// CSV defaults
	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.include_bom", true)
	v.SetDefault("csv.quote_all", false)

	// AI defaults
	v.SetDefault("ai.client", AIClientGenAI)
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.timeout_seconds", 120)
	v.SetDefault("ai.fixture_file", "")

	// Settings defaults
	v.SetDefault("settings.file", "settings.yaml")

	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.max_upload_mb", 20)

	// Reconciliation defaults
	v.SetDefault("reconciliation.tolerance", 1.0)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate CSV delimiter
	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	// Validate AI configuration
	switch config.AI.Client {
	case AIClientGenAI, AIClientGenerativeAI:
	case AIClientFixture:
		if config.AI.FixtureFile == "" {
			return fmt.Errorf("ai.fixture_file required when ai.client is %s", AIClientFixture)
		}
	default:
		return fmt.Errorf("invalid ai.client: %s (must be '%s', '%s' or '%s')",
			config.AI.Client, AIClientGenAI, AIClientGenerativeAI, AIClientFixture)
	}

	if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 600 {
		return fmt.Errorf("ai.timeout_seconds must be between 1 and 600, got: %d", config.AI.TimeoutSeconds)
	}

	if config.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be positive, got: %d", config.Server.MaxUploadMB)
	}

	if config.Reconciliation.Tolerance <= 0 {
		return fmt.Errorf("reconciliation.tolerance must be positive, got: %f", config.Reconciliation.Tolerance)
	}

	return nil
}

// ConfigureLoggingFromConfig configures a logrus logger from the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
