// Package store loads and saves the settings file that seeds the category
// registry and the keyword rules.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/models"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// DefaultSettingsFile is the settings file name used when none is configured.
const DefaultSettingsFile = "settings.yaml"

// CategorySetting is a category as written in the settings file. Color is a
// palette id; an empty or unknown id lets the registry pick one.
type CategorySetting struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color,omitempty"`
}

// Settings is the content of the settings file.
type Settings struct {
	Categories []CategorySetting    `yaml:"categories"`
	Rules      []models.KeywordRule `yaml:"rules"`
}

// DefaultSettings returns the built-in categories and rules.
func DefaultSettings() *Settings {
	configs := models.DefaultCategoryConfigs()
	categories := make([]CategorySetting, len(configs))
	for i, c := range configs {
		categories[i] = CategorySetting{Name: c.Name, Color: c.Color.ID}
	}
	return &Settings{Categories: categories, Rules: models.DefaultRules()}
}

// CategoryConfigs splits the settings categories into those with a valid
// palette color and the names still needing one.
func (s *Settings) CategoryConfigs() (colored []models.CategoryConfig, uncolored []string) {
	for _, c := range s.Categories {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		color, ok := models.PaletteColor(c.Color)
		if !ok {
			uncolored = append(uncolored, c.Name)
			continue
		}
		colored = append(colored, models.CategoryConfig{Name: c.Name, Color: color})
	}
	return colored, uncolored
}

// Repository loads and saves settings.
type Repository interface {
	Load() (*Settings, error)
	Save(settings *Settings) error
}

// SettingsStore reads and writes the YAML settings file.
type SettingsStore struct {
	File   string
	logger logging.Logger
}

// NewSettingsStore creates a store for the given settings file.
func NewSettingsStore(file string, logger logging.Logger) *SettingsStore {
	if file == "" {
		file = DefaultSettingsFile
	}
	return &SettingsStore{File: file, logger: logger}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *SettingsStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".statement-scanner", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// Load reads the settings file. A missing file yields the default settings.
// Sections absent from the file fall back to their defaults.
func (s *SettingsStore) Load() (*Settings, error) {
	path, err := s.FindConfigFile(s.File)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.WithField(logging.FieldFile, s.File).Debug("Settings file not found, using defaults")
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading settings file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("error parsing settings file %s: %w", path, err)
	}

	defaults := DefaultSettings()
	if settings.Categories == nil {
		settings.Categories = defaults.Categories
	}
	if settings.Rules == nil {
		settings.Rules = defaults.Rules
	}

	s.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: "categories", Value: len(settings.Categories)},
		logging.Field{Key: "rules", Value: len(settings.Rules)},
	).Debug("Loaded settings")
	return &settings, nil
}

// Save writes settings to the settings file, creating parent directories.
func (s *SettingsStore) Save(settings *Settings) error {
	path := s.File
	if found, err := s.FindConfigFile(s.File); err == nil {
		path = found
	}

	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings: %w", err)
	}
	if err := os.WriteFile(path, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing settings: %w", err)
	}

	s.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: "rules", Value: len(settings.Rules)},
	).Debug("Saved settings")
	return nil
}

// ReadRulesCSV reads keyword rules from a CSV file with a header row of
// keyword and category, and optionally id. Rows with a blank keyword are
// skipped.
func ReadRulesCSV(path string, logger logging.Logger) ([]models.KeywordRule, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	var rows []models.KeywordRule
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	rules := make([]models.KeywordRule, 0, len(rows))
	for i, r := range rows {
		r.Keyword = strings.TrimSpace(r.Keyword)
		r.Category = strings.TrimSpace(r.Category)
		if r.Keyword == "" {
			logger.WithField("row", i+2).Warn("Skipping rule with empty keyword")
			continue
		}
		rules = append(rules, r)
	}

	logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(rules)},
	).Info("Read rules from CSV")
	return rules, nil
}
