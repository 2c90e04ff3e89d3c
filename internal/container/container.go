// Package container provides dependency injection for the statement-scanner
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fjacquet/statement-scanner/internal/config"
	"fjacquet/statement-scanner/internal/export"
	"fjacquet/statement-scanner/internal/extraction"
	"fjacquet/statement-scanner/internal/logging"
	"fjacquet/statement-scanner/internal/reconcile"
	"fjacquet/statement-scanner/internal/registry"
	"fjacquet/statement-scanner/internal/report"
	"fjacquet/statement-scanner/internal/rules"
	"fjacquet/statement-scanner/internal/session"
	"fjacquet/statement-scanner/internal/store"

	"github.com/shopspring/decimal"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger    logging.Logger
	config    *config.Config
	settings  store.Repository
	gateway   extraction.Gateway
	exporter  *export.Exporter
	generator *report.Generator
	session   *session.Session
}

// Option customizes container construction.
type Option func(*options)

type options struct {
	logger   logging.Logger
	gateway  extraction.Gateway
	settings store.Repository
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithGateway replaces the extraction gateway selected by ai.client.
func WithGateway(gateway extraction.Gateway) Option {
	return func(o *options) { o.gateway = gateway }
}

// WithSettings replaces the settings file repository.
func WithSettings(settings store.Repository) Option {
	return func(o *options) { o.settings = settings }
}

// NewContainer creates and wires all application dependencies.
//
// A missing API key does not fail construction: the container is still
// usable for rule and settings commands, and uploads report that no gateway
// is configured.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	settingsRepo := o.settings
	if settingsRepo == nil {
		settingsRepo = store.NewSettingsStore(cfg.Settings.File, logging.ForComponent(logger, "settings"))
	}
	settings, err := settingsRepo.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	colored, uncolored := settings.CategoryConfigs()
	categories := registry.New(colored, logging.ForComponent(logger, "registry"))
	for _, name := range uncolored {
		categories.AddCategory(name)
	}
	ruleSet := rules.New(settings.Rules, logging.ForComponent(logger, "rules"))

	for _, orphan := range ruleSet.Orphans(categories.Has) {
		logger.WithFields(
			logging.Field{Key: logging.FieldRuleID, Value: orphan.ID},
			logging.Field{Key: logging.FieldKeyword, Value: orphan.Keyword},
			logging.Field{Key: logging.FieldCategory, Value: orphan.Category},
		).Warn("Rule references an unknown category")
	}

	gateway := o.gateway
	if gateway == nil {
		gateway, err = newGateway(cfg, logging.ForComponent(logger, "extraction"))
		switch {
		case errors.Is(err, extraction.ErrMissingAPIKey):
			logger.WithField(logging.FieldStrategy, cfg.AI.Client).
				Warn("No API key configured, statement extraction disabled")
		case err != nil:
			return nil, err
		}
	}

	exporter := export.NewExporter(export.Options{
		Delimiter:  cfg.DelimiterRune(),
		IncludeBOM: cfg.CSV.IncludeBOM,
		QuoteAll:   cfg.CSV.QuoteAll,
	}, logging.ForComponent(logger, "export"))

	sess := session.New(session.Options{
		Rules:    ruleSet,
		Registry: categories,
		Gateway:  gateway,
		Checker:  reconcile.NewChecker(decimal.NewFromFloat(cfg.Reconciliation.Tolerance)),
		Exporter: exporter,
		Timeout:  time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		Logger:   logging.ForComponent(logger, "session"),
	})

	logger.Info("Container initialized successfully",
		logging.Field{Key: "categories", Value: categories.Len()},
		logging.Field{Key: "rules", Value: ruleSet.Len()},
		logging.Field{Key: "gateway_enabled", Value: gateway != nil})

	return &Container{
		logger:    logger,
		config:    cfg,
		settings:  settingsRepo,
		gateway:   gateway,
		exporter:  exporter,
		generator: report.NewGenerator(logging.ForComponent(logger, "report")),
		session:   sess,
	}, nil
}

func newGateway(cfg *config.Config, logger logging.Logger) (extraction.Gateway, error) {
	ctx := context.Background()
	switch cfg.AI.Client {
	case config.AIClientFixture:
		return extraction.NewStaticGateway(cfg.AI.FixtureFile, logger), nil
	case config.AIClientGenerativeAI:
		gateway, err := extraction.NewGenerativeAIGateway(ctx, cfg.AI.APIKey, cfg.AI.Model, logger)
		if err != nil {
			return nil, err
		}
		return gateway, nil
	default:
		gateway, err := extraction.NewGenAIGateway(ctx, cfg.AI.APIKey, cfg.AI.Model, logger)
		if err != nil {
			return nil, err
		}
		return gateway, nil
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetSettings returns the settings file repository.
func (c *Container) GetSettings() store.Repository {
	return c.settings
}

// GetGateway returns the extraction gateway, or nil when extraction is disabled.
func (c *Container) GetGateway() extraction.Gateway {
	return c.gateway
}

// GetExporter returns the CSV exporter.
func (c *Container) GetExporter() *export.Exporter {
	return c.exporter
}

// GetGenerator returns the summary report generator.
func (c *Container) GetGenerator() *report.Generator {
	return c.generator
}

// GetSession returns the application session.
func (c *Container) GetSession() *session.Session {
	return c.session
}

// Close releases the gateway client when it holds one.
func (c *Container) Close() error {
	if closer, ok := c.gateway.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close gateway: %w", err)
		}
	}
	c.logger.Info("Container closed")
	return nil
}
