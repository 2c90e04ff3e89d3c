// Package report renders statement summaries.
package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"

	"fjacquet/statement-scanner/internal/logging"
)

// Generator renders summaries in various formats.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a new instance of Generator.
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{logger: logger}
}

// Generate renders a summary in the specified format (json or xml).
func (g *Generator) Generate(summary *Summary, format string) ([]byte, error) {
	switch format {
	case "json":
		return g.generateJSON(summary)
	case "xml":
		return g.generateXML(summary)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// ContentType returns the media type of a rendered format.
func ContentType(format string) string {
	if format == "xml" {
		return "application/xml"
	}
	return "application/json"
}

func (g *Generator) generateJSON(summary *Summary) ([]byte, error) {
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return out, nil
}

func (g *Generator) generateXML(summary *Summary) ([]byte, error) {
	out, err := xml.MarshalIndent(summary, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal XML report")
		return nil, fmt.Errorf("failed to marshal XML report: %w", err)
	}
	return []byte(xml.Header + string(out)), nil
}
