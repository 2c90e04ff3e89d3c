package extraction

import (
	"context"
	"fmt"
	"os"

	"fjacquet/statement-scanner/internal/logging"
)

// StaticGateway answers every extraction with a previously captured response
// read from disk. The document content is ignored.
type StaticGateway struct {
	path   string
	logger logging.Logger
}

// NewStaticGateway creates a StaticGateway reading the response at path.
func NewStaticGateway(path string, logger logging.Logger) *StaticGateway {
	return &StaticGateway{path: path, logger: logger}
}

// Name identifies the gateway in logs.
func (g *StaticGateway) Name() string {
	return "fixture"
}

// Extract decodes the fixture file.
func (g *StaticGateway) Extract(ctx context.Context, doc Document) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(g.path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	g.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: g.path},
		logging.Field{Key: logging.FieldFileName, Value: doc.Name},
	).Debug("Serving extraction from fixture")

	return Decode(string(data))
}
