// Package extraction turns a statement document into raw transactions using
// an external extraction service.
package extraction

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway extracts transactions from a statement document.
// Implementations make a single attempt; failures are returned, not retried.
type Gateway interface {
	Extract(ctx context.Context, doc Document) (*Result, error)
	Name() string
}

// Document is an uploaded statement.
type Document struct {
	Name     string
	MIMEType string
	Data     []byte

	// Categories lists the category names the service should choose from.
	// When empty the default category names are used.
	Categories []string
}

// RawTransaction is a transaction as reported by the extraction service.
type RawTransaction struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	CardLast4   string          `json:"cardLast4,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}

// Result is a decoded extraction response.
type Result struct {
	Transactions   []RawTransaction `json:"transactions"`
	StartDate      string           `json:"startDate"`
	EndDate        string           `json:"endDate"`
	StatementTotal *decimal.Decimal `json:"statementTotal,omitempty"`
}
