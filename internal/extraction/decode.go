package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMissingTransactions is returned when a response has no transaction array.
var ErrMissingTransactions = errors.New("response has no transactions array")

// ErrEmptyResponse is returned when the service answered with no text.
var ErrEmptyResponse = errors.New("empty response from extraction service")

// ErrMalformedResponse is returned when the response text is not valid JSON
// for the expected shape.
var ErrMalformedResponse = errors.New("malformed extraction response")

type wireResult struct {
	Transactions   *[]RawTransaction `json:"transactions"`
	StartDate      string            `json:"startDate"`
	EndDate        string            `json:"endDate"`
	StatementTotal *decimal.Decimal  `json:"statementTotal"`
}

// Decode parses the JSON text returned by the extraction service.
func Decode(raw string) (*Result, error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, ErrEmptyResponse
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(clean), &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if wire.Transactions == nil {
		return nil, ErrMissingTransactions
	}

	return &Result{
		Transactions:   *wire.Transactions,
		StartDate:      wire.StartDate,
		EndDate:        wire.EndDate,
		StatementTotal: wire.StatementTotal,
	}, nil
}

// cleanModelJSON strips Markdown fences and any text around the JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
