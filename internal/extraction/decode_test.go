package extraction

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResponse = `{
  "transactions": [
    {"date": "Jan. 10", "description": "ESSO 123", "cardLast4": "2665", "amount": 45.5, "category": "Gas"},
    {"date": "Jan. 12", "description": "PAYMENT", "amount": -100, "category": "Other"}
  ],
  "startDate": "Dec. 26",
  "endDate": "Jan. 19",
  "statementTotal": 45.5
}`

func TestDecode(t *testing.T) {
	res, err := Decode(validResponse)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)

	first := res.Transactions[0]
	assert.Equal(t, "Jan. 10", first.Date)
	assert.Equal(t, "2665", first.CardLast4)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("45.5")))
	assert.Empty(t, res.Transactions[1].CardLast4)
	assert.True(t, res.Transactions[1].Amount.IsNegative())

	assert.Equal(t, "Dec. 26", res.StartDate)
	assert.Equal(t, "Jan. 19", res.EndDate)
	require.NotNil(t, res.StatementTotal)
	assert.True(t, res.StatementTotal.Equal(decimal.RequireFromString("45.5")))
}

func TestDecode_Variants(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantErr   error
		wantCount int
		hasTotal  bool
	}{
		{
			name:      "markdown fenced",
			raw:       "```json\n" + validResponse + "\n```",
			wantCount: 2,
			hasTotal:  true,
		},
		{
			name:      "leading prose",
			raw:       "Here is the data:\n" + validResponse,
			wantCount: 2,
			hasTotal:  true,
		},
		{
			name:      "missing total",
			raw:       `{"transactions": [], "startDate": "a", "endDate": "b"}`,
			wantCount: 0,
		},
		{
			name:      "null total",
			raw:       `{"transactions": [], "statementTotal": null}`,
			wantCount: 0,
		},
		{
			name:    "missing transactions",
			raw:     `{"startDate": "a", "endDate": "b"}`,
			wantErr: ErrMissingTransactions,
		},
		{
			name:    "null transactions",
			raw:     `{"transactions": null}`,
			wantErr: ErrMissingTransactions,
		},
		{
			name:    "empty",
			raw:     "   ",
			wantErr: ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Decode(tt.raw)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Len(t, res.Transactions, tt.wantCount)
			assert.Equal(t, tt.hasTotal, res.StatementTotal != nil)
		})
	}
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode(`{"transactions": [`)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = Decode(`{"transactions": "nope"}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestCleanModelJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanModelJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanModelJSON("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, cleanModelJSON(`  {"a":1}  `))
	assert.Equal(t, "```", cleanModelJSON("```"))
}
