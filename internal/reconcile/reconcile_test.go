package reconcile

import (
	"testing"

	"fjacquet/statement-scanner/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(amounts ...string) []models.ResolvedTransaction {
	out := make([]models.ResolvedTransaction, len(amounts))
	for i, a := range amounts {
		out[i] = models.ResolvedTransaction{
			Transaction: models.Transaction{Amount: decimal.RequireFromString(a)},
		}
	}
	return out
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestExpenseTotal_IgnoresCredits(t *testing.T) {
	total := ExpenseTotal(resolved("100.00", "-50.00", "20.25", "0"))
	assert.True(t, total.Equal(decimal.RequireFromString("120.25")), "got %s", total)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		amounts    []string
		reported   *decimal.Decimal
		reconciled bool
		reason     string
	}{
		{"exact match", []string{"100", "50"}, dec("150"), true, ReasonMatched},
		{"within tolerance", []string{"100", "50"}, dec("150.99"), true, ReasonMatched},
		{"difference equal to tolerance", []string{"100", "50"}, dec("151"), false, ReasonMismatch},
		{"credits excluded from total", []string{"100", "-100", "50"}, dec("150"), true, ReasonMatched},
		{"credits would break the match", []string{"100", "-100", "50"}, dec("50"), false, ReasonMismatch},
		{"reported below computed", []string{"100"}, dec("98.5"), false, ReasonMismatch},
		{"no reported total", []string{"100"}, nil, false, ReasonNoReported},
		{"empty statement with zero total", nil, dec("0"), true, ReasonMatched},
	}

	checker := NewChecker(decimal.Zero)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := checker.Check(resolved(tt.amounts...), tt.reported)
			assert.Equal(t, tt.reconciled, res.Reconciled)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, tt.reconciled, checker.IsReconciled(resolved(tt.amounts...), tt.reported))
		})
	}
}

func TestCheck_Difference(t *testing.T) {
	res := NewChecker(decimal.Zero).Check(resolved("100", "25.50"), dec("120"))
	require.NotNil(t, res.Difference)
	assert.True(t, res.Difference.Equal(decimal.RequireFromString("5.5")))
	assert.True(t, res.ComputedTotal.Equal(decimal.RequireFromString("125.5")))
}

func TestNewChecker_Tolerance(t *testing.T) {
	assert.True(t, NewChecker(decimal.Zero).Tolerance().Equal(DefaultTolerance))
	assert.True(t, NewChecker(decimal.NewFromInt(-3)).Tolerance().Equal(DefaultTolerance))

	strict := NewChecker(decimal.RequireFromString("0.01"))
	assert.False(t, strict.IsReconciled(resolved("10.00"), dec("10.05")))
	assert.True(t, strict.IsReconciled(resolved("10.00"), dec("10.005")))
}
