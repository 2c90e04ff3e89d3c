package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldNamesAreUnique(t *testing.T) {
	names := []string{
		FieldFile, FieldFileName, FieldMIMEType, FieldTransactionID, FieldRuleID,
		FieldKeyword, FieldCategory, FieldColor, FieldStrategy, FieldState,
		FieldReason, FieldOperation, FieldStatus, FieldError, FieldDuration,
		FieldCount, FieldModel, FieldDelimiter, FieldInputFile, FieldOutputFile,
		FieldComponent,
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate field name %q", name)
		seen[name] = true
	}
}

func TestForComponent(t *testing.T) {
	logger := NewMockLogger()

	ForComponent(logger, "session").Info("Statement analyzed")

	entries := logger.GetEntries()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Fields, Field{Key: FieldComponent, Value: "session"})
}
