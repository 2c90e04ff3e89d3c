package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{
			name:        "debug level with text format",
			level:       "debug",
			format:      "text",
			expectLevel: logrus.DebugLevel,
		},
		{
			name:        "info level with json format",
			level:       "info",
			format:      "json",
			expectLevel: logrus.InfoLevel,
		},
		{
			name:        "upper case level is accepted",
			level:       "WARN",
			format:      "text",
			expectLevel: logrus.WarnLevel,
		},
		{
			name:        "invalid level defaults to info",
			level:       "invalid",
			format:      "text",
			expectLevel: logrus.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogrusAdapterWithOutput(tt.level, tt.format, &buf)
			require.NotNil(t, logger)

			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok, "logger should be a LogrusAdapter")
			assert.Equal(t, tt.expectLevel, adapter.Level())

			if tt.format == "json" {
				_, ok := adapter.logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok, "formatter should be JSONFormatter")
			} else {
				_, ok := adapter.logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok, "formatter should be TextFormatter")
			}
		})
	}
}

func TestNewLogrusAdapterFromLogger(t *testing.T) {
	t.Run("with existing logger", func(t *testing.T) {
		existingLogger := logrus.New()
		existingLogger.SetLevel(logrus.DebugLevel)

		logger := NewLogrusAdapterFromLogger(existingLogger)
		adapter, ok := logger.(*LogrusAdapter)
		require.True(t, ok)
		assert.Equal(t, existingLogger, adapter.logger)
	})

	t.Run("with nil logger creates new one", func(t *testing.T) {
		logger := NewLogrusAdapterFromLogger(nil)
		adapter, ok := logger.(*LogrusAdapter)
		require.True(t, ok)
		assert.NotNil(t, adapter.logger)
	})
}

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	logrusLogger := logrus.New()
	var buf bytes.Buffer
	logrusLogger.SetOutput(&buf)
	logrusLogger.SetLevel(level)
	logrusLogger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return NewLogrusAdapterFromLogger(logrusLogger), &buf
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.WarnLevel)

	logger.Info("hidden message")
	logger.Warn("visible message", Field{Key: FieldRuleID, Value: "r-1"})

	output := buf.String()
	assert.NotContains(t, output, "hidden message")
	assert.Contains(t, output, "visible message")
	assert.Contains(t, output, "rule_id=r-1")
}

func TestLogrusAdapter_ChainedCalls(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)
	testErr := errors.New("gateway unavailable")

	logger.
		WithField(FieldFileName, "statement.pdf").
		WithFields(Field{Key: FieldState, Value: "ERROR"}).
		WithError(testErr).
		Error("extraction failed")

	output := buf.String()
	assert.Contains(t, output, "extraction failed")
	assert.Contains(t, output, "statement.pdf")
	assert.Contains(t, output, "state=ERROR")
	assert.Contains(t, output, "gateway unavailable")
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()
	require.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.WithField("k", "v").Info("dropped")
	})
}

func TestConvertFields(t *testing.T) {
	fields := []Field{
		{Key: "key1", Value: "value1"},
		{Key: "key2", Value: 42},
		{Key: "key3", Value: true},
	}

	logrusFields := convertFields(fields)

	assert.Len(t, logrusFields, 3)
	assert.Equal(t, "value1", logrusFields["key1"])
	assert.Equal(t, 42, logrusFields["key2"])
	assert.Equal(t, true, logrusFields["key3"])
	assert.Len(t, convertFields(nil), 0)
}

func TestMockLogger_DerivedLoggersShareEntries(t *testing.T) {
	mock := NewMockLogger()
	derived := mock.WithField(FieldCategory, "Gas").WithError(errors.New("boom"))

	derived.Warn("derived warning")
	mock.Info("root info")

	entries := mock.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0].Level)
	assert.Equal(t, []Field{{Key: FieldCategory, Value: "Gas"}}, entries[0].Fields)
	assert.EqualError(t, entries[0].Error, "boom")
	assert.True(t, mock.HasEntry("INFO", "root info"))
	assert.Len(t, mock.GetEntriesByLevel("WARN"), 1)

	mock.Clear()
	assert.Empty(t, mock.GetEntries())
}

func TestMockLogger_ZeroValueUsable(t *testing.T) {
	var mock MockLogger
	mock.WithField("a", 1).Debug("debug")
	assert.True(t, mock.HasEntry("DEBUG", "debug"))
}

func TestLogrusAdapter_ImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
