package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusAdapter implements Logger on top of a logrus entry.
type LogrusAdapter struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// NewLogrusAdapter creates a Logger writing to stderr. level is any logrus
// level name, case-insensitive; format is "json" or "text".
func NewLogrusAdapter(level, format string) Logger {
	return NewLogrusAdapterWithOutput(level, format, nil)
}

// NewLogrusAdapterWithOutput is NewLogrusAdapter writing to out instead of stderr.
// A nil writer keeps the logrus default.
func NewLogrusAdapterWithOutput(level, format string, out io.Writer) Logger {
	logger := logrus.New()
	if out != nil {
		logger.SetOutput(out)
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return NewLogrusAdapterFromLogger(logger)
}

// NewLogrusAdapterFromLogger creates a LogrusAdapter from an existing logrus.Logger.
func NewLogrusAdapterFromLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogrusAdapter{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

// NewDiscardLogger returns a logger that drops everything. Used by commands and
// tests that do not care about log output.
func NewDiscardLogger() Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLogrusAdapterFromLogger(logger)
}

func (l *LogrusAdapter) derive(entry *logrus.Entry) Logger {
	return &LogrusAdapter{logger: l.logger, entry: entry}
}

func (l *LogrusAdapter) log(level logrus.Level, msg string, fields []Field) {
	if !l.logger.IsLevelEnabled(level) {
		return
	}
	entry := l.entry
	if len(fields) > 0 {
		entry = entry.WithFields(convertFields(fields))
	}
	entry.Log(level, msg)
}

// Debug logs at debug level.
func (l *LogrusAdapter) Debug(msg string, fields ...Field) { l.log(logrus.DebugLevel, msg, fields) }

// Info logs at info level.
func (l *LogrusAdapter) Info(msg string, fields ...Field) { l.log(logrus.InfoLevel, msg, fields) }

// Warn logs at warning level.
func (l *LogrusAdapter) Warn(msg string, fields ...Field) { l.log(logrus.WarnLevel, msg, fields) }

// Error logs at error level.
func (l *LogrusAdapter) Error(msg string, fields ...Field) { l.log(logrus.ErrorLevel, msg, fields) }

// WithError attaches err under logrus' error key.
func (l *LogrusAdapter) WithError(err error) Logger {
	return l.derive(l.entry.WithError(err))
}

// WithField attaches one field.
func (l *LogrusAdapter) WithField(key string, value interface{}) Logger {
	return l.derive(l.entry.WithField(key, value))
}

// WithFields attaches several fields.
func (l *LogrusAdapter) WithFields(fields ...Field) Logger {
	return l.derive(l.entry.WithFields(convertFields(fields)))
}

// Level reports the configured level of the underlying logrus logger.
func (l *LogrusAdapter) Level() logrus.Level {
	return l.logger.GetLevel()
}

func convertFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, field := range fields {
		out[field.Key] = field.Value
	}
	return out
}
