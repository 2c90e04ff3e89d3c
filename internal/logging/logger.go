// Package logging is the structured logging facade used by every scanner
// component. Components take a Logger in their constructor; the concrete
// backend is logrus.
package logging

// Logger writes leveled, structured entries. The With* methods return a
// derived logger and never modify the receiver.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	WithError(err error) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields ...Field) Logger
}

// Field is a key-value pair attached to an entry. Keys should come from the
// Field* constants.
type Field struct {
	Key   string
	Value interface{}
}

// ForComponent tags every entry of logger with the component name, for
// example "session" or "api".
func ForComponent(logger Logger, name string) Logger {
	return logger.WithField(FieldComponent, name)
}
