package logger

import "github.com/user/zonecam/pkg/ports"

// NoopLogger discards all messages. It backs --log-level quiet and is the
// default for components constructed without a logger.
type NoopLogger struct{}

// NewNoop creates a new no-op logger.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

func (l *NoopLogger) Debug(msg string, args ...interface{}) {}
func (l *NoopLogger) Info(msg string, args ...interface{})  {}
func (l *NoopLogger) Warn(msg string, args ...interface{})  {}
func (l *NoopLogger) Error(msg string, args ...interface{}) {}

// WithComponent returns the same no-op logger.
func (l *NoopLogger) WithComponent(component string) ports.Logger {
	return l
}

// Or returns log, or a NoopLogger when log is nil.
func Or(log ports.Logger) ports.Logger {
	if log == nil {
		return NewNoop()
	}
	return log
}
