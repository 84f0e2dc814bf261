package log

import (
	"context"
	"log/slog"
	"time"
)

// Level represents the severity level of a log message.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Fields is a map of field names to values.
type Fields map[string]any

// Context keys understood by WithContext.
const (
	RequestIDKey = "request_id"
	ComponentKey = "component"
	OperationKey = "operation"
)

type ctxKey string

// ContextWithRequestID stores a request id for later extraction by WithContext.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey(RequestIDKey), requestID)
}

// Entry represents a single log entry handed to formatters and outputs.
type Entry struct {
	Level     Level
	Message   string
	Fields    Fields
	Timestamp time.Time
	Caller    string
}

// Logger defines the core logging interface for xstream components.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With adds fields to every subsequent record.
	With(fields ...Field) Logger
	// WithError attaches err under the "error" key.
	WithError(err error) Logger
	// WithComponent tags logs with a component name.
	WithComponent(component string) Logger
	// WithContext adds request-scoped values (request id) from ctx.
	WithContext(ctx context.Context) Logger

	// SetLevel changes the minimum level; it applies to every logger derived
	// from the same root.
	SetLevel(level Level)
	GetLevel() Level
}

// Formatter defines the interface for formatting log entries.
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// Output defines the interface for log outputs.
type Output interface {
	Write(entry *Entry, formatted []byte) error
	Close() error
}

// LoggerOption is a function that configures a logger.
type LoggerOption func(*BaseLogger)

// NewLogger creates a new logger with the given options.
func NewLogger(options ...LoggerOption) Logger {
	logger := &BaseLogger{
		core: &core{
			formatter: &JSONFormatter{},
		},
	}
	logger.core.level.Store(int64(InfoLevel))

	for _, option := range options {
		option(logger)
	}

	if len(logger.core.outputs) == 0 {
		logger.core.outputs = append(logger.core.outputs, NewConsoleOutput())
	}

	logger.slogLogger = slog.New(newBridgeHandler(logger.core))
	return logger
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) LoggerOption {
	return func(l *BaseLogger) { l.core.level.Store(int64(level)) }
}

// WithFormatter sets the log formatter.
func WithFormatter(formatter Formatter) LoggerOption {
	return func(l *BaseLogger) { l.core.formatter = formatter }
}

// WithOutput adds an output to the logger.
func WithOutput(output Output) LoggerOption {
	return func(l *BaseLogger) { l.core.outputs = append(l.core.outputs, output) }
}

// withRedactions replaces the values of the given keys with "[REDACTED]".
func withRedactions(keys ...string) LoggerOption {
	return func(l *BaseLogger) {
		if len(keys) == 0 {
			return
		}
		l.core.redactions = make(map[string]struct{}, len(keys))
		for _, k := range keys {
			l.core.redactions[k] = struct{}{}
		}
	}
}
