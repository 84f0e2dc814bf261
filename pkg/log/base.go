package log

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// core is shared by a root logger and every logger derived from it.
type core struct {
	level      atomic.Int64
	formatter  Formatter
	outputs    []Output
	redactions map[string]struct{}
	writeMu    sync.Mutex
}

func (c *core) enabled(l Level) bool { return Level(c.level.Load()) <= l }

// BaseLogger implements the Logger interface.
type BaseLogger struct {
	core       *core
	slogLogger *slog.Logger
}

func (l *BaseLogger) log(level Level, msg string, fields []Field) {
	if !l.core.enabled(level) {
		return
	}
	l.slogLogger.LogAttrs(context.Background(), toSlogLevel(level), msg, attrsFromFieldSlice(fields)...)
}

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

// With returns a child logger carrying the given fields.
func (l *BaseLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	return &BaseLogger{core: l.core, slogLogger: l.slogLogger.With(attrsToAny(attrsFromFieldSlice(fields))...)}
}

func (l *BaseLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.With(Err(err))
}

func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

func (l *BaseLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}
	if v, ok := ctx.Value(ctxKey(RequestIDKey)).(string); ok && v != "" {
		return l.With(Str(RequestIDKey, v))
	}
	return l
}

func (l *BaseLogger) SetLevel(level Level) { l.core.level.Store(int64(level)) }
func (l *BaseLogger) GetLevel() Level      { return Level(l.core.level.Load()) }

// Slog exposes the underlying slog.Logger for libraries that accept one.
func (l *BaseLogger) Slog() *slog.Logger { return l.slogLogger }
