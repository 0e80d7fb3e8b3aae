package log

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/ensemble/pkg/errors"
)

// ZerologProvider is the default LoggerProvider. Loggers it hands out resolve
// the provider's current output and level on every record, so SetLevel and
// SetOutput also affect loggers created earlier.
type ZerologProvider struct {
	mu    sync.RWMutex
	base  zerolog.Logger
	level Level
}

// NewZerologProvider creates a provider writing JSON records to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{
		base:  zerolog.New(w).With().Timestamp().Logger(),
		level: level,
	}
}

var defaultProvider = NewZerologProvider(os.Stderr, LevelInfo)

// GetLogger returns the default logger instance.
func (p *ZerologProvider) GetLogger() Logger {
	return &zerologLogger{p: p}
}

// GetLoggerWithName returns a logger tagged with the given component name.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{p: p, fields: []any{ComponentKey, name}}
}

// SetLevel sets the minimum log level.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

// SetOutput replaces the destination of all records.
func (p *ZerologProvider) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = zerolog.New(w).With().Timestamp().Logger()
}

func (p *ZerologProvider) snapshot() (zerolog.Logger, Level) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.base, p.level
}

// GetLogger returns a logger from the default provider.
func GetLogger() Logger { return defaultProvider.GetLogger() }

// GetLoggerWithName returns a named logger from the default provider.
func GetLoggerWithName(name string) Logger { return defaultProvider.GetLoggerWithName(name) }

// SetLevel sets the level of the default provider.
func SetLevel(level Level) { defaultProvider.SetLevel(level) }

// SetOutput sets the output of the default provider.
func SetOutput(w io.Writer) { defaultProvider.SetOutput(w) }

// BridgeWarnings routes errors.Warn through the default provider so that
// degenerate-metric warnings become structured WARN records.
func BridgeWarnings() {
	logger := GetLoggerWithName("warnings")
	errors.SetZerologWarnFunc(func(w error) {
		logger.Warn(w.Error(), w)
	})
}

type zerologLogger struct {
	p      *ZerologProvider
	fields []any
}

func (l *zerologLogger) Debug(msg string, fields ...any) { l.emit(LevelDebug, msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...any)  { l.emit(LevelInfo, msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...any)  { l.emit(LevelWarn, msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...any) { l.emit(LevelError, msg, fields) }

func (l *zerologLogger) With(fields ...any) Logger {
	merged := make([]any, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &zerologLogger{p: l.p, fields: merged}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	_, min := l.p.snapshot()
	return level >= min
}

func (l *zerologLogger) emit(level Level, msg string, fields []any) {
	base, min := l.p.snapshot()
	if level < min {
		return
	}
	ev := base.WithLevel(toZerologLevel(level))
	if ev == nil {
		return
	}
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			ev = ev.Err(err)
			var m zerolog.LogObjectMarshaler
			if errors.As(err, &m) {
				ev = ev.Object("detail", m)
			}
			fields = fields[1:]
		}
	}
	if len(l.fields) > 0 {
		ev = ev.Fields(l.fields)
	}
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
