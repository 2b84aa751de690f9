// Package obslog provides the structured logging wrapper used across
// tsflow's cmd/ entry points and the engine's LifecycleObserver
// implementations: a thin layer over log/slog with a small Level enum,
// a text-or-JSON format choice (always written to stderr), and a Service attribute stamped onto
// every line.
package obslog

import (
	"log/slog"
	"os"
)

// Level mirrors slog's severity ordering without exposing slog types at
// call sites that only need to configure a minimum level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config controls a Logger's format, minimum level, and Service
// attribute; output always goes to stderr. A zero-value Config logs
// Debug and above as text.
type Config struct {
	Level   Level
	JSON    bool
	Service string
}

// Logger wraps a slog.Logger with the Service attribute pre-applied.
type Logger struct {
	slog *slog.Logger
}

// New builds a Logger writing to stderr per cfg.
func New(cfg Config) *Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level.slogLevel()}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}
	return &Logger{slog: slog.New(handler)}
}

// Default returns an Info-level text logger stamped with service "tsflow".
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "tsflow"})
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a child Logger carrying the given attributes on every
// subsequent call.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// Slog exposes the underlying slog.Logger for callers that need
// LogAttrs or other slog-specific features.
func (l *Logger) Slog() *slog.Logger { return l.slog }
