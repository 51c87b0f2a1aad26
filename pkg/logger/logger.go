// Package logger wraps log/slog with a small level-and-field surface
// used by the HTTP interface. Components deeper in the tree take a
// *slog.Logger directly; this wrapper only adds level parsing and a
// stable set of field constructors for request logging.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Level is the minimum severity a logger emits.
type Level = slog.Level

// Supported levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ParseLevel maps a config string to a Level. Unknown values mean Info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is a structured logging attribute.
type Field = slog.Attr

// Field constructors.
var (
	String = slog.String
	Int    = slog.Int
	Int64  = slog.Int64
	Bool   = slog.Bool
	Any    = slog.Any
)

// Err builds an error field; a nil error logs as empty.
func Err(err error) Field {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Duration builds a human-readable duration field.
func Duration(key string, d time.Duration) Field {
	return slog.String(key, d.String())
}

// Options configures a Logger.
type Options struct {
	// Output defaults to os.Stdout.
	Output io.Writer

	// Level is the minimum emitted severity.
	Level Level

	// Format selects "json" or "text" output. Defaults to JSON.
	Format string

	// AddSource includes the caller position in each record.
	AddSource bool
}

// DefaultOptions returns JSON output to stdout at Info level.
func DefaultOptions() Options {
	return Options{
		Output: os.Stdout,
		Level:  LevelInfo,
		Format: "json",
	}
}

// Logger emits structured log records.
type Logger struct {
	sl *slog.Logger
}

// New creates a Logger from options.
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	hopts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(opts.Output, hopts)
	} else {
		handler = slog.NewJSONHandler(opts.Output, hopts)
	}

	return &Logger{sl: slog.New(handler)}
}

// Default creates a Logger with default options.
func Default() *Logger {
	return New(DefaultOptions())
}

// With returns a Logger carrying the given fields on every record.
func (l *Logger) With(fields ...Field) *Logger {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return &Logger{sl: l.sl.With(args...)}
}

// Slog exposes the underlying slog logger for components that take one.
func (l *Logger) Slog() *slog.Logger { return l.sl }

func (l *Logger) Debug(msg string, fields ...Field) {
	l.sl.LogAttrs(context.Background(), LevelDebug, msg, fields...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.sl.LogAttrs(context.Background(), LevelInfo, msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.sl.LogAttrs(context.Background(), LevelWarn, msg, fields...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.sl.LogAttrs(context.Background(), LevelError, msg, fields...)
}
