// Package logging provides component-scoped leveled logging backed by
// log/slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level represents the severity level of a log message.
type Level int

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for general informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

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

// ParseLevel parses a level name. Unknown names yield LevelInfo and false.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// Config configures a Logger.
type Config struct {
	// Level is the minimum log level to output.
	Level Level
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Prefix is recorded as the "app" attribute.
	Prefix string
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
		Prefix: "edconf",
	}
}

// Logger is a leveled logger. Messages use fmt-style formatting; fields are
// emitted as slog attributes.
type Logger struct {
	slog     *slog.Logger
	level    *slog.LevelVar
	disabled bool
}

// New creates a logger writing text records to cfg.Output.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	lv := new(slog.LevelVar)
	lv.Set(cfg.Level.slogLevel())

	handler := slog.NewTextHandler(cfg.Output, &slog.HandlerOptions{Level: lv})
	l := slog.New(handler)
	if cfg.Prefix != "" {
		l = l.With("app", cfg.Prefix)
	}
	return &Logger{slog: l, level: lv}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{disabled: true}
}

// WithField returns a logger that adds key=value to every record.
func (l *Logger) WithField(key string, value any) *Logger {
	if l == nil || l.disabled {
		return l
	}
	return &Logger{slog: l.slog.With(key, value), level: l.level}
}

// WithFields returns a logger that adds every field to every record.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil || l.disabled || len(fields) == 0 {
		return l
	}
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{slog: l.slog.With(args...), level: l.level}
}

// WithComponent returns a logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel changes the minimum level of this logger and all loggers
// derived from it.
func (l *Logger) SetLevel(level Level) {
	if l == nil || l.disabled {
		return
	}
	l.level.Set(level.slogLevel())
}

// Enabled reports whether a message at level would be written.
func (l *Logger) Enabled(level Level) bool {
	if l == nil || l.disabled {
		return false
	}
	return l.slog.Enabled(context.Background(), level.slogLevel())
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

func (l *Logger) log(level Level, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.slog.Log(context.Background(), level.slogLevel(), msg)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = Nop()
)

// Default returns the process-wide logger. It discards output until
// SetDefault is called.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	if l == nil {
		l = Nop()
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}
