// Package logger implements a logging adapter using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.halyard.dev/halyard/internal/core/ports"
)

// EnvLogLevel selects the minimum log level: debug, info, warn, or error.
const EnvLogLevel = "HALYARD_LOG_LEVEL"

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger *slog.Logger
	level  slog.Level
	mu     sync.RWMutex
}

// New creates a Logger writing to stderr; stdout belongs to the launched
// service. The minimum level comes from HALYARD_LOG_LEVEL, defaulting to
// info.
func New() ports.Logger {
	level := ParseLevel(os.Getenv(EnvLogLevel))
	return &Logger{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})),
		level: level,
	}
}

// ParseLevel maps a level name to a slog.Level. Unknown or empty names fall
// back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetOutput updates the logger's output destination, keeping the level.
// This is thread-safe and updates the underlying slog handler.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: l.level,
	}))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error message.
func (l *Logger) Error(err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Error("operation failed", "error", err)
}
