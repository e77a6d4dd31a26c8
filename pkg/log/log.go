// Package log configures the process-wide slog logger and hands out
// component-scoped loggers.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the default text logger on stderr at the given level.
func Setup(logLevel string) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(logLevel),
	})))
}

// ParseLevel maps a log-level flag value to a slog level. Unknown values
// fall back to info.
func ParseLevel(logLevel string) slog.Level {
	switch logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithModule returns a logger tagged with the owning component name.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}

// WithSession scopes a logger to one canvas session.
func WithSession(logger *slog.Logger, sessionID string) *slog.Logger {
	return logger.With("session_id", sessionID)
}
