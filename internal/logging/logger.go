package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/wire"
	"github.com/trebuchet-org/aadeploy/internal/domain/config"
)

var LoggingSet = wire.NewSet(
	NewLogger,
)

// NewLogger creates a new logger based on runtime configuration
func NewLogger(cfg *config.RuntimeConfig) *slog.Logger {
	level := ParseLevel(os.Getenv("AADEPLOY_LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg != nil && cfg.Debug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time for cleaner output
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					source.File = shortPath(source.File)
				}
			}
			return a
		},
	}
	if cfg != nil && cfg.Debug {
		opts.Level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// ParseLevel maps a level name to a slog level. Unknown names give info.
func ParseLevel(val string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(val)) {
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

// shortPath trims a source path to its package directory and file name
func shortPath(file string) string {
	if idx := strings.Index(file, "aadeploy/"); idx != -1 {
		return file[idx+len("aadeploy/"):]
	}
	return filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))
}
