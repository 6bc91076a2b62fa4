package config

import (
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/normalization"
)

var logLevels = normalization.NewNormalizer(map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}, slog.LevelInfo)

// LogLevel returns the slog level for the CLI: debug when verbose, otherwise
// BLOGBUILDER_LOG_LEVEL (debug|info|warn|error), defaulting to info.
func LogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return logLevels.Normalize(os.Getenv(EnvLogLevel))
}

// NewLogger builds the text logger used by the CLI.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
