package app

import (
	"log/slog"
	"os"
	"strings"

	"github.com/apexlens/backoffice/internal/config"
)

// NewLogger builds the process-wide slog.Logger on stderr and installs it as
// the default. Format "json" is for production; anything else gets the text
// handler with source locations for local work. Unknown levels fall back to
// info.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	json := strings.EqualFold(cfg.Format, "json")

	opts := &slog.HandlerOptions{
		Level:     logLevel(cfg.Level),
		AddSource: !json,
	}

	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
