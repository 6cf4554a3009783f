// Package logging configures the default slog logger.
//
// Usage:
//
//	logging.Setup("info", "text")            // colored tint handler
//	logging.Setup("debug", "json")           // JSON handler
//	logging.SetupWithLevel(slog.LevelDebug)  // explicit level override
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures logging at the named level: debug, info, warn, or error.
// Unknown names fall back to info. Format "json" selects the slog JSON
// handler; anything else gets the colored tint handler.
func Setup(level, format string) {
	lvl := parseLevel(level)
	if format == "json" {
		slog.SetDefault(slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}),
		))
		return
	}
	SetupWithLevel(lvl)
}

// SetupWithLevel configures colored logging at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
