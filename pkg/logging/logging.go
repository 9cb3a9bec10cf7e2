// Package logging configures the process-wide slog logger used across the
// core library and its CLI entrypoint.
package logging

import (
	"log/slog"
	"os"

	"github.com/evefrontier/routecore/pkg/config"
)

// Setup installs a default slog.Logger reading LOG_LEVEL and
// ENABLE_PRETTY_LOGS from the environment, matching the console-logging
// half of the teacher's telemetry setup (the OTel half belongs to the HTTP
// adapter, out of core scope).
func Setup() *slog.Logger {
	level := parseLevel(config.GetEnv("LOG_LEVEL", "info"))

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	if config.GetBoolEnv("ENABLE_PRETTY_LOGS", false) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch s {
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
