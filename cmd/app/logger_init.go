package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/gwskins/GWSkins_Go/internal/config"
)

// initLogger sets the default slog logger from configuration.
func initLogger(cfg *config.Config) {
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("Logging initialized", "level", level)
}
