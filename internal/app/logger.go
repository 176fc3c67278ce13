package app

import (
	"log/slog"
	"os"

	"service-booking/internal/logx"
)

// NewLogger returns a JSON logger on stdout. LOG_LEVEL picks the level, info by default.
func NewLogger() logx.Logger {
	return logx.NewJSON(os.Stdout, parseLevel(os.Getenv("LOG_LEVEL")))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
