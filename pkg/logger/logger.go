// Package logger configures the application's structured logger.
//
// The kiosk runs unattended on a terminal with no one tailing logs in real
// time, so logging is structured (zerolog) from the start: every background
// worker (TagSource poller, event dispatcher, scheduler) stamps its log
// lines with a "component" field, which is what makes it possible to
// reconstruct an incident from the log file afterwards.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	Level  string // "debug", "info", "warn", "error" (default "info")
	Pretty bool   // human-readable console output instead of JSON
}

// New builds a configured zerolog.Logger writing to stdout.
func New(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var writer = os.Stdout
	if cfg.Pretty {
		console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(console).With().Timestamp().Logger()
	}

	return zerolog.New(writer).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
