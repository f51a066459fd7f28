// Package logging builds the zerolog logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/runnerr0/filmfinder/internal/config"
)

const permission = 0664

// New returns a logger configured from cfg. Without a log file, output is
// written to console in human-readable form. The returned close function
// releases the log file, if any, and is always non-nil.
func New(cfg config.LoggingConfig, console io.Writer) (zerolog.Logger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), func() error { return nil }, err
	}

	if cfg.File != "" {
		path, err := config.ExpandPath(cfg.File)
		if err != nil {
			return zerolog.Nop(), func() error { return nil }, err
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return zerolog.Nop(), func() error { return nil }, fmt.Errorf("open log file: %w", err)
		}
		logger := zerolog.New(zerolog.SyncWriter(f)).Level(level).With().Timestamp().Logger()
		return logger, f.Close, nil
	}

	w := zerolog.ConsoleWriter{
		Out:        console,
		NoColor:    cfg.NoColor,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), func() error { return nil }, nil
}

// ParseLevel maps a config level name to a zerolog level. Empty means warn.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.WarnLevel, nil
	}
	if s == "warning" {
		s = "warn"
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
