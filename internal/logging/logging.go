// Package logging configures the process-wide zerolog logger.
// Components log through github.com/rs/zerolog/log with a "component" field.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// DefaultConfig returns default logging configuration.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text"}
}

// Init installs the global logger writing to out (stderr if nil).
func Init(cfg Config, out io.Writer) error {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	if out == nil {
		out = os.Stderr
	}
	switch cfg.Format {
	case "json":
	case "text":
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	default:
		return fmt.Errorf("unknown log format %q (want json or text)", cfg.Format)
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// SetLevel changes the global level at runtime.
func SetLevel(s string) error {
	level, err := parseLevel(s)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	log.Info().Str("component", "logging").Str("level", level.String()).Msg("log level changed")
	return nil
}

func parseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
}
