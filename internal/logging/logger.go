package logging

import (
	"io"
	"os"
	"storefront-api/internal/config"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Format "console" gives human readable output,
// anything else is JSON.
func New(cfg config.Log, environment string) zerolog.Logger {
	return newWithWriter(cfg, environment, os.Stdout)
}

func newWithWriter(cfg config.Log, environment string, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("env", environment).
		Logger()
}
