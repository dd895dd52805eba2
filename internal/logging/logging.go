// Package logging builds the zerolog logger used across phonebook.
// Standard output belongs to the interactive UI, so logs go to stderr or a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/smileynet/phonebook/internal/config"
)

// New returns a logger configured from cfg and a close function for any
// opened log file. The close function is never nil.
func New(cfg config.Log) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }

	level := zerolog.WarnLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("logging: invalid level %q: %w", cfg.Level, err)
		}
		level = l
	}

	var out io.Writer = os.Stderr
	closeFn := noop
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("logging: opening %s: %w", cfg.File, err)
		}
		out = f
		closeFn = f.Close
	}

	return NewWithWriter(out, cfg.Format, level), closeFn, nil
}

// NewWithWriter returns a logger writing to w in the given format
// ("json", or console for anything else).
func NewWithWriter(w io.Writer, format string, level zerolog.Level) zerolog.Logger {
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
