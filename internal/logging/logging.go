package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger: JSON to stdout, or the console writer in dev.
// An unknown level falls back to info.
func New(level string, dev bool, component string) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, dev, component)
}

// NewWithWriter is New writing to w. Each logger carries exactly one
// component field; build a separate logger per component instead of adding
// another one with With.
func NewWithWriter(w io.Writer, level string, dev bool, component string) zerolog.Logger {
	out := w
	if dev {
		out = zerolog.ConsoleWriter{Out: w}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
