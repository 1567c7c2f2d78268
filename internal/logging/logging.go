// Package logging builds the zerolog loggers used by the server and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// ServiceName is attached to every log line as the service field.
const ServiceName = "adtech-emissions"

// New returns a JSON logger writing to w at the given level name.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("service", ServiceName).
		Logger(), nil
}

// Console returns a human-readable logger for CLI output. Verbose enables
// debug lines, which carry the derivation trace.
func Console(w io.Writer, verbose bool) zerolog.Logger {
	lvl := zerolog.WarnLevel
	if verbose {
		lvl = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !isTerminal(w)}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// ParseLevel parses a level name. An empty name is info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", level)
	}
	return lvl, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
