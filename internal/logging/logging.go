// Package logging sets up the structured log channel shared by all subsystems.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SubsystemField is the key carrying the component name on every entry
const SubsystemField = "subsystem"

// New creates the root logger writing human readable entries to w.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: !isTerminal(w)}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// ParseLevel maps a level name to a zerolog level; empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// For returns a child logger tagged with the subsystem name.
func For(logger zerolog.Logger, subsystem string) zerolog.Logger {
	return logger.With().Str(SubsystemField, subsystem).Logger()
}

type fder interface {
	Fd() uintptr
}

func isTerminal(w io.Writer) bool {
	_, ok := w.(fder)
	return ok
}
