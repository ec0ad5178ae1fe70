package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the process logger on stderr and installs it as the global
// zerolog logger. pretty selects human-readable console output over JSON.
func New(level string, pretty bool) (zerolog.Logger, error) {
	var out io.Writer = os.Stderr
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	l, err := NewWithWriter(out, level)
	if err != nil {
		return zerolog.Nop(), err
	}
	log.Logger = l
	return l, nil
}

func NewWithWriter(w io.Writer, level string) (zerolog.Logger, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
