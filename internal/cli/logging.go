package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// newLogger builds the process logger. Human-readable console output on
// stderr so tables on stdout stay machine-parseable.
func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
