// Package obs wires the process's two observability surfaces: structured
// logging via zerolog and metrics via OpenTelemetry's metrics API bridged
// to Prometheus. Neither is held behind a package-global: NewLogger and
// NewMeterProvider return values the caller threads explicitly, so every
// component logs and records through an instance it was handed, not one it
// reached for off a package variable.
package obs

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog.Logger writing JSON lines with an RFC3339Nano
// timestamp. level is parsed case-insensitively ("warning" is accepted as
// an alias for "warn"); an empty or unrecognized level falls back to info.
// When logPath is non-empty, logs go to that file (append mode) instead of
// stdout; if the file can't be opened, NewLogger falls back to stdout and
// returns the open error alongside a usable logger.
func NewLogger(level, logPath string) (zerolog.Logger, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stdout
	var openErr error
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			openErr = fmt.Errorf("obs: open log file %q: %w", logPath, err)
		} else {
			w = f
		}
	}

	log := zerolog.New(w).With().Timestamp().Logger()

	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "warning" {
		normalized = "warn"
	}
	lvl := zerolog.InfoLevel
	if normalized != "" {
		if parsed, err := zerolog.ParseLevel(normalized); err == nil {
			lvl = parsed
		}
	}
	log = log.Level(lvl)

	return log, openErr
}
