/*
PURPOSE:
  Provides a structured logger for uxperf.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy.

  Implementation-discovered:
  - Needs Debug for per-transition and per-file detail.
  - JSON output is handy when runs are driven by CI.

ARCHITECTURE INTEGRATION:
  - Used everywhere.
  - Configured by: internal/cli (--log-level, --log-format)

ERROR HANDLING:
  - Configure rejects unknown levels and formats.

IMPLEMENTATION RULES:
  - Use `log/slog` (Go 1.21+).

USAGE:
  output.Logger.Info("message", "key", "value")

SELF-HEALING INSTRUCTIONS:
  - Ensure Go 1.21+ is used.

RELATED FILES:
  - All.

MAINTENANCE:
  - None.
*/

package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// Configure rebuilds Logger writing to w with the given level and format (text|json).
func Configure(w io.Writer, level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		SetLogger(slog.New(slog.NewTextHandler(w, opts)))
	case "json":
		SetLogger(slog.New(slog.NewJSONHandler(w, opts)))
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", format)
	}
	return nil
}
