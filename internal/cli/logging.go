package cli

import (
	"fmt"
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"

	"github.com/hupe1980/ncd"
)

// Log formats accepted by --log-format.
const (
	LogFormatPretty = "pretty"
	LogFormatJSON   = "json"
	LogFormatText   = "text"
)

// newLogger builds the run logger. pretty uses charmbracelet/log, which
// implements slog.Handler.
func newLogger(w io.Writer, format string, debug bool) (*ncd.Logger, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var h slog.Handler
	switch format {
	case LogFormatPretty, "":
		cl := charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			Level:           charmlog.InfoLevel,
		})
		if debug {
			cl.SetLevel(charmlog.DebugLevel)
		}
		h = cl
	case LogFormatJSON:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case LogFormatText:
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s, %s or %s)", format, LogFormatPretty, LogFormatJSON, LogFormatText)
	}
	return ncd.NewLogger(h), nil
}
