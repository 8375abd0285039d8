package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"golang.org/x/term"
)

// Options tunes the application logger.
type Options struct {
	// Output defaults to os.Stderr.
	Output io.Writer
	// JSON switches to slog's JSON handler, useful when piping logs.
	JSON bool
	// NoColor disables the colour handler even on a terminal.
	NoColor bool
}

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout command output).
// It standardizes common keys (e.g., "error" -> "err").
// On a terminal the output is coloured with tint.
func New(level slog.Level, opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replaceAttr,
		}))
	}
	if f, ok := out.(*os.File); ok && !opts.NoColor && term.IsTerminal(int(f.Fd())) {
		return slog.New(tint.NewHandler(colorable.NewColorable(f), &tint.Options{
			Level:       level,
			TimeFormat:  "15:04:05.000",
			ReplaceAttr: replaceAttr,
		}))
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}))
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	// Standardize 'error' key to 'err'
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
