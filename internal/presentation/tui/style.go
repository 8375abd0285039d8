package tui

import (
	"io"

	"github.com/muesli/termenv"
)

// Styles colours short status strings for w. Colours are dropped when w is
// not a terminal.
type Styles struct {
	out *termenv.Output
}

// NewStyles creates styles for w.
func NewStyles(w io.Writer) Styles {
	return Styles{out: termenv.NewOutput(w)}
}

// Done renders a completed marker.
func (s Styles) Done(text string) string {
	return s.out.String(text).Foreground(s.out.Color("#22c55e")).String()
}

// Pending renders an open marker.
func (s Styles) Pending(text string) string {
	return s.out.String(text).Foreground(s.out.Color("#eab308")).String()
}

// Muted renders secondary text.
func (s Styles) Muted(text string) string {
	return s.out.String(text).Faint().String()
}

// Error renders an error message.
func (s Styles) Error(text string) string {
	return s.out.String(text).Foreground(s.out.Color("#ef4444")).Bold().String()
}
