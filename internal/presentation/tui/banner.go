package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the statekit ASCII banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	colors := []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6"}
	lines := []string{
		"     _        _       _    _ _   ",
		" ___| |_ __ _| |_ ___| | _(_) |_ ",
		"/ __| __/ _` | __/ _ \\ |/ / | __|",
		"\\__ \\ || (_| | ||  __/   <| | |_ ",
		"|___/\\__\\__,_|\\__\\___|_|\\_\\_|\\__|",
	}

	fmt.Fprintln(w)
	for i, l := range lines {
		fmt.Fprintln(w, out.String(l).Foreground(out.Color(colors[i%len(colors)])))
	}
	fmt.Fprintln(w, out.String("  "+version).Faint())
	fmt.Fprintln(w)
}
