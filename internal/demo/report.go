package demo

import (
	"fmt"
	"strings"
)

// Step is one scripted action and the state it left behind, as markdown.
type Step struct {
	Action string
	Result string
}

// Report collects the steps of a scenario run.
type Report struct {
	Title string
	Steps []Step
}

func (r *Report) add(action, format string, args ...any) {
	r.Steps = append(r.Steps, Step{Action: action, Result: fmt.Sprintf(format, args...)})
}

// Markdown renders the report as a markdown document.
func (r Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	for i, s := range r.Steps {
		fmt.Fprintf(&b, "## %d. %s\n\n%s\n\n", i+1, s.Action, strings.TrimSpace(s.Result))
	}
	return b.String()
}

func table(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return b.String()
}
