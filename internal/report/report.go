// Package report renders check results for the terminal or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hochfrequenz/jira-todo/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	dimmedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Format selects the report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a user supplied report format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Write renders res to w.
func Write(w io.Writer, res *pipeline.Result, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err := io.WriteString(w, Text(res))
	return err
}

// Text renders res as styled terminal output.
func Text(res *pipeline.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("jira-todo"))
	b.WriteString(dimmedStyle.Render(fmt.Sprintf(" %d todo(s) checked", res.Records)))
	b.WriteString("\n")

	for _, msg := range res.Failures {
		b.WriteString(failureStyle.Render("✗ " + msg))
		b.WriteString("\n")
	}
	for _, msg := range res.Warnings {
		b.WriteString(warningStyle.Render("! " + msg))
		b.WriteString("\n")
	}

	switch {
	case res.Failed():
		b.WriteString(failureStyle.Render(fmt.Sprintf("%d problem(s) break the build", len(res.Failures))))
	case len(res.Warnings) > 0:
		b.WriteString(okStyle.Render("OK"))
		b.WriteString(dimmedStyle.Render(fmt.Sprintf(" (%d warning(s))", len(res.Warnings))))
	default:
		b.WriteString(okStyle.Render("OK"))
	}
	b.WriteString("\n")

	return b.String()
}

// Summary is a one-line plain-text description of res.
func Summary(res *pipeline.Result) string {
	if res.Failed() {
		return fmt.Sprintf("%d of %d todo(s) violate the issue policy", len(res.Failures), res.Records)
	}
	return fmt.Sprintf("%d todo(s) checked, no problems", res.Records)
}
