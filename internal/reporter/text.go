package reporter

import (
	"fmt"
	"io"
	"path/filepath"

	"charm.land/lipgloss/v2"

	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// Styles for the parts of a text line.
var (
	fileLocStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")) // Light gray

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")) // Darker gray

	severityStyles = map[rules.Severity]lipgloss.Style{
		rules.SeverityError: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		rules.SeverityWarning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")), // Orange
		rules.SeverityInfo: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")), // Blue
	}
)

// TextReporter writes one "id : path : line: message" line per diagnostic.
// With color enabled the id is tinted by severity; the layout is unchanged.
type TextReporter struct {
	writer io.Writer
	color  bool
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(w io.Writer, color bool) *TextReporter {
	return &TextReporter{writer: w, color: color}
}

// Report implements Reporter.
func (r *TextReporter) Report(diags []rules.Diagnostic, _ *workspace.Solution, _ ReportMetadata) error {
	for _, d := range diags {
		if _, err := fmt.Fprintln(r.writer, r.line(d)); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextReporter) line(d rules.Diagnostic) string {
	id := d.RuleID
	path := filepath.ToSlash(d.File())
	sep := " : "
	if r.color {
		if style, ok := severityStyles[d.Severity]; ok {
			id = style.Render(id)
		}
		path = fileLocStyle.Render(path)
		sep = separatorStyle.Render(sep)
	}
	return fmt.Sprintf("%s%s%s%s%d: %s", id, sep, path, sep, d.Line(), d.Message)
}
