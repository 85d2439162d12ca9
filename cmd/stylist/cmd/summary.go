package cmd

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/wharflab/stylist/internal/remediate"
)

// Styles for the fix summary.
var (
	fixedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")) // Green

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Orange

	failedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // Red
)

// writeFixSummary prints what a fix run changed, skipped, and failed.
func writeFixSummary(w io.Writer, s *remediate.Summary, dryRun, color bool) {
	render := func(style lipgloss.Style, text string) string {
		if color {
			return style.Render(text)
		}
		return text
	}

	verb := "Fixed"
	if dryRun {
		verb = "Would fix"
	}
	if s.Applied > 0 {
		line := fmt.Sprintf("%s %d issues: %d files changed, %d added, %d removed",
			verb, s.Applied, s.Changed(), s.Added(), s.Removed())
		fmt.Fprintln(w, render(fixedStyle, line))
	} else {
		fmt.Fprintln(w, "Nothing to fix")
	}

	if reasons := s.SkipReasons(); len(reasons) > 0 {
		parts := make([]string, 0, len(reasons))
		total := 0
		for _, r := range reasons {
			parts = append(parts, fmt.Sprintf("%s: %d", r, s.Skips[r]))
			total += s.Skips[r]
		}
		line := fmt.Sprintf("Skipped %d fixes (%s)", total, strings.Join(parts, ", "))
		fmt.Fprintln(w, render(skippedStyle, line))
	}

	if n := len(s.Files.Skipped); n > 0 {
		fmt.Fprintln(w, render(skippedStyle, fmt.Sprintf("Not written: %d documents without a path", n)))
	}
	if n := len(s.Files.Failed); n > 0 {
		fmt.Fprintln(w, render(failedStyle, fmt.Sprintf("Failed to write %d files", n)))
	}
	for _, f := range s.Failures {
		fmt.Fprintln(w, render(failedStyle, fmt.Sprintf("Rule %s failed on %s: %v", f.RuleID, f.Target, f.Err)))
	}
}
