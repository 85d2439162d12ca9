package style

import (
	"fmt"
	"unicode/utf8"

	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/rules"
)

// LineTooLongRuleCode is the id reported for long lines.
const LineTooLongRuleCode = "ST1003"

// DefaultMaxLineLength applies when max_line_length is unset.
const DefaultMaxLineLength = 120

// LineTooLongRule reports lines wider than max_line_length columns.
// Tabs advance to the next tab_width stop. There is no fixer.
type LineTooLongRule struct{}

// NewLineTooLongRule creates a new line-too-long rule instance.
func NewLineTooLongRule() *LineTooLongRule {
	return &LineTooLongRule{}
}

// Descriptors implements rules.Analyzer.
func (r *LineTooLongRule) Descriptors() []rules.Descriptor {
	return []rules.Descriptor{r.descriptor()}
}

func (r *LineTooLongRule) descriptor() rules.Descriptor {
	return descriptor(
		LineTooLongRuleCode,
		"LineTooLong",
		"Lines must not exceed the maximum length",
		categoryMaintainability,
		"Reports lines wider than max_line_length (default 120). Set max_line_length = off to disable.",
		rules.SeverityInfo,
	)
}

// Check implements rules.Analyzer.
func (r *LineTooLongRule) Check(pass *rules.Pass) []rules.Diagnostic {
	desc := r.descriptor()
	var diags []rules.Diagnostic
	for _, f := range pass.Files {
		if f.Style["max_line_length"] == "off" {
			continue
		}
		limit := engine.IntProperty(f.Style, "max_line_length", DefaultMaxLineLength)
		tabWidth := engine.IntProperty(f.Style, "tab_width", engine.IntProperty(f.Style, "indent_size", 4))

		for i, line := range f.Lines {
			width := displayWidth(line, tabWidth)
			if width <= limit {
				continue
			}
			loc := rules.NewRangeLocation(f.Path(), i+1, 0, i+1, len(line))
			msg := fmt.Sprintf("line is %d columns long, maximum is %d", width, limit)
			diags = append(diags, f.NewDiagnostic(desc, loc, msg))
		}
	}
	return diags
}

// displayWidth counts runes, expanding tabs to the next multiple of tabWidth.
func displayWidth(line string, tabWidth int) int {
	if tabWidth <= 0 {
		return utf8.RuneCountInString(line)
	}
	width := 0
	for _, r := range line {
		if r == '\t' {
			width += tabWidth - width%tabWidth
			continue
		}
		width++
	}
	return width
}

// init registers the rule with the default registry.
func init() {
	rules.Register(NewLineTooLongRule())
}
