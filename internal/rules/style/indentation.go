package style

import (
	"context"
	"strings"

	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// SpaceIndentationRuleCode is the id reported for space indentation.
const SpaceIndentationRuleCode = "ST1004"

// SpaceIndentationRule reports lines indented with spaces when tabs are
// required. Files with indent_style = space are skipped.
type SpaceIndentationRule struct{}

// NewSpaceIndentationRule creates a new space-indentation rule instance.
func NewSpaceIndentationRule() *SpaceIndentationRule {
	return &SpaceIndentationRule{}
}

// Descriptors implements rules.Analyzer.
func (r *SpaceIndentationRule) Descriptors() []rules.Descriptor {
	return []rules.Descriptor{r.descriptor()}
}

func (r *SpaceIndentationRule) descriptor() rules.Descriptor {
	return descriptor(
		SpaceIndentationRuleCode,
		"SpaceIndentation",
		"Indentation must use tabs",
		categoryLayout,
		"Reports leading whitespace containing spaces unless indent_style = space.",
		rules.SeverityWarning,
	)
}

// Check implements rules.Analyzer.
func (r *SpaceIndentationRule) Check(pass *rules.Pass) []rules.Diagnostic {
	desc := r.descriptor()
	var diags []rules.Diagnostic
	for _, f := range pass.Files {
		if f.Style["indent_style"] == "space" {
			continue
		}
		spans := multilineSpans(f)
		for i, line := range f.Lines {
			indent := leadingWhitespace(line)
			if !strings.Contains(indent, " ") || len(indent) == len(line) {
				continue
			}
			if startsInside(spans, i+1) {
				continue
			}
			loc := rules.NewRangeLocation(f.Path(), i+1, 0, i+1, len(indent))
			diags = append(diags, f.NewDiagnostic(desc, loc, "line is indented with spaces"))
		}
	}
	return diags
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// retab rewrites indent as tabs, one per size columns. Leftover columns stay
// as spaces.
func retab(indent string, size int) string {
	width := 0
	for _, c := range indent {
		if c == '\t' {
			width += size - width%size
			continue
		}
		width++
	}
	return strings.Repeat("\t", width/size) + strings.Repeat(" ", width%size)
}

// FixableIDs implements rules.Fixer.
func (r *SpaceIndentationRule) FixableIDs() []string {
	return []string{SpaceIndentationRuleCode}
}

// Fixes implements rules.Fixer.
func (r *SpaceIndentationRule) Fixes(ctx context.Context, fc rules.FixContext) ([]rules.FixAction, error) {
	size := indentSize(engine.StyleProperties(ctx, fc.Solution, fc.Document.ID))
	edits := r.edits(fc.Document, []rules.Diagnostic{fc.Diagnostic}, size)
	return []rules.FixAction{rules.EditAction("Indent with tabs", fc.Document, edits)}, nil
}

// CanFixAll implements rules.BulkFixer.
func (r *SpaceIndentationRule) CanFixAll(*workspace.Document) bool {
	return true
}

// FixAll implements rules.BulkFixer.
func (r *SpaceIndentationRule) FixAll(ctx context.Context, fc rules.BulkFixContext) (*rules.FixAction, error) {
	if len(fc.Diagnostics) == 0 {
		return nil, nil
	}
	size := indentSize(engine.StyleProperties(ctx, fc.Solution, fc.Document.ID))
	action := rules.EditAction("Indent with tabs", fc.Document, r.edits(fc.Document, fc.Diagnostics, size))
	return &action, nil
}

func (r *SpaceIndentationRule) edits(doc *workspace.Document, diags []rules.Diagnostic, size int) []rules.TextEdit {
	lines := engine.SplitLines(doc.Content)
	edits := make([]rules.TextEdit, 0, len(diags))
	for _, d := range diags {
		idx := d.Location.Start.Line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}
		indent := leadingWhitespace(lines[idx])
		edits = append(edits, rules.TextEdit{
			Location: rules.NewRangeLocation(d.Location.File, d.Location.Start.Line, 0, d.Location.Start.Line, len(indent)),
			NewText:  retab(indent, size),
		})
	}
	return edits
}

// indentSize is the number of columns one tab replaces.
func indentSize(style map[string]string) int {
	return engine.IntProperty(style, "indent_size", 4)
}

// init registers the rule with the default registry.
func init() {
	rules.Register(NewSpaceIndentationRule())
}
