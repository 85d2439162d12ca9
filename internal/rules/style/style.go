// Package style implements the built-in layout and documentation rules.
//
// Every rule registers itself with the default registry from init.
// Layout rules read .editorconfig properties through rules.File.Style.
package style

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/wharflab/stylist/internal/rules"
)

const (
	categoryLayout          = "Layout"
	categoryDocumentation   = "Documentation"
	categoryMaintainability = "Maintainability"
)

// DocURL returns the documentation URL for a rule id.
func DocURL(id string) string {
	return "https://github.com/wharflab/stylist/blob/main/docs/rules/" + id + ".md"
}

// descriptor builds a rule descriptor.
func descriptor(id, name, title, category, description string, sev rules.Severity) rules.Descriptor {
	return rules.Descriptor{
		ID:              id,
		Name:            name,
		Title:           title,
		Description:     description,
		Category:        category,
		DefaultSeverity: sev,
		DocURL:          DocURL(id),
	}
}

// lineSpan is an inclusive 1-based line range.
type lineSpan struct {
	start, end int
}

// multilineSpans returns the line spans of raw string literals and block
// comments that cover more than one line. Nil when f has no AST.
func multilineSpans(f *rules.File) []lineSpan {
	if f.AST == nil {
		return nil
	}
	var spans []lineSpan
	add := func(from, to token.Pos) {
		start, end := f.Fset.Position(from).Line, f.Fset.Position(to).Line
		if end > start {
			spans = append(spans, lineSpan{start: start, end: end})
		}
	}
	ast.Inspect(f.AST, func(n ast.Node) bool {
		if lit, ok := n.(*ast.BasicLit); ok && lit.Kind == token.STRING && strings.HasPrefix(lit.Value, "`") {
			add(lit.Pos(), lit.End())
		}
		return true
	})
	for _, cg := range f.AST.Comments {
		for _, c := range cg.List {
			if strings.HasPrefix(c.Text, "/*") {
				add(c.Pos(), c.End())
			}
		}
	}
	return spans
}

// endsInside reports whether the end of line sits inside a span, i.e. the
// span continues on the next line.
func endsInside(spans []lineSpan, line int) bool {
	for _, s := range spans {
		if line >= s.start && line < s.end {
			return true
		}
	}
	return false
}

// startsInside reports whether line begins inside a span.
func startsInside(spans []lineSpan, line int) bool {
	for _, s := range spans {
		if line > s.start && line <= s.end {
			return true
		}
	}
	return false
}

// rangeEdits replaces every diagnostic range with newText.
func rangeEdits(diags []rules.Diagnostic, newText string) []rules.TextEdit {
	edits := make([]rules.TextEdit, 0, len(diags))
	for _, d := range diags {
		edits = append(edits, rules.TextEdit{Location: d.Location, NewText: newText})
	}
	return edits
}
