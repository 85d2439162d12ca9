package style

import (
	"context"
	"strings"

	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// TrailingWhitespaceRuleCode is the id reported for trailing whitespace.
const TrailingWhitespaceRuleCode = "ST1000"

// TrailingWhitespaceRule reports spaces and tabs at the end of a line.
// Lines ending inside a raw string or block comment are left alone.
type TrailingWhitespaceRule struct{}

// NewTrailingWhitespaceRule creates a new trailing-whitespace rule instance.
func NewTrailingWhitespaceRule() *TrailingWhitespaceRule {
	return &TrailingWhitespaceRule{}
}

// Descriptors implements rules.Analyzer.
func (r *TrailingWhitespaceRule) Descriptors() []rules.Descriptor {
	return []rules.Descriptor{r.descriptor()}
}

func (r *TrailingWhitespaceRule) descriptor() rules.Descriptor {
	return descriptor(
		TrailingWhitespaceRuleCode,
		"TrailingWhitespace",
		"Lines must not end with whitespace",
		categoryLayout,
		"Disallows spaces and tabs at the end of lines. Disabled by trim_trailing_whitespace = false.",
		rules.SeverityWarning,
	)
}

// Check implements rules.Analyzer.
func (r *TrailingWhitespaceRule) Check(pass *rules.Pass) []rules.Diagnostic {
	desc := r.descriptor()
	var diags []rules.Diagnostic
	for _, f := range pass.Files {
		if !engine.BoolProperty(f.Style, "trim_trailing_whitespace", true) {
			continue
		}
		spans := multilineSpans(f)
		for i, line := range f.Lines {
			trimmed := strings.TrimRight(line, " \t")
			if trimmed == line {
				continue
			}
			lineNum := i + 1
			if endsInside(spans, lineNum) {
				continue
			}
			loc := rules.NewRangeLocation(f.Path(), lineNum, len(trimmed), lineNum, len(line))
			diags = append(diags, f.NewDiagnostic(desc, loc, "trailing whitespace"))
		}
	}
	return diags
}

// FixableIDs implements rules.Fixer.
func (r *TrailingWhitespaceRule) FixableIDs() []string {
	return []string{TrailingWhitespaceRuleCode}
}

// Fixes implements rules.Fixer.
func (r *TrailingWhitespaceRule) Fixes(_ context.Context, fc rules.FixContext) ([]rules.FixAction, error) {
	edits := rangeEdits([]rules.Diagnostic{fc.Diagnostic}, "")
	return []rules.FixAction{rules.EditAction("Remove trailing whitespace", fc.Document, edits)}, nil
}

// CanFixAll implements rules.BulkFixer.
func (r *TrailingWhitespaceRule) CanFixAll(*workspace.Document) bool {
	return true
}

// FixAll implements rules.BulkFixer.
func (r *TrailingWhitespaceRule) FixAll(_ context.Context, fc rules.BulkFixContext) (*rules.FixAction, error) {
	if len(fc.Diagnostics) == 0 {
		return nil, nil
	}
	action := rules.EditAction("Remove trailing whitespace", fc.Document, rangeEdits(fc.Diagnostics, ""))
	return &action, nil
}

// init registers the rule with the default registry.
func init() {
	rules.Register(NewTrailingWhitespaceRule())
}
