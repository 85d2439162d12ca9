package style

import (
	"context"
	"strings"

	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// FinalNewlineRuleCode is the id reported for a bad end of file.
const FinalNewlineRuleCode = "ST1001"

// FinalNewlineRule reports files that do not end with exactly one newline.
//
// A missing newline is not reported when insert_final_newline is false.
// Blank lines before the end of the file are always reported.
type FinalNewlineRule struct{}

// NewFinalNewlineRule creates a new final-newline rule instance.
func NewFinalNewlineRule() *FinalNewlineRule {
	return &FinalNewlineRule{}
}

// Descriptors implements rules.Analyzer.
func (r *FinalNewlineRule) Descriptors() []rules.Descriptor {
	return []rules.Descriptor{r.descriptor()}
}

func (r *FinalNewlineRule) descriptor() rules.Descriptor {
	return descriptor(
		FinalNewlineRuleCode,
		"FinalNewline",
		"Files must end with a single newline",
		categoryLayout,
		"Requires a newline at the end of the file and no blank lines before it.",
		rules.SeverityWarning,
	)
}

// Check implements rules.Analyzer.
func (r *FinalNewlineRule) Check(pass *rules.Pass) []rules.Diagnostic {
	desc := r.descriptor()
	var diags []rules.Diagnostic
	for _, f := range pass.Files {
		edit, msg, ok := finalNewlineEdit(f.Lines, engine.BoolProperty(f.Style, "insert_final_newline", true))
		if !ok {
			continue
		}
		loc := edit.Location
		loc.File = f.Path()
		diags = append(diags, f.NewDiagnostic(desc, loc, msg))
	}
	return diags
}

// finalNewlineEdit computes the edit that leaves lines ending with a single
// newline. ok is false when nothing needs to change.
func finalNewlineEdit(lines []string, requireNewline bool) (edit rules.TextEdit, msg string, ok bool) {
	n := len(lines)
	if n == 0 || (n == 1 && lines[0] == "") {
		return rules.TextEdit{}, "", false
	}

	k := n - 1
	for k >= 0 && strings.TrimSpace(lines[k]) == "" {
		k--
	}
	switch {
	case k < 0:
		loc := rules.NewRangeLocation("", 1, 0, n, len(lines[n-1]))
		return rules.TextEdit{Location: loc, NewText: ""}, "file contains only blank lines", true
	case k == n-1:
		if !requireNewline {
			return rules.TextEdit{}, "", false
		}
		loc := rules.NewRangeLocation("", n, len(lines[k]), n, len(lines[k]))
		return rules.TextEdit{Location: loc, NewText: "\n"}, "missing newline at end of file", true
	case k == n-2 && lines[n-1] == "":
		return rules.TextEdit{}, "", false
	}
	loc := rules.NewRangeLocation("", k+1, len(lines[k]), n, len(lines[n-1]))
	return rules.TextEdit{Location: loc, NewText: "\n"}, "blank lines at end of file", true
}

// FixableIDs implements rules.Fixer.
func (r *FinalNewlineRule) FixableIDs() []string {
	return []string{FinalNewlineRuleCode}
}

// Fixes implements rules.Fixer.
func (r *FinalNewlineRule) Fixes(_ context.Context, fc rules.FixContext) ([]rules.FixAction, error) {
	action, ok := r.action(fc.Document)
	if !ok {
		return nil, nil
	}
	return []rules.FixAction{action}, nil
}

// CanFixAll implements rules.BulkFixer.
func (r *FinalNewlineRule) CanFixAll(*workspace.Document) bool {
	return true
}

// FixAll implements rules.BulkFixer.
func (r *FinalNewlineRule) FixAll(_ context.Context, fc rules.BulkFixContext) (*rules.FixAction, error) {
	action, ok := r.action(fc.Document)
	if !ok {
		return nil, nil
	}
	return &action, nil
}

// action recomputes the edit from the current content. The rule reports at
// most one diagnostic per file, so one action covers all of them.
func (r *FinalNewlineRule) action(doc *workspace.Document) (rules.FixAction, bool) {
	edit, _, ok := finalNewlineEdit(engine.SplitLines(doc.Content), true)
	if !ok {
		return rules.FixAction{}, false
	}
	return rules.EditAction("Normalize end of file", doc, []rules.TextEdit{edit}), true
}

// init registers the rule with the default registry.
func init() {
	rules.Register(NewFinalNewlineRule())
}
