package style

import (
	"bytes"
	"context"
	"fmt"
	"go/format"

	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// NotGofmtRuleCode is the id reported for files gofmt would change.
const NotGofmtRuleCode = "ST1007"

// NotGofmtRule reports files whose content differs from go/format output.
// Files that do not parse are skipped.
type NotGofmtRule struct{}

// NewNotGofmtRule creates a new gofmt rule instance.
func NewNotGofmtRule() *NotGofmtRule {
	return &NotGofmtRule{}
}

// Descriptors implements rules.Analyzer.
func (r *NotGofmtRule) Descriptors() []rules.Descriptor {
	return []rules.Descriptor{r.descriptor()}
}

func (r *NotGofmtRule) descriptor() rules.Descriptor {
	return descriptor(
		NotGofmtRuleCode,
		"NotGofmt",
		"Files must be gofmt-formatted",
		categoryLayout,
		"Reports files that gofmt would rewrite. The fix replaces the file with the formatted source.",
		rules.SeverityWarning,
	)
}

// Check implements rules.Analyzer.
func (r *NotGofmtRule) Check(pass *rules.Pass) []rules.Diagnostic {
	desc := r.descriptor()
	var diags []rules.Diagnostic
	for _, f := range pass.Files {
		if f.AST == nil {
			continue
		}
		formatted, err := format.Source(f.Source())
		if err != nil || bytes.Equal(formatted, f.Source()) {
			continue
		}
		line := firstDifference(f.Source(), formatted)
		loc := rules.NewLineLocation(f.Path(), line)
		diags = append(diags, f.NewDiagnostic(desc, loc, "file is not gofmt-ed"))
	}
	return diags
}

// firstDifference returns the 1-based line of the first byte where a and b
// differ.
func firstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return bytes.Count(a[:i], []byte("\n")) + 1
}

// FixableIDs implements rules.Fixer.
func (r *NotGofmtRule) FixableIDs() []string {
	return []string{NotGofmtRuleCode}
}

// Fixes implements rules.Fixer.
func (r *NotGofmtRule) Fixes(_ context.Context, fc rules.FixContext) ([]rules.FixAction, error) {
	action, err := r.action(fc.Document)
	if err != nil || action == nil {
		return nil, err
	}
	return []rules.FixAction{*action}, nil
}

// CanFixAll implements rules.BulkFixer.
func (r *NotGofmtRule) CanFixAll(*workspace.Document) bool {
	return true
}

// FixAll implements rules.BulkFixer.
func (r *NotGofmtRule) FixAll(_ context.Context, fc rules.BulkFixContext) (*rules.FixAction, error) {
	return r.action(fc.Document)
}

func (r *NotGofmtRule) action(doc *workspace.Document) (*rules.FixAction, error) {
	formatted, err := format.Source(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", doc.DisplayPath(), err)
	}
	if bytes.Equal(formatted, doc.Content) {
		return nil, nil
	}
	action := rules.ContentAction("Format with gofmt", doc, formatted)
	return &action, nil
}

// init registers the rule with the default registry.
func init() {
	rules.Register(NewNotGofmtRule())
}
