package testutil

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// PatternAnalyzer reports every line containing Pattern under Desc.
type PatternAnalyzer struct {
	Desc    rules.Descriptor
	Pattern string
}

// NewPatternAnalyzer returns an analyzer reporting id on lines containing pattern.
func NewPatternAnalyzer(id, pattern string) *PatternAnalyzer {
	return &PatternAnalyzer{
		Desc: rules.Descriptor{
			ID:              id,
			Name:            "Pattern" + id,
			Title:           "line contains " + pattern,
			Category:        "Test",
			DefaultSeverity: rules.SeverityWarning,
		},
		Pattern: pattern,
	}
}

// Descriptors implements rules.Analyzer.
func (a *PatternAnalyzer) Descriptors() []rules.Descriptor {
	return []rules.Descriptor{a.Desc}
}

// Check implements rules.Analyzer.
func (a *PatternAnalyzer) Check(pass *rules.Pass) []rules.Diagnostic {
	var out []rules.Diagnostic
	for _, f := range pass.Files {
		for i, line := range f.Lines {
			if col := strings.Index(line, a.Pattern); col >= 0 {
				loc := rules.NewRangeLocation(f.Path(), i+1, col, i+1, col+len(a.Pattern))
				out = append(out, f.NewDiagnostic(a.Desc, loc, "found "+a.Pattern))
			}
		}
	}
	return out
}

// ReplaceFixer fixes PatternAnalyzer diagnostics by replacing the pattern.
// With Bulk set it fixes every occurrence in one action; otherwise each
// action fixes only the diagnostic it was asked for.
type ReplaceFixer struct {
	ID      string
	Pattern string
	With    string
	Bulk    bool

	// Calls counts FixAll and Fixes invocations.
	Calls atomic.Int32
}

// FixableIDs implements rules.Fixer.
func (f *ReplaceFixer) FixableIDs() []string {
	return []string{f.ID}
}

// Fixes implements rules.Fixer.
func (f *ReplaceFixer) Fixes(_ context.Context, fc rules.FixContext) ([]rules.FixAction, error) {
	f.Calls.Add(1)
	edit := rules.TextEdit{Location: fc.Diagnostic.Location, NewText: f.With}
	return []rules.FixAction{
		rules.EditAction("replace "+f.Pattern, fc.Document, []rules.TextEdit{edit}),
		rules.EditAction("second choice", fc.Document, []rules.TextEdit{{Location: fc.Diagnostic.Location, NewText: "UNUSED"}}),
	}, nil
}

// CanFixAll implements rules.BulkFixer.
func (f *ReplaceFixer) CanFixAll(*workspace.Document) bool {
	return f.Bulk
}

// FixAll implements rules.BulkFixer.
func (f *ReplaceFixer) FixAll(_ context.Context, fc rules.BulkFixContext) (*rules.FixAction, error) {
	f.Calls.Add(1)
	content := strings.ReplaceAll(string(fc.Document.Content), f.Pattern, f.With)
	action := rules.ContentAction("replace all "+f.Pattern, fc.Document, []byte(content))
	return &action, nil
}

// NoActionFixer handles ID but never offers an action.
type NoActionFixer struct {
	ID string
}

// FixableIDs implements rules.Fixer.
func (f *NoActionFixer) FixableIDs() []string { return []string{f.ID} }

// Fixes implements rules.Fixer.
func (f *NoActionFixer) Fixes(context.Context, rules.FixContext) ([]rules.FixAction, error) {
	return nil, nil
}

// MultiOperationFixer offers an action made of two operations.
type MultiOperationFixer struct {
	ID string
}

// FixableIDs implements rules.Fixer.
func (f *MultiOperationFixer) FixableIDs() []string { return []string{f.ID} }

// Fixes implements rules.Fixer.
func (f *MultiOperationFixer) Fixes(_ context.Context, fc rules.FixContext) ([]rules.FixAction, error) {
	return []rules.FixAction{{
		Title: "two operations",
		Operations: func(context.Context) ([]workspace.Operation, error) {
			return []workspace.Operation{
				workspace.ChangeContent{DocumentID: fc.Document.ID, Content: []byte("// changed\n")},
				workspace.AddDocument{ProjectID: fc.Document.ProjectID, Name: "extra.go", Content: []byte("package extra\n")},
			}, nil
		},
	}}, nil
}

// EmptyActionFixer offers an action that produces no operations. With
// Unset the action carries no operations function at all.
type EmptyActionFixer struct {
	ID    string
	Unset bool
}

// FixableIDs implements rules.Fixer.
func (f *EmptyActionFixer) FixableIDs() []string { return []string{f.ID} }

// Fixes implements rules.Fixer.
func (f *EmptyActionFixer) Fixes(context.Context, rules.FixContext) ([]rules.FixAction, error) {
	action := rules.FixAction{Title: "nothing to do"}
	if !f.Unset {
		action.Operations = func(context.Context) ([]workspace.Operation, error) { return nil, nil }
	}
	return []rules.FixAction{action}, nil
}

// ErrFixerFailed is returned by FailingFixer.
var ErrFixerFailed = errors.New("fixer failed")

// FailingFixer returns ErrFixerFailed, or panics when Panic is set.
type FailingFixer struct {
	ID    string
	Panic bool
}

// FixableIDs implements rules.Fixer.
func (f *FailingFixer) FixableIDs() []string { return []string{f.ID} }

// Fixes implements rules.Fixer.
func (f *FailingFixer) Fixes(context.Context, rules.FixContext) ([]rules.FixAction, error) {
	if f.Panic {
		panic("fixer exploded")
	}
	return nil, ErrFixerFailed
}

// AddDocumentFixer adds a new document next to the trigger document.
type AddDocumentFixer struct {
	ID      string
	Name    string
	Content string
}

// FixableIDs implements rules.Fixer.
func (f *AddDocumentFixer) FixableIDs() []string { return []string{f.ID} }

// Fixes implements rules.Fixer.
func (f *AddDocumentFixer) Fixes(_ context.Context, fc rules.FixContext) ([]rules.FixAction, error) {
	return []rules.FixAction{{
		Title: "add " + f.Name,
		Operations: func(context.Context) ([]workspace.Operation, error) {
			return []workspace.Operation{workspace.AddDocument{
				ProjectID: fc.Document.ProjectID,
				Name:      f.Name,
				Content:   []byte(f.Content),
			}}, nil
		},
	}}, nil
}

// RemoveDocumentFixer removes the trigger document.
type RemoveDocumentFixer struct {
	ID string
}

// FixableIDs implements rules.Fixer.
func (f *RemoveDocumentFixer) FixableIDs() []string { return []string{f.ID} }

// Fixes implements rules.Fixer.
func (f *RemoveDocumentFixer) Fixes(_ context.Context, fc rules.FixContext) ([]rules.FixAction, error) {
	return []rules.FixAction{{
		Title: "remove document",
		Operations: func(context.Context) ([]workspace.Operation, error) {
			return []workspace.Operation{workspace.RemoveDocument{DocumentID: fc.Document.ID}}, nil
		},
	}}, nil
}
