package rules

import (
	"context"
	"go/ast"
	"go/token"
	"path/filepath"

	"github.com/wharflab/stylist/internal/workspace"
)

// Descriptor contains static information about one diagnostic id.
type Descriptor struct {
	// ID is the unique identifier (e.g., "ST1000").
	ID string

	// Name is the CamelCase rule name (e.g., "TrailingWhitespace").
	Name string

	// Title is a one-line human-readable summary.
	Title string

	// Description explains what the rule checks.
	Description string

	// Category groups related rules (e.g., "Layout", "Documentation").
	Category string

	// DefaultSeverity is the severity when not configured.
	DefaultSeverity Severity

	// DocURL links to detailed documentation.
	DocURL string
}

// File is one document prepared for analysis.
//
// File is read-only. Rules must not mutate any field; copy first.
type File struct {
	// Document is the workspace document being analyzed.
	Document *workspace.Document

	// Fset positions AST nodes.
	Fset *token.FileSet

	// AST is the parsed file, or nil when the source does not parse.
	// Rules that need syntax skip files without an AST.
	AST *ast.File

	// Lines is the content split on "\n" with line terminators removed.
	// A trailing newline yields a final empty element.
	Lines []string

	// Style holds the style-config properties that apply to this file,
	// keyed by lower-case property name.
	Style map[string]string
}

// Source returns the raw document content.
func (f *File) Source() []byte {
	return f.Document.Content
}

// Path returns the path used in diagnostics.
func (f *File) Path() string {
	return f.Document.DisplayPath()
}

// Dir returns the directory the document lives in, or "" for in-memory
// documents.
func (f *File) Dir() string {
	if !f.Document.HasPath() {
		return ""
	}
	return filepath.Dir(f.Document.Path)
}

// NewDiagnostic creates a diagnostic for descriptor d attached to this file.
func (f *File) NewDiagnostic(d Descriptor, loc Location, message string) Diagnostic {
	if loc.File == "" {
		loc.File = f.Path()
	}
	diag := NewDiagnostic(d, loc, message)
	diag.DocumentID = f.Document.ID
	return diag
}

// Pass is the input of one analyzer run over one unit.
type Pass struct {
	// Project is the unit being analyzed.
	Project *workspace.Project

	// Files are the unit's documents in load order.
	Files []*File
}

// Analyzer computes diagnostics for one or more ids.
type Analyzer interface {
	// Descriptors lists the ids this analyzer can report.
	Descriptors() []Descriptor

	// Check runs the analyzer over a unit. Returned diagnostics carry their
	// descriptor's default severity; the engine applies configuration.
	Check(pass *Pass) []Diagnostic
}

// FixAction is one candidate fix. Operations computes the workspace
// operations lazily so listing actions stays cheap.
type FixAction struct {
	Title      string
	Operations func(ctx context.Context) ([]workspace.Operation, error)
}

// FixContext asks a fixer for actions fixing a single diagnostic.
type FixContext struct {
	Solution   *workspace.Solution
	Document   *workspace.Document
	Diagnostic Diagnostic
}

// BulkFixContext asks a bulk fixer for one action fixing every diagnostic
// of an id in a document.
type BulkFixContext struct {
	Solution    *workspace.Solution
	Document    *workspace.Document
	RuleID      string
	Diagnostics []Diagnostic
}

// Fixer produces fix actions for diagnostics of the ids it declares.
type Fixer interface {
	// FixableIDs lists the diagnostic ids this fixer handles.
	FixableIDs() []string

	// Fixes returns candidate actions for one diagnostic, best first.
	Fixes(ctx context.Context, fc FixContext) ([]FixAction, error)
}

// BulkFixer is a Fixer that can fix all diagnostics of an id in a document
// with a single action.
type BulkFixer interface {
	Fixer

	// CanFixAll reports whether FixAll supports doc.
	CanFixAll(doc *workspace.Document) bool

	// FixAll returns one action covering every diagnostic in fc, or nil when
	// nothing can be fixed.
	FixAll(ctx context.Context, fc BulkFixContext) (*FixAction, error)
}

// EditAction builds a fix action that applies edits to doc.
func EditAction(title string, doc *workspace.Document, edits []TextEdit) FixAction {
	return FixAction{
		Title: title,
		Operations: func(context.Context) ([]workspace.Operation, error) {
			content, err := ApplyEdits(doc.Content, edits)
			if err != nil {
				return nil, err
			}
			return []workspace.Operation{workspace.ChangeContent{DocumentID: doc.ID, Content: content}}, nil
		},
	}
}

// ContentAction builds a fix action that replaces doc's content.
func ContentAction(title string, doc *workspace.Document, content []byte) FixAction {
	return FixAction{
		Title: title,
		Operations: func(context.Context) ([]workspace.Operation, error) {
			return []workspace.Operation{workspace.ChangeContent{DocumentID: doc.ID, Content: content}}, nil
		},
	}
}
