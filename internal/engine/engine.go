// Package engine runs analyzers and fixers over workspace snapshots.
//
// The engine is the only component that parses Go sources and interprets the
// style-config document. Everything above it works with diagnostics, fix
// actions and snapshots.
package engine

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wharflab/stylist/internal/logging"
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// AnalyzerErrorID is the diagnostic id reported when an analyzer panics.
const AnalyzerErrorID = "AD0001"

// AnalyzerError describes AnalyzerErrorID.
var AnalyzerError = rules.Descriptor{
	ID:              AnalyzerErrorID,
	Name:            "AnalyzerFailed",
	Title:           "Analyzer failed",
	Description:     "An analyzer stopped with an internal error; its results for the unit are incomplete.",
	Category:        "Compiler",
	DefaultSeverity: rules.SeverityError,
}

// ErrNoOperations is returned by Materialize for actions without an
// operations function.
var ErrNoOperations = errors.New("fix action has no operations")

// Engine evaluates analyzers and resolves fix actions.
type Engine interface {
	// Evaluate runs analyzers over one project and returns diagnostics with
	// effective severities applied. Excluded diagnostics are dropped.
	Evaluate(ctx context.Context, sol *workspace.Solution, project *workspace.Project,
		analyzers []rules.Analyzer, severities rules.SeverityMap) ([]rules.Diagnostic, error)

	// FixActions returns the actions fixer offers for one diagnostic.
	FixActions(ctx context.Context, sol *workspace.Solution, doc *workspace.Document,
		d rules.Diagnostic, fixer rules.Fixer) ([]rules.FixAction, error)

	// HasBulkCapability reports whether fixer can fix a whole group in doc.
	HasBulkCapability(fixer rules.Fixer, doc *workspace.Document) bool

	// BulkFix returns one action fixing every diagnostic in group.
	BulkFix(ctx context.Context, sol *workspace.Solution, doc *workspace.Document,
		group rules.DiagnosticGroup, fixer rules.Fixer) (*rules.FixAction, error)

	// Materialize computes an action's operations and applies them to sol.
	// It returns the operation count and the resulting snapshot.
	Materialize(ctx context.Context, sol *workspace.Solution, action rules.FixAction) (int, *workspace.Solution, error)
}

// GoEngine is the default Engine. It parses documents with go/parser and
// resolves .editorconfig properties per document.
type GoEngine struct{}

// New returns the default engine.
func New() *GoEngine {
	return &GoEngine{}
}

var _ Engine = (*GoEngine)(nil)

// Evaluate implements Engine.
func (e *GoEngine) Evaluate(
	ctx context.Context,
	_ *workspace.Solution,
	project *workspace.Project,
	analyzers []rules.Analyzer,
	severities rules.SeverityMap,
) ([]rules.Diagnostic, error) {
	if len(analyzers) == 0 || len(project.Documents) == 0 {
		return nil, nil
	}
	log := logging.FromContext(ctx).WithField("unit", project.Name)

	pass := &rules.Pass{
		Project: project,
		Files:   PrepareFiles(ctx, project),
	}

	var raw []rules.Diagnostic
	for _, a := range analyzers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw = append(raw, runAnalyzer(log, a, pass)...)
	}

	out := make([]rules.Diagnostic, 0, len(raw))
	for _, d := range raw {
		sev := severities.Effective(d.RuleID, d.Severity)
		if sev.IsExcluded() {
			continue
		}
		d.Severity = sev
		out = append(out, d)
	}
	sortDocumentMajor(out, project)
	return out, nil
}

// runAnalyzer calls Check, converting a panic into an AnalyzerErrorID diagnostic.
func runAnalyzer(log logrus.FieldLogger, a rules.Analyzer, pass *rules.Pass) (diags []rules.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			ids := make([]string, 0, len(a.Descriptors()))
			for _, d := range a.Descriptors() {
				ids = append(ids, d.ID)
			}
			log.WithField("analyzers", strings.Join(ids, ",")).Debugf("analyzer panic: %v\n%s", r, debug.Stack())
			diags = []rules.Diagnostic{rules.NewDiagnostic(
				AnalyzerError,
				rules.NewFileLocation(pass.Project.ID),
				fmt.Sprintf("analyzer %s failed: %v", strings.Join(ids, ","), r),
			)}
		}
	}()
	return a.Check(pass)
}

// sortDocumentMajor orders diagnostics by document load order, then position.
// Diagnostics not tied to a document go last.
func sortDocumentMajor(diags []rules.Diagnostic, project *workspace.Project) {
	index := make(map[string]int, len(project.Documents))
	for i, d := range project.Documents {
		index[d.ID] = i
	}
	docIndex := func(id string) int {
		if i, ok := index[id]; ok {
			return i
		}
		return len(project.Documents)
	}
	slices.SortStableFunc(diags, func(a, b rules.Diagnostic) int {
		if c := docIndex(a.DocumentID) - docIndex(b.DocumentID); c != 0 {
			return c
		}
		if c := a.Location.Line() - b.Location.Line(); c != 0 {
			return c
		}
		return a.Location.Start.Column - b.Location.Start.Column
	})
}

// PrepareFiles parses every project document and resolves its style
// properties.
func PrepareFiles(ctx context.Context, project *workspace.Project) []*rules.File {
	style := newStyleResolver(ctx, project)
	files := make([]*rules.File, 0, len(project.Documents))
	for _, doc := range project.Documents {
		files = append(files, prepareFile(doc, style.propertiesFor(project, doc)))
	}
	return files
}

func prepareFile(doc *workspace.Document, style map[string]string) *rules.File {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, doc.DisplayPath(), doc.Content, parser.ParseComments)
	var file *ast.File
	if err == nil {
		file = f
	}
	return &rules.File{
		Document: doc,
		Fset:     fset,
		AST:      file,
		Lines:    SplitLines(doc.Content),
		Style:    style,
	}
}

// SplitLines splits content on "\n" and drops a trailing "\r" from each line.
func SplitLines(content []byte) []string {
	lines := strings.Split(string(content), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// FixActions implements Engine.
func (e *GoEngine) FixActions(
	ctx context.Context,
	sol *workspace.Solution,
	doc *workspace.Document,
	d rules.Diagnostic,
	fixer rules.Fixer,
) ([]rules.FixAction, error) {
	return fixer.Fixes(ctx, rules.FixContext{Solution: sol, Document: doc, Diagnostic: d})
}

// HasBulkCapability implements Engine.
func (e *GoEngine) HasBulkCapability(fixer rules.Fixer, doc *workspace.Document) bool {
	bf, ok := fixer.(rules.BulkFixer)
	return ok && bf.CanFixAll(doc)
}

// BulkFix implements Engine.
func (e *GoEngine) BulkFix(
	ctx context.Context,
	sol *workspace.Solution,
	doc *workspace.Document,
	group rules.DiagnosticGroup,
	fixer rules.Fixer,
) (*rules.FixAction, error) {
	bf, ok := fixer.(rules.BulkFixer)
	if !ok {
		return nil, fmt.Errorf("fixer %T has no bulk capability", fixer)
	}
	return bf.FixAll(ctx, rules.BulkFixContext{
		Solution:    sol,
		Document:    doc,
		RuleID:      group.RuleID(),
		Diagnostics: group.Diagnostics(),
	})
}

// Materialize implements Engine.
func (e *GoEngine) Materialize(
	ctx context.Context,
	sol *workspace.Solution,
	action rules.FixAction,
) (int, *workspace.Solution, error) {
	if action.Operations == nil {
		return 0, nil, ErrNoOperations
	}
	ops, err := action.Operations(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("compute operations for %q: %w", action.Title, err)
	}
	after, err := workspace.ApplyAll(sol, ops)
	if err != nil {
		return 0, nil, fmt.Errorf("apply operations for %q: %w", action.Title, err)
	}
	return len(ops), after, nil
}
