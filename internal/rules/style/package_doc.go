package style

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// PackageDocMissingRuleCode is the id reported for undocumented packages.
const PackageDocMissingRuleCode = "ST1005"

// DocFileName is the file the fixer creates to hold the package comment.
const DocFileName = "doc.go"

// PackageDocMissingRule reports packages where no file carries a package
// doc comment. External test packages are not checked.
//
// The fixer adds a doc.go next to the reported file. When that directory
// already has a doc.go it offers nothing.
type PackageDocMissingRule struct{}

// NewPackageDocMissingRule creates a new package-doc rule instance.
func NewPackageDocMissingRule() *PackageDocMissingRule {
	return &PackageDocMissingRule{}
}

// Descriptors implements rules.Analyzer.
func (r *PackageDocMissingRule) Descriptors() []rules.Descriptor {
	return []rules.Descriptor{r.descriptor()}
}

func (r *PackageDocMissingRule) descriptor() rules.Descriptor {
	return descriptor(
		PackageDocMissingRuleCode,
		"PackageDocMissing",
		"Packages must have a doc comment",
		categoryDocumentation,
		"Reports packages without a package comment on any of their files.",
		rules.SeverityWarning,
	)
}

type packageKey struct {
	dir, name string
}

// Check implements rules.Analyzer.
func (r *PackageDocMissingRule) Check(pass *rules.Pass) []rules.Diagnostic {
	desc := r.descriptor()

	var order []packageKey
	first := map[packageKey]*rules.File{}
	documented := map[packageKey]bool{}
	for _, f := range pass.Files {
		if f.AST == nil {
			continue
		}
		name := f.AST.Name.Name
		if strings.HasSuffix(name, "_test") {
			continue
		}
		key := packageKey{dir: f.Dir(), name: name}
		if _, ok := first[key]; !ok {
			first[key] = f
			order = append(order, key)
		}
		if f.AST.Doc != nil {
			documented[key] = true
		}
	}

	var diags []rules.Diagnostic
	for _, key := range order {
		if documented[key] {
			continue
		}
		f := first[key]
		pos := f.Fset.Position(f.AST.Package)
		end := f.Fset.Position(f.AST.Name.End())
		loc := rules.NewRangeLocation(f.Path(), pos.Line, pos.Column-1, end.Line, end.Column-1)
		msg := fmt.Sprintf("package %s has no package comment", key.name)
		diags = append(diags, f.NewDiagnostic(desc, loc, msg))
	}
	return diags
}

// FixableIDs implements rules.Fixer.
func (r *PackageDocMissingRule) FixableIDs() []string {
	return []string{PackageDocMissingRuleCode}
}

// Fixes implements rules.Fixer.
func (r *PackageDocMissingRule) Fixes(_ context.Context, fc rules.FixContext) ([]rules.FixAction, error) {
	project := fc.Solution.ProjectOf(fc.Document.ID)
	if project == nil || hasDocFile(project, fc.Document) {
		return nil, nil
	}
	f, err := parser.ParseFile(token.NewFileSet(), fc.Document.DisplayPath(), fc.Document.Content, parser.PackageClauseOnly)
	if err != nil {
		return nil, fmt.Errorf("read package clause: %w", err)
	}
	name := f.Name.Name
	content := fmt.Sprintf("// Package %s contains the %s sources.\npackage %s\n", name, name, name)

	return []rules.FixAction{{
		Title: "Add " + DocFileName,
		Operations: func(context.Context) ([]workspace.Operation, error) {
			return []workspace.Operation{workspace.AddDocument{
				ProjectID: project.ID,
				Name:      DocFileName,
				Content:   []byte(content),
			}}, nil
		},
	}}, nil
}

// hasDocFile reports whether doc's directory already holds a doc.go.
func hasDocFile(project *workspace.Project, doc *workspace.Document) bool {
	for _, d := range project.Documents {
		if !doc.HasPath() {
			if d.Name == DocFileName {
				return true
			}
			continue
		}
		if d.Path == filepath.Join(filepath.Dir(doc.Path), DocFileName) {
			return true
		}
	}
	return false
}

// init registers the rule with the default registry.
func init() {
	rules.Register(NewPackageDocMissingRule())
}
