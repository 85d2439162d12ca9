package style

import (
	"context"

	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// EmptyFileRuleCode is the id reported for files without declarations.
const EmptyFileRuleCode = "ST1006"

// EmptyFileRule reports files holding only a package clause. A file that is
// the only one in its directory is kept, since removing it would drop the
// package. The fixer removes the document.
type EmptyFileRule struct{}

// NewEmptyFileRule creates a new empty-file rule instance.
func NewEmptyFileRule() *EmptyFileRule {
	return &EmptyFileRule{}
}

// Descriptors implements rules.Analyzer.
func (r *EmptyFileRule) Descriptors() []rules.Descriptor {
	return []rules.Descriptor{r.descriptor()}
}

func (r *EmptyFileRule) descriptor() rules.Descriptor {
	return descriptor(
		EmptyFileRuleCode,
		"EmptyFile",
		"Files must contain declarations",
		categoryMaintainability,
		"Reports files with no declarations and no comments.",
		rules.SeverityInfo,
	)
}

// Check implements rules.Analyzer.
func (r *EmptyFileRule) Check(pass *rules.Pass) []rules.Diagnostic {
	desc := r.descriptor()

	perDir := map[string]int{}
	for _, f := range pass.Files {
		perDir[f.Dir()]++
	}

	var diags []rules.Diagnostic
	for _, f := range pass.Files {
		if f.AST == nil || perDir[f.Dir()] < 2 {
			continue
		}
		if len(f.AST.Decls) > 0 || f.AST.Doc != nil || len(f.AST.Comments) > 0 {
			continue
		}
		line := f.Fset.Position(f.AST.Package).Line
		loc := rules.NewLineLocation(f.Path(), line)
		diags = append(diags, f.NewDiagnostic(desc, loc, "file contains no declarations"))
	}
	return diags
}

// FixableIDs implements rules.Fixer.
func (r *EmptyFileRule) FixableIDs() []string {
	return []string{EmptyFileRuleCode}
}

// Fixes implements rules.Fixer.
func (r *EmptyFileRule) Fixes(_ context.Context, fc rules.FixContext) ([]rules.FixAction, error) {
	id := fc.Document.ID
	return []rules.FixAction{{
		Title: "Remove empty file",
		Operations: func(context.Context) ([]workspace.Operation, error) {
			return []workspace.Operation{workspace.RemoveDocument{DocumentID: id}}, nil
		},
	}}, nil
}

// init registers the rule with the default registry.
func init() {
	rules.Register(NewEmptyFileRule())
}
