package testutil

import (
	"context"
	"testing"

	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// FixOnce runs analyzer a over a single file and applies fixer to the
// diagnostics of id the way the fix pipeline does: the bulk action when
// supported, else the first action for the first diagnostic. It returns the
// resulting snapshot and the change set; the change set is empty when
// nothing was fixed.
func FixOnce(
	tb testing.TB,
	a rules.Analyzer,
	fixer rules.Fixer,
	id string,
	sources ...Source,
) (*workspace.Solution, workspace.ChangeSet) {
	tb.Helper()
	ctx := context.Background()
	eng := engine.New()

	p := MakeProject(tb, sources...)
	sol := workspace.NewSolution(p)
	diags, err := eng.Evaluate(ctx, sol, sol.Projects()[0], []rules.Analyzer{a}, nil)
	if err != nil {
		tb.Fatalf("evaluate: %v", err)
	}

	var ofID []rules.Diagnostic
	for _, d := range diags {
		if d.RuleID == id {
			ofID = append(ofID, d)
		}
	}
	if len(ofID) == 0 {
		return sol, workspace.ChangeSet{}
	}
	doc := sol.Document(ofID[0].DocumentID)
	var group []rules.Diagnostic
	for _, d := range ofID {
		if d.DocumentID == doc.ID {
			group = append(group, d)
		}
	}
	g := rules.MustNewDiagnosticGroup(group)

	var action *rules.FixAction
	if eng.HasBulkCapability(fixer, doc) {
		action, err = eng.BulkFix(ctx, sol, doc, g, fixer)
	} else {
		var actions []rules.FixAction
		actions, err = eng.FixActions(ctx, sol, doc, g.First(), fixer)
		if len(actions) > 0 {
			action = &actions[0]
		}
	}
	if err != nil {
		tb.Fatalf("fix: %v", err)
	}
	if action == nil {
		return sol, workspace.ChangeSet{}
	}
	_, after, err := eng.Materialize(ctx, sol, *action)
	if err != nil {
		tb.Fatalf("materialize: %v", err)
	}
	return after, workspace.Diff(sol, after)
}

// FixContent is FixOnce for a single file named "x.go", returning the
// file's content afterwards.
func FixContent(tb testing.TB, a rules.Analyzer, fixer rules.Fixer, id, content string) string {
	tb.Helper()
	after, _ := FixOnce(tb, a, fixer, id, Source{Name: "x.go", Content: content})
	doc := after.Document(TestDir + "/x.go")
	if doc == nil {
		return ""
	}
	return string(doc.Content)
}
