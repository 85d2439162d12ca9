package remediate

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/stylist/internal/catalog"
	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/fix"
	"github.com/wharflab/stylist/internal/persist"
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/scanner"
	"github.com/wharflab/stylist/internal/testutil"
	"github.com/wharflab/stylist/internal/workspace"
)

func newOrchestrator(t *testing.T, reg *rules.Registry, configured rules.SeverityMap) *Orchestrator {
	t.Helper()
	cat, err := catalog.Load(reg, configured)
	require.NoError(t, err)
	eng := engine.New()
	return &Orchestrator{
		Source:    &workspace.Loader{},
		Catalog:   cat,
		Scanner:   scanner.New(eng, 2),
		Applier:   fix.NewApplier(eng),
		Persister: persist.NewWriter(false),
	}
}

func scanFor(t *testing.T, dir, id string, reg *rules.Registry) []rules.Diagnostic {
	t.Helper()
	sol, err := (&workspace.Loader{}).Load(context.Background(), dir, "")
	require.NoError(t, err)
	cat, err := catalog.Load(reg, nil)
	require.NoError(t, err)
	diags, err := scanner.New(engine.New(), 1).Scan(context.Background(), sol, cat.Analyzers(), cat.Severities())
	require.NoError(t, err)
	return onlyRule(diags, id)
}

// Three files with one diagnostic each and a bulk fixer: all three change.
func TestRemediate_BulkFixesEveryDocument(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCorpus(t, dir, map[string]string{
		"a.go": "package p\n// BAD a\n",
		"b.go": "package p\n// BAD b\n",
		"c.go": "package p\n// BAD c\n",
	})
	reg := rules.NewRegistry()
	reg.Register(testutil.NewPatternAnalyzer("R1", "BAD"))
	reg.RegisterFixer(&testutil.ReplaceFixer{ID: "R1", Pattern: "BAD", With: "ok", Bulk: true})

	summary, err := newOrchestrator(t, reg, nil).Remediate(context.Background(), []string{dir}, "")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Changed())
	assert.Equal(t, 0, summary.Added())
	assert.Equal(t, 0, summary.Removed())
	assert.Equal(t, 3, summary.Applied)
	assert.Equal(t, "package p\n// ok b\n", testutil.ReadFile(t, dir, "b.go"))
	assert.Empty(t, scanFor(t, dir, "R1", reg))
}

// A single-instance fixer makes progress without converging in one run.
func TestRemediate_SingleInstanceBoundedProgress(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCorpus(t, dir, map[string]string{
		"a.go": "package p\n// BAD one\n// BAD two\n// BAD three\n",
	})
	reg := rules.NewRegistry()
	reg.Register(testutil.NewPatternAnalyzer("R2", "BAD"))
	reg.RegisterFixer(&testutil.ReplaceFixer{ID: "R2", Pattern: "BAD", With: "ok"})
	o := newOrchestrator(t, reg, nil)

	require.Len(t, scanFor(t, dir, "R2", reg), 3)
	for remaining := 2; remaining >= 0; remaining-- {
		summary, err := o.Remediate(context.Background(), []string{dir}, "")
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Changed())
		assert.Len(t, scanFor(t, dir, "R2", reg), remaining)
	}
	assert.Equal(t, "package p\n// ok one\n// ok two\n// ok three\n", testutil.ReadFile(t, dir, "a.go"))

	summary, err := o.Remediate(context.Background(), []string{dir}, "")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Changed())
	assert.Equal(t, 0, summary.Diagnostics)
}

// A suppressed rule is neither scanned nor offered to fixers.
func TestRemediate_SuppressedRuleIsIgnored(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCorpus(t, dir, map[string]string{"a.go": "package p\n// BAD\n"})
	reg := rules.NewRegistry()
	reg.Register(testutil.NewPatternAnalyzer("R3", "BAD"))
	fixer := &testutil.ReplaceFixer{ID: "R3", Pattern: "BAD", With: "ok", Bulk: true}
	reg.RegisterFixer(fixer)

	o := newOrchestrator(t, reg, rules.SeverityMap{"R3": rules.SeveritySuppress})
	summary, err := o.Remediate(context.Background(), []string{dir}, "")
	require.NoError(t, err)

	assert.Equal(t, 0, summary.RulePasses)
	assert.Equal(t, int32(0), fixer.Calls.Load())
	assert.Equal(t, "package p\n// BAD\n", testutil.ReadFile(t, dir, "a.go"))

	summary, err = o.Remediate(context.Background(), []string{dir}, "R3")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.RulePasses, "filtering on a suppressed id skips the target")
}

// Later rules see earlier rules' writes because every pass reloads.
func TestRemediate_ReloadsBetweenRules(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCorpus(t, dir, map[string]string{"a.go": "package p\n// AAA\n"})
	reg := rules.NewRegistry()
	reg.Register(testutil.NewPatternAnalyzer("R1", "AAA"))
	reg.Register(testutil.NewPatternAnalyzer("R2", "BBB"))
	reg.RegisterFixer(&testutil.ReplaceFixer{ID: "R1", Pattern: "AAA", With: "BBB", Bulk: true})
	reg.RegisterFixer(&testutil.ReplaceFixer{ID: "R2", Pattern: "BBB", With: "CCC", Bulk: true})

	summary, err := newOrchestrator(t, reg, nil).Remediate(context.Background(), []string{dir}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.RulePasses)
	assert.Equal(t, 2, summary.Applied)
	assert.Equal(t, "package p\n// CCC\n", testutil.ReadFile(t, dir, "a.go"))
}

func TestRemediate_RuleFilter(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCorpus(t, dir, map[string]string{"a.go": "package p\n// AAA BBB\n"})
	reg := rules.NewRegistry()
	reg.Register(testutil.NewPatternAnalyzer("R1", "AAA"))
	reg.Register(testutil.NewPatternAnalyzer("R2", "BBB"))
	reg.RegisterFixer(&testutil.ReplaceFixer{ID: "R1", Pattern: "AAA", With: "aaa", Bulk: true})
	reg.RegisterFixer(&testutil.ReplaceFixer{ID: "R2", Pattern: "BBB", With: "bbb", Bulk: true})
	o := newOrchestrator(t, reg, nil)

	summary, err := o.Remediate(context.Background(), []string{dir}, "R2")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RulePasses)
	assert.Equal(t, "package p\n// AAA bbb\n", testutil.ReadFile(t, dir, "a.go"))

	summary, err = o.Remediate(context.Background(), []string{dir}, "NOPE")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.RulePasses)
	assert.Equal(t, 1, summary.Targets)
}

func TestRemediate_NoFixerAndFailuresAreIsolated(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCorpus(t, dir, map[string]string{"a.go": "package p\n// AAA BBB CCC DDD\n"})
	reg := rules.NewRegistry()
	reg.Register(testutil.NewPatternAnalyzer("R1", "AAA"))
	reg.Register(testutil.NewPatternAnalyzer("R2", "BBB"))
	reg.Register(testutil.NewPatternAnalyzer("R3", "CCC"))
	reg.Register(testutil.NewPatternAnalyzer("R4", "DDD"))
	// R1 has no fixer.
	reg.RegisterFixer(&testutil.FailingFixer{ID: "R2", Panic: true})
	reg.RegisterFixer(&testutil.MultiOperationFixer{ID: "R3"})
	reg.RegisterFixer(&testutil.ReplaceFixer{ID: "R4", Pattern: "DDD", With: "ddd", Bulk: true})

	summary, err := newOrchestrator(t, reg, nil).Remediate(context.Background(), []string{dir}, "")
	require.NoError(t, err)

	assert.Equal(t, 4, summary.RulePasses)
	assert.Equal(t, 1, summary.Skips[fix.SkipNoFixer])
	assert.Equal(t, 1, summary.Skips[fix.SkipMultiOperation])
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "R2", summary.Failures[0].RuleID)
	assert.Equal(t, "package p\n// AAA BBB CCC ddd\n", testutil.ReadFile(t, dir, "a.go"))
	assert.Equal(t, []fix.SkipReason{fix.SkipNoFixer, fix.SkipMultiOperation}, summary.SkipReasons())
}

func TestRemediate_FixerErrorIsCounted(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCorpus(t, dir, map[string]string{"a.go": "package p\n// AAA\n"})
	reg := rules.NewRegistry()
	reg.Register(testutil.NewPatternAnalyzer("R1", "AAA"))
	reg.RegisterFixer(&testutil.FailingFixer{ID: "R1"})

	summary, err := newOrchestrator(t, reg, nil).Remediate(context.Background(), []string{dir}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skips[fix.SkipResolveError])
	assert.Empty(t, summary.Failures)
}

// A second fixer for the same document in the same pass is skipped as stale.
func TestRemediate_DirtyDocumentSkipped(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCorpus(t, dir, map[string]string{"a.go": "package p\n// AAA\n"})
	reg := rules.NewRegistry()
	reg.Register(testutil.NewPatternAnalyzer("R1", "AAA"))
	second := &testutil.ReplaceFixer{ID: "R1", Pattern: "AAA", With: "zzz", Bulk: true}
	reg.RegisterFixer(&testutil.ReplaceFixer{ID: "R1", Pattern: "AAA", With: "yyy", Bulk: true})
	reg.RegisterFixer(second)

	summary, err := newOrchestrator(t, reg, nil).Remediate(context.Background(), []string{dir}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skips[fix.SkipStale])
	assert.Equal(t, int32(0), second.Calls.Load())
	assert.Equal(t, "package p\n// yyy\n", testutil.ReadFile(t, dir, "a.go"))
}

func TestRemediate_AddAndRemoveDocuments(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCorpus(t, dir, map[string]string{
		"a.go":     "package p\n// NEEDDOC\n",
		"empty.go": "package p\n// EMPTY\n",
	})
	reg := rules.NewRegistry()
	reg.Register(testutil.NewPatternAnalyzer("R1", "NEEDDOC"))
	reg.Register(testutil.NewPatternAnalyzer("R2", "EMPTY"))
	reg.RegisterFixer(&testutil.AddDocumentFixer{ID: "R1", Name: "doc.go", Content: "// Package p.\npackage p\n"})
	reg.RegisterFixer(&testutil.RemoveDocumentFixer{ID: "R2"})

	summary, err := newOrchestrator(t, reg, nil).Remediate(context.Background(), []string{dir}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added())
	assert.Equal(t, 1, summary.Removed())
	assert.Equal(t, "// Package p.\npackage p\n", testutil.ReadFile(t, dir, "doc.go"))
	assert.False(t, testutil.FileExists(t, dir, "empty.go"))
}

func TestRemediate_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCorpus(t, dir, map[string]string{"a.go": "package p\n// AAA\n"})
	reg := rules.NewRegistry()
	reg.Register(testutil.NewPatternAnalyzer("R1", "AAA"))
	reg.RegisterFixer(&testutil.ReplaceFixer{ID: "R1", Pattern: "AAA", With: "aaa", Bulk: true})

	o := newOrchestrator(t, reg, nil)
	o.Persister = persist.NewWriter(true)
	summary, err := o.Remediate(context.Background(), []string{dir}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Changed())
	assert.Equal(t, "package p\n// AAA\n", testutil.ReadFile(t, dir, "a.go"))
}

func TestRemediate_Canceled(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCorpus(t, dir, map[string]string{"a.go": "package p\n// AAA\n"})
	reg := rules.NewRegistry()
	reg.Register(testutil.NewPatternAnalyzer("R1", "AAA"))
	reg.RegisterFixer(&testutil.ReplaceFixer{ID: "R1", Pattern: "AAA", With: "aaa", Bulk: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newOrchestrator(t, reg, nil).Remediate(ctx, []string{dir}, "")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "package p\n// AAA\n", testutil.ReadFile(t, dir, "a.go"))
}

func TestRemediate_MissingTarget(t *testing.T) {
	reg := rules.NewRegistry()
	_, err := newOrchestrator(t, reg, nil).Remediate(context.Background(),
		[]string{filepath.Join(t.TempDir(), "missing")}, "")
	var cfgErr *workspace.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

// preconditionFixer breaks the applier contract by panicking with a
// precondition violation.
type preconditionFixer struct{}

func (preconditionFixer) FixableIDs() []string { return []string{"R1"} }

func (preconditionFixer) Fixes(context.Context, rules.FixContext) ([]rules.FixAction, error) {
	panic(&rules.PreconditionViolation{Reason: "broken"})
}

func TestRemediate_PreconditionViolationSurfaces(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCorpus(t, dir, map[string]string{"a.go": "package p\n// AAA\n"})
	reg := rules.NewRegistry()
	reg.Register(testutil.NewPatternAnalyzer("R1", "AAA"))
	reg.RegisterFixer(preconditionFixer{})

	_, err := newOrchestrator(t, reg, nil).Remediate(context.Background(), []string{dir}, "")
	var pv *rules.PreconditionViolation
	require.ErrorAs(t, err, &pv)
	assert.True(t, strings.Contains(pv.Error(), "broken"))
}

func TestGroupByDocument(t *testing.T) {
	mk := func(doc string) rules.Diagnostic { return rules.Diagnostic{RuleID: "R", DocumentID: doc} }
	groups := groupByDocument([]rules.Diagnostic{mk("b"), mk("a"), mk("b")})
	require.Len(t, groups, 2)
	assert.Equal(t, "b", groups[0].documentID)
	assert.Len(t, groups[0].diagnostics, 2)
	assert.Equal(t, "a", groups[1].documentID)
}
