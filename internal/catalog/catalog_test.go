package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/rules"
)

type fakeAnalyzer struct {
	ids []string
}

func (a *fakeAnalyzer) Descriptors() []rules.Descriptor {
	out := make([]rules.Descriptor, 0, len(a.ids))
	for _, id := range a.ids {
		out = append(out, rules.Descriptor{ID: id, Name: "Fake" + id, DefaultSeverity: rules.SeverityWarning})
	}
	return out
}

func (a *fakeAnalyzer) Check(*rules.Pass) []rules.Diagnostic { return nil }

type fakeFixer struct {
	ids []string
}

func (f *fakeFixer) FixableIDs() []string { return f.ids }

func (f *fakeFixer) Fixes(context.Context, rules.FixContext) ([]rules.FixAction, error) {
	return nil, nil
}

func testRegistry() (*rules.Registry, *fakeAnalyzer, *fakeAnalyzer, *fakeFixer, *fakeFixer) {
	reg := rules.NewRegistry()
	single := &fakeAnalyzer{ids: []string{"X001"}}
	multi := &fakeAnalyzer{ids: []string{"X002", "X003"}}
	fixSingle := &fakeFixer{ids: []string{"X001"}}
	fixMulti := &fakeFixer{ids: []string{"X002", "X003"}}
	reg.Register(single)
	reg.Register(multi)
	reg.RegisterFixer(fixSingle)
	reg.RegisterFixer(fixMulti)
	return reg, single, multi, fixSingle, fixMulti
}

func TestLoad_NilRegistry(t *testing.T) {
	c, err := Load(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, c.Analyzers())
	assert.Empty(t, c.Fixers())
	assert.Nil(t, c.Rule("X001"))
}

func TestLoad_DefaultsAndAnalyzerError(t *testing.T) {
	reg, _, _, _, _ := testRegistry()
	c, err := Load(reg, nil)
	require.NoError(t, err)

	sev := c.Severities()
	assert.Equal(t, rules.SeverityWarning, sev["X001"])
	assert.Equal(t, rules.SeverityError, sev[engine.AnalyzerErrorID])
	assert.Len(t, c.Analyzers(), 2)
	assert.Len(t, c.Fixers(), 2)
	assert.True(t, c.HasFixer("X003"))
}

func TestLoad_ConfiguredWins(t *testing.T) {
	reg, _, _, _, _ := testRegistry()
	c, err := Load(reg, rules.SeverityMap{"X001": rules.SeverityError, engine.AnalyzerErrorID: rules.SeverityInfo})
	require.NoError(t, err)

	assert.Equal(t, rules.SeverityError, c.Severities()["X001"])
	assert.Equal(t, rules.SeverityInfo, c.Severities()[engine.AnalyzerErrorID])
}

func TestLoad_DropsOnlyFullyExcluded(t *testing.T) {
	reg, single, multi, _, fixMulti := testRegistry()
	c, err := Load(reg, rules.SeverityMap{
		"X001": rules.SeveritySuppress,
		"X002": rules.SeverityHidden,
	})
	require.NoError(t, err)

	analyzers := c.Analyzers()
	require.Len(t, analyzers, 1)
	assert.Same(t, multi, analyzers[0], "one id of the multi-id analyzer is still reportable")
	assert.Nil(t, c.Rule("X001"))
	assert.Same(t, multi, c.Rule("X003"))
	assert.NotSame(t, single, c.Rule("X003"))

	fixers := c.Fixers()
	require.Len(t, fixers, 1)
	assert.Same(t, fixMulti, fixers[0])

	// Per-id suppression still applies when selecting fixers.
	assert.Empty(t, c.FixersFor("X002"))
	assert.Len(t, c.FixersFor("X003"), 1)
	assert.True(t, c.IsExcluded("X002"))
}

func TestCatalog_Descriptors(t *testing.T) {
	reg, _, _, _, _ := testRegistry()
	c, err := Load(reg, nil)
	require.NoError(t, err)

	ds := c.Descriptors()
	require.Len(t, ds, 3)
	assert.Equal(t, "X001", ds[0].ID)
	d, ok := c.Descriptor("X003")
	require.True(t, ok)
	assert.Equal(t, "FakeX003", d.Name)
}
