package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAnalyzer is a simple analyzer for testing.
type mockAnalyzer struct {
	ids []string
}

func (a *mockAnalyzer) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(a.ids))
	for _, id := range a.ids {
		out = append(out, Descriptor{ID: id, Name: "Mock" + id, DefaultSeverity: SeverityWarning})
	}
	return out
}

func (a *mockAnalyzer) Check(*Pass) []Diagnostic {
	return nil
}

// mockFixingAnalyzer also fixes its ids.
type mockFixingAnalyzer struct {
	mockAnalyzer
}

func (a *mockFixingAnalyzer) FixableIDs() []string {
	return a.ids
}

func (a *mockFixingAnalyzer) Fixes(context.Context, FixContext) ([]FixAction, error) {
	return nil, nil
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockAnalyzer{ids: []string{"ST0002", "ST0001"}})

	assert.True(t, reg.Has("ST0001"))
	assert.True(t, reg.Has("ST0002"))
	assert.False(t, reg.Has("ST0003"))
	assert.Equal(t, []string{"ST0001", "ST0002"}, reg.Codes())
	assert.Empty(t, reg.Fixers())

	d, ok := reg.Descriptor("ST0002")
	require.True(t, ok)
	assert.Equal(t, "MockST0002", d.Name)
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&mockAnalyzer{ids: []string{"dup"}})

	assert.Panics(t, func() {
		reg.Register(&mockAnalyzer{ids: []string{"other", "dup"}})
	})
	assert.False(t, reg.Has("other"), "failed registration must not be partial")
}

func TestRegistry_RegisterFixingAnalyzer(t *testing.T) {
	reg := NewRegistry()
	fa := &mockFixingAnalyzer{mockAnalyzer{ids: []string{"ST0001"}}}
	reg.Register(fa)

	fixers := reg.Fixers()
	require.Len(t, fixers, 1)
	assert.Equal(t, []string{"ST0001"}, fixers[0].FixableIDs())
}

func TestRegistry_Analyzers(t *testing.T) {
	reg := NewRegistry()
	b := &mockAnalyzer{ids: []string{"B1", "B2"}}
	a := &mockAnalyzer{ids: []string{"A1"}}
	reg.Register(b)
	reg.Register(a)

	analyzers := reg.Analyzers()
	require.Len(t, analyzers, 2)
	assert.Same(t, a, analyzers[0])
	assert.Same(t, b, analyzers[1])
	assert.Same(t, b, reg.Get("B2"))
	assert.Nil(t, reg.Get("C1"))

	descs := reg.Descriptors()
	require.Len(t, descs, 3)
	assert.Equal(t, "A1", descs[0].ID)
	assert.Equal(t, "B2", descs[2].ID)
}
