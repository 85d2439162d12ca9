package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakePass(t *testing.T) {
	pass := MakePass(t, map[string]string{"indent_style": "tab"},
		Source{Name: "a.go", Content: "package a\n"},
		Source{Name: "b.go", Content: "not go"},
	)
	require.Len(t, pass.Files, 2)
	assert.NotNil(t, pass.Files[0].AST)
	assert.Nil(t, pass.Files[1].AST)
	assert.Equal(t, "tab", pass.Files[1].Style["indent_style"])
	assert.Equal(t, "/src/a.go", pass.Files[0].Path())
}

func TestPatternAnalyzer(t *testing.T) {
	a := NewPatternAnalyzer("T1", "bad")
	RunRuleTests(t, a, []RuleTestCase{
		{Name: "none", Content: "package a\n", WantViolations: 0},
		{
			Name:           "two",
			Content:        "package a\n// bad\nvar bad = 1\n",
			WantViolations: 2,
			WantCodes:      []string{"T1", "T1"},
			WantLines:      []int{2, 3},
			WantMessages:   []string{"found bad"},
		},
	})
}

func TestFixContent(t *testing.T) {
	a := NewPatternAnalyzer("T1", "bad")

	bulk := &ReplaceFixer{ID: "T1", Pattern: "bad", With: "good", Bulk: true}
	assert.Equal(t, "package a\n// good good\n", FixContent(t, a, bulk, "T1", "package a\n// bad bad\n"))

	single := &ReplaceFixer{ID: "T1", Pattern: "bad", With: "good"}
	assert.Equal(t, "package a\n// good bad\n", FixContent(t, a, single, "T1", "package a\n// bad bad\n"))
}

func TestWriteCorpus(t *testing.T) {
	dir := t.TempDir()
	WriteCorpus(t, dir, map[string]string{"a/b.go": "package b\n"})
	assert.True(t, FileExists(t, dir, "a/b.go"))
	assert.False(t, FileExists(t, dir, "a/c.go"))
	assert.Equal(t, "package b\n", ReadFile(t, dir, "a/b.go"))
}
