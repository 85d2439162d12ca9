package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharflab/stylist/internal/testutil"
)

func TestEmptyFileCheck(t *testing.T) {
	t.Parallel()

	r := NewEmptyFileRule()
	tests := []struct {
		name string
		b    string
		want int
	}{
		{name: "package clause only", b: "package x\n", want: 1},
		{name: "with comment", b: "package x\n\n// nothing yet\n", want: 0},
		{name: "with doc", b: "// Package x.\npackage x\n", want: 0},
		{name: "with import", b: "package x\n\nimport _ \"embed\"\n", want: 0},
		{name: "does not parse", b: "package x\nfunc (", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pass := testutil.MakePass(t, nil,
				testutil.Source{Name: "a.go", Content: "package x\n\nfunc A() {}\n"},
				testutil.Source{Name: "b.go", Content: tt.b},
			)
			diags := r.Check(pass)
			testutil.AssertViolationCount(t, diags, tt.want)
			if tt.want > 0 {
				assert.Equal(t, testutil.TestDir+"/b.go", diags[0].File())
			}
		})
	}
}

func TestEmptyFileKeepsOnlyFile(t *testing.T) {
	t.Parallel()

	testutil.RunRuleTests(t, NewEmptyFileRule(), []testutil.RuleTestCase{
		{Name: "only file in directory", Content: "package x\n", WantViolations: 0},
	})
}

func TestEmptyFileFixRemovesDocument(t *testing.T) {
	t.Parallel()

	r := NewEmptyFileRule()
	after, cs := testutil.FixOnce(t, r, r, EmptyFileRuleCode,
		testutil.Source{Name: "a.go", Content: "package x\n\nfunc A() {}\n"},
		testutil.Source{Name: "b.go", Content: "package x\n"},
	)
	require.Len(t, cs.Removed, 1)
	assert.Equal(t, testutil.TestDir+"/b.go", cs.Removed[0].ID)
	assert.Nil(t, after.Document(testutil.TestDir+"/b.go"))
}
