package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDescriptor = Descriptor{
	ID:              "ST9000",
	Name:            "TestRule",
	Category:        "Layout",
	DefaultSeverity: SeverityWarning,
}

func diag(id, doc string, line int) Diagnostic {
	d := NewDiagnostic(Descriptor{ID: id, Name: "Rule" + id}, NewLineLocation(doc, line), "msg")
	d.DocumentID = doc
	return d
}

func TestNewDiagnostic(t *testing.T) {
	d := NewDiagnostic(testDescriptor, NewLineLocation("a.go", 3), "bad line")

	assert.Equal(t, "ST9000", d.RuleID)
	assert.Equal(t, "TestRule", d.RuleName)
	assert.Equal(t, "Layout", d.Category)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.Equal(t, "a.go", d.File())
	assert.Equal(t, 3, d.Line())
}

func TestNewDiagnosticGroup(t *testing.T) {
	tests := []struct {
		name    string
		diags   []Diagnostic
		wantErr string
	}{
		{"empty", nil, "empty"},
		{"mixed ids", []Diagnostic{diag("A", "x.go", 1), diag("B", "x.go", 2)}, "mixes rule ids"},
		{"mixed documents", []Diagnostic{diag("A", "x.go", 1), diag("A", "y.go", 2)}, "spans documents"},
		{"single", []Diagnostic{diag("A", "x.go", 1)}, ""},
		{"many", []Diagnostic{diag("A", "x.go", 1), diag("A", "x.go", 5), diag("A", "x.go", 9)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewDiagnosticGroup(tt.diags)
			if tt.wantErr != "" {
				var pv *PreconditionViolation
				require.ErrorAs(t, err, &pv)
				assert.Contains(t, pv.Error(), tt.wantErr)
				assert.False(t, g.Valid())
				return
			}
			require.NoError(t, err)
			assert.True(t, g.Valid())
			assert.Equal(t, len(tt.diags), g.Len())
			assert.Equal(t, tt.diags[0].RuleID, g.RuleID())
			assert.Equal(t, tt.diags[0].DocumentID, g.DocumentID())
			assert.Equal(t, tt.diags[0], g.First())
			assert.Equal(t, tt.diags, g.Diagnostics())
		})
	}
}

func TestNewDiagnosticGroup_CopiesInput(t *testing.T) {
	ds := []Diagnostic{diag("A", "x.go", 1)}
	g := MustNewDiagnosticGroup(ds)
	ds[0].Message = "mutated"
	assert.Equal(t, "msg", g.First().Message)
}

func TestMustNewDiagnosticGroup_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNewDiagnosticGroup(nil) })
}
