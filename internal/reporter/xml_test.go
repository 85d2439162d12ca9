package reporter

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLReporter(t *testing.T) {
	diags, sol := sample()

	var buf bytes.Buffer
	require.NoError(t, NewXMLReporter(&buf).Report(diags, sol, ReportMetadata{}))
	require.True(t, strings.HasPrefix(buf.String(), xml.Header))

	var doc StyleCopViolations
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Violations, 3)

	assert.Equal(t, Violation{
		Section:       "shapes.Circle",
		LineNumber:    8,
		Source:        "/src/shapes.go",
		RuleNamespace: "Layout",
		Rule:          "TrailingWhitespace",
		RuleID:        "ST1000",
		Message:       "trailing whitespace",
	}, doc.Violations[0])

	// No type declarations in a.go.
	assert.Empty(t, doc.Violations[1].Section)
	assert.Equal(t, "Documentation", doc.Violations[1].RuleNamespace)

	// No document.
	assert.Empty(t, doc.Violations[2].Section)
	assert.Equal(t, 1, doc.Violations[2].LineNumber)
}

func TestXMLReporterLayout(t *testing.T) {
	diags, sol := sample()

	var buf bytes.Buffer
	require.NoError(t, NewXMLReporter(&buf).Report(diags[:1], sol, ReportMetadata{}))
	out := buf.String()
	assert.Contains(t, out, "<StyleCopViolations>")
	assert.Contains(t, out, "<Violations>")
	assert.Contains(t, out, `<Violation Section="shapes.Circle" LineNumber="8" Source="/src/shapes.go" RuleNamespace="Layout" Rule="TrailingWhitespace" RuleId="ST1000">`)
	assert.Contains(t, out, "<Message>trailing whitespace</Message>")
}

func TestSectionFinder(t *testing.T) {
	s := newSectionFinder()
	content := []byte(sampleSource)

	assert.Equal(t, "shapes.Circle", s.find("doc", content, 4))
	assert.Equal(t, "shapes.Square", s.find("doc", content, 12))
	assert.Equal(t, "shapes.Circle", s.find("doc", content, 8), "method body")
	assert.Equal(t, "shapes.Circle", s.find("doc", content, 1), "falls back to first type")
	assert.Empty(t, s.find("bad", []byte("package x\nfunc ("), 1))
	assert.Empty(t, s.find("none", nil, 1))
}
