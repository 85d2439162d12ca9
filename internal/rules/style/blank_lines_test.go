package style

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/testutil"
)

func TestConsecutiveBlankLinesCheck(t *testing.T) {
	t.Parallel()

	testutil.RunRuleTests(t, NewConsecutiveBlankLinesRule(), []testutil.RuleTestCase{
		{
			Name:           "single blank lines",
			Content:        "package x\n\nvar a = 1\n\nvar b = 2\n",
			WantViolations: 0,
		},
		{
			Name:           "two blank lines",
			Content:        "package x\n\n\nfunc f() {}\n",
			WantViolations: 1,
			WantLines:      []int{3},
			WantMessages:   []string{"2 consecutive blank lines"},
		},
		{
			Name:           "two runs",
			Content:        "package x\n\n\nvar a = 1\n\n\n\nvar b = 2\n",
			WantViolations: 2,
			WantLines:      []int{3, 6},
			WantMessages:   []string{"2 consecutive", "3 consecutive"},
		},
		{
			Name:           "run at end of file",
			Content:        "package x\n\n\n",
			WantViolations: 0,
		},
		{
			Name:           "inside raw string",
			Content:        "package x\n\nvar s = `a\n\n\nb`\n",
			WantViolations: 0,
		},
		{
			Name:           "whitespace-only lines count as blank",
			Content:        "package x\n \n\t\nvar a = 1\n",
			WantViolations: 1,
		},
	})
}

func TestConsecutiveBlankLinesFixesOneRun(t *testing.T) {
	t.Parallel()

	r := NewConsecutiveBlankLinesRule()
	got := testutil.FixContent(t, r, r, ConsecutiveBlankLinesRuleCode,
		"package x\n\n\nvar a = 1\n\n\n\nvar b = 2\n")
	assert.Equal(t, "package x\n\nvar a = 1\n\n\n\nvar b = 2\n", got)
}

func TestConsecutiveBlankLinesHasNoBulkFix(t *testing.T) {
	t.Parallel()

	_, ok := any(NewConsecutiveBlankLinesRule()).(rules.BulkFixer)
	assert.False(t, ok)
}

func TestConsecutiveBlankLinesFixMixedLineEndings(t *testing.T) {
	t.Parallel()

	r := NewConsecutiveBlankLinesRule()
	got := testutil.FixContent(t, r, r, ConsecutiveBlankLinesRuleCode,
		"package x\n\r\n\r\n\r\nvar a = 1\r\n")
	assert.Equal(t, "package x\n\r\nvar a = 1\r\n", got)
}
