package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/testutil"
)

func TestLineTooLongCheck(t *testing.T) {
	t.Parallel()

	testutil.RunRuleTests(t, NewLineTooLongRule(), []testutil.RuleTestCase{
		{
			Name:           "default limit",
			Content:        "package x\n\n// " + strings.Repeat("a", 130) + "\n",
			WantViolations: 1,
			WantLines:      []int{3},
			WantMessages:   []string{"133 columns long, maximum is 120"},
		},
		{
			Name:           "configured limit",
			Content:        "package x\n\nvar abcdefghij = 1234567890\n",
			Style:          map[string]string{"max_line_length": "20"},
			WantViolations: 1,
			WantMessages:   []string{"27 columns"},
		},
		{
			Name:           "off",
			Content:        "package x\n\n// " + strings.Repeat("a", 300) + "\n",
			Style:          map[string]string{"max_line_length": "off"},
			WantViolations: 0,
		},
		{
			Name:           "tabs expand",
			Content:        "package x\n\nfunc f() {\n\t\treturn\n}\n",
			Style:          map[string]string{"max_line_length": "10", "tab_width": "8"},
			WantViolations: 1,
			WantLines:      []int{4},
			WantMessages:   []string{"22 columns"},
		},
		{
			Name:           "runes not bytes",
			Content:        "package x\n\n// " + strings.Repeat("é", 10) + "\n",
			Style:          map[string]string{"max_line_length": "13"},
			WantViolations: 0,
		},
	})
}

func TestDisplayWidth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, displayWidth("", 4))
	assert.Equal(t, 4, displayWidth("\t", 4))
	assert.Equal(t, 4, displayWidth("ab\t", 4))
	assert.Equal(t, 5, displayWidth("ab\tc", 4))
	assert.Equal(t, 3, displayWidth("a\tb", 0))
}

func TestLineTooLongHasNoFixer(t *testing.T) {
	t.Parallel()

	_, ok := any(NewLineTooLongRule()).(rules.Fixer)
	assert.False(t, ok)
}
