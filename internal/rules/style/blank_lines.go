package style

import (
	"context"
	"fmt"
	"strings"

	"github.com/wharflab/stylist/internal/rules"
)

// ConsecutiveBlankLinesRuleCode is the id reported for runs of blank lines.
const ConsecutiveBlankLinesRuleCode = "ST1002"

// ConsecutiveBlankLinesRule reports two or more blank lines in a row.
//
// Runs that reach the end of the file belong to FinalNewlineRule. Lines
// inside raw strings and block comments are not considered.
//
// The fixer only handles one run at a time; it has no bulk action.
type ConsecutiveBlankLinesRule struct{}

// NewConsecutiveBlankLinesRule creates a new consecutive-blank-lines rule instance.
func NewConsecutiveBlankLinesRule() *ConsecutiveBlankLinesRule {
	return &ConsecutiveBlankLinesRule{}
}

// Descriptors implements rules.Analyzer.
func (r *ConsecutiveBlankLinesRule) Descriptors() []rules.Descriptor {
	return []rules.Descriptor{r.descriptor()}
}

func (r *ConsecutiveBlankLinesRule) descriptor() rules.Descriptor {
	return descriptor(
		ConsecutiveBlankLinesRuleCode,
		"ConsecutiveBlankLines",
		"Code must not contain multiple blank lines in a row",
		categoryLayout,
		"Reports runs of two or more blank lines followed by more code.",
		rules.SeverityWarning,
	)
}

// Check implements rules.Analyzer.
func (r *ConsecutiveBlankLinesRule) Check(pass *rules.Pass) []rules.Diagnostic {
	desc := r.descriptor()
	var diags []rules.Diagnostic
	for _, f := range pass.Files {
		spans := multilineSpans(f)
		blank := func(i int) bool {
			return strings.TrimSpace(f.Lines[i]) == "" && !startsInside(spans, i+1)
		}

		for i := 0; i < len(f.Lines); {
			if !blank(i) {
				i++
				continue
			}
			j := i
			for j+1 < len(f.Lines) && blank(j+1) {
				j++
			}
			if j > i && hasContentAfter(f.Lines, j) {
				// Keep the first blank line, delete the rest.
				loc := rules.NewRangeLocation(f.Path(), i+2, 0, j+2, 0)
				msg := fmt.Sprintf("%d consecutive blank lines", j-i+1)
				diags = append(diags, f.NewDiagnostic(desc, loc, msg))
			}
			i = j + 1
		}
	}
	return diags
}

func hasContentAfter(lines []string, i int) bool {
	for _, l := range lines[i+1:] {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}

// FixableIDs implements rules.Fixer.
func (r *ConsecutiveBlankLinesRule) FixableIDs() []string {
	return []string{ConsecutiveBlankLinesRuleCode}
}

// Fixes implements rules.Fixer.
func (r *ConsecutiveBlankLinesRule) Fixes(_ context.Context, fc rules.FixContext) ([]rules.FixAction, error) {
	edits := rangeEdits([]rules.Diagnostic{fc.Diagnostic}, "")
	return []rules.FixAction{rules.EditAction("Remove extra blank lines", fc.Document, edits)}, nil
}

// init registers the rule with the default registry.
func init() {
	rules.Register(NewConsecutiveBlankLinesRule())
}
