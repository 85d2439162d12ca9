package remediate

import (
	"maps"
	"slices"

	"github.com/wharflab/stylist/internal/fix"
	"github.com/wharflab/stylist/internal/persist"
)

// RuleFailure records a rule pass that failed and was skipped.
type RuleFailure struct {
	Target string
	RuleID string
	Err    error
}

// Summary aggregates one Remediate run.
type Summary struct {
	// Targets is the number of targets processed.
	Targets int

	// RulePasses is the number of rule passes started.
	RulePasses int

	// Diagnostics is the number of diagnostics found across rule passes.
	Diagnostics int

	// Attempts is the number of fix attempts made.
	Attempts int

	// Applied is the number of attempts that produced changes.
	Applied int

	// Skips counts attempts that produced nothing, per reason.
	Skips map[fix.SkipReason]int

	// Files aggregates persisted, skipped, and failed paths.
	Files persist.Result

	// Failures lists rule passes that failed and were skipped.
	Failures []RuleFailure
}

func newSummary() *Summary {
	return &Summary{Skips: map[fix.SkipReason]int{}}
}

// Changed returns the number of documents overwritten.
func (s *Summary) Changed() int { return len(s.Files.Written) }

// Added returns the number of documents created.
func (s *Summary) Added() int { return len(s.Files.Created) }

// Removed returns the number of documents deleted.
func (s *Summary) Removed() int { return len(s.Files.Deleted) }

// SkipReasons returns the reasons with a non-zero count, in enum order.
func (s *Summary) SkipReasons() []fix.SkipReason {
	out := slices.Collect(maps.Keys(s.Skips))
	slices.Sort(out)
	return out
}

func (s *Summary) skip(r fix.SkipReason, n int) {
	if n > 0 {
		s.Skips[r] += n
	}
}
