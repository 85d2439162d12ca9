// Package fix applies a single rule's fix to one document and reports the
// resulting change set.
package fix

import (
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// SkipReason explains why an attempt produced no changes.
type SkipReason int

const (
	// SkipNone means the attempt produced a change set.
	SkipNone SkipReason = iota

	// SkipNoFixer means no fixer handles the rule.
	SkipNoFixer

	// SkipNoAction means the fixer offered no action for the diagnostics.
	SkipNoAction

	// SkipMultiOperation means the action needed more than one operation.
	SkipMultiOperation

	// SkipNoChanges means the action left every document as it was.
	SkipNoChanges

	// SkipResolveError means computing or applying the action failed.
	SkipResolveError

	// SkipStale means an earlier fix already changed the document in this pass.
	SkipStale
)

// String returns a human-readable description of the skip reason.
func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "applied"
	case SkipNoFixer:
		return "no fixer available"
	case SkipNoAction:
		return "fixer offered no action"
	case SkipMultiOperation:
		return "only a single edit operation is supported"
	case SkipNoChanges:
		return "fix produced no changes"
	case SkipResolveError:
		return "fix failed"
	case SkipStale:
		return "document already changed in this pass"
	default:
		return "unknown reason"
	}
}

// Attempt records one fix attempt for one document and one rule.
type Attempt struct {
	// RuleID is the rule being fixed.
	RuleID string

	// Document is the trigger document.
	Document *workspace.Document

	// Group holds the document's diagnostics for RuleID.
	Group rules.DiagnosticGroup

	// Fixer is the fixer that was asked.
	Fixer rules.Fixer

	// Action is the title of the chosen action, if any.
	Action string

	// Bulk reports whether the bulk path was taken.
	Bulk bool

	// Changes is the outcome. Empty when Skip is not SkipNone.
	Changes workspace.ChangeSet

	// Skip explains an empty outcome.
	Skip SkipReason
}

// Applied reports whether the attempt produced changes.
func (a Attempt) Applied() bool {
	return a.Skip == SkipNone && !a.Changes.IsEmpty()
}
