package rules

import (
	"fmt"
	"slices"
)

// Diagnostic is a single reported rule violation.
// Diagnostics are values: scans produce fresh ones and nothing mutates them.
type Diagnostic struct {
	// RuleID is the diagnostic id (e.g., "ST1000").
	RuleID string `json:"id"`

	// RuleName is the descriptor title in CamelCase form.
	RuleName string `json:"rule"`

	// Category groups related rules (e.g., "Layout", "Documentation").
	Category string `json:"category"`

	// Location specifies where the violation occurred.
	Location Location `json:"location"`

	// Message is a human-readable description of the issue.
	Message string `json:"message"`

	// Severity is the effective severity after configuration was applied.
	Severity Severity `json:"severity"`

	// DocumentID identifies the workspace document the diagnostic belongs to.
	DocumentID string `json:"-"`
}

// NewDiagnostic creates a diagnostic for descriptor d.
func NewDiagnostic(d Descriptor, loc Location, message string) Diagnostic {
	return Diagnostic{
		RuleID:   d.ID,
		RuleName: d.Name,
		Category: d.Category,
		Location: loc,
		Message:  message,
		Severity: d.DefaultSeverity,
	}
}

// File returns the file path from the location.
func (d Diagnostic) File() string {
	return d.Location.File
}

// Line returns the 1-based starting line.
func (d Diagnostic) Line() int {
	return d.Location.Line()
}

// PreconditionViolation reports a programmer error in how the fix pipeline
// was called. It is never recovered locally.
type PreconditionViolation struct {
	Reason string
}

func (e *PreconditionViolation) Error() string {
	return "precondition violation: " + e.Reason
}

// DiagnosticGroup is a non-empty set of diagnostics sharing one rule id and
// one document. The zero value is invalid.
type DiagnosticGroup struct {
	ruleID      string
	documentID  string
	diagnostics []Diagnostic
}

// NewDiagnosticGroup validates ds and wraps it in a group.
// It fails when ds is empty, mixes rule ids, or spans documents.
func NewDiagnosticGroup(ds []Diagnostic) (DiagnosticGroup, error) {
	if len(ds) == 0 {
		return DiagnosticGroup{}, &PreconditionViolation{Reason: "diagnostic group is empty"}
	}
	first := ds[0]
	for _, d := range ds[1:] {
		if d.RuleID != first.RuleID {
			return DiagnosticGroup{}, &PreconditionViolation{
				Reason: fmt.Sprintf("diagnostic group mixes rule ids %q and %q", first.RuleID, d.RuleID),
			}
		}
		if d.DocumentID != first.DocumentID {
			return DiagnosticGroup{}, &PreconditionViolation{
				Reason: fmt.Sprintf("diagnostic group spans documents %q and %q", first.DocumentID, d.DocumentID),
			}
		}
	}
	return DiagnosticGroup{
		ruleID:      first.RuleID,
		documentID:  first.DocumentID,
		diagnostics: slices.Clone(ds),
	}, nil
}

// MustNewDiagnosticGroup is like NewDiagnosticGroup but panics on invalid input.
func MustNewDiagnosticGroup(ds []Diagnostic) DiagnosticGroup {
	g, err := NewDiagnosticGroup(ds)
	if err != nil {
		panic(err)
	}
	return g
}

// Valid reports whether g was built by NewDiagnosticGroup.
func (g DiagnosticGroup) Valid() bool {
	return len(g.diagnostics) > 0
}

// RuleID returns the shared rule id.
func (g DiagnosticGroup) RuleID() string {
	return g.ruleID
}

// DocumentID returns the shared document id.
func (g DiagnosticGroup) DocumentID() string {
	return g.documentID
}

// Len returns the number of diagnostics.
func (g DiagnosticGroup) Len() int {
	return len(g.diagnostics)
}

// First returns the first diagnostic in scan order.
func (g DiagnosticGroup) First() Diagnostic {
	return g.diagnostics[0]
}

// Diagnostics returns a copy of the diagnostics in scan order.
func (g DiagnosticGroup) Diagnostics() []Diagnostic {
	return slices.Clone(g.diagnostics)
}
