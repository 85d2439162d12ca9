package reporter

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// Default SARIF tool information.
const (
	defaultToolName = "stylist"
	defaultToolURI  = "https://github.com/wharflab/stylist"
)

// SARIFReporter formats diagnostics as SARIF (Static Analysis Results Interchange Format).
// SARIF is a standard format for static analysis tools, widely supported by CI/CD systems
// including GitHub Code Scanning and Azure DevOps.
//
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/
type SARIFReporter struct {
	writer      io.Writer
	toolName    string
	toolVersion string
	toolURI     string
	descriptors map[string]rules.Descriptor
}

// NewSARIFReporter creates a new SARIF reporter. descs supplies rule
// metadata for the ids that appear in the report.
func NewSARIFReporter(w io.Writer, toolName, toolVersion, toolURI string, descs []rules.Descriptor) *SARIFReporter {
	if toolName == "" {
		toolName = defaultToolName
	}
	if toolURI == "" {
		toolURI = defaultToolURI
	}
	byID := make(map[string]rules.Descriptor, len(descs))
	for _, d := range descs {
		byID[d.ID] = d
	}
	return &SARIFReporter{
		writer:      w,
		toolName:    toolName,
		toolVersion: toolVersion,
		toolURI:     toolURI,
		descriptors: byID,
	}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(diags []rules.Diagnostic, _ *workspace.Solution, _ ReportMetadata) error {
	// Create a new SARIF report (v2.1.0 for maximum compatibility)
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI(r.toolName, r.toolURI)
	if r.toolVersion != "" {
		run.Tool.Driver.WithVersion(r.toolVersion)
	}

	// Collect unique rule ids and files
	ruleSet := make(map[string]rules.Diagnostic)
	fileSet := make(map[string]struct{})

	for _, d := range diags {
		if _, exists := ruleSet[d.RuleID]; !exists {
			ruleSet[d.RuleID] = d
		}
		fileSet[filepath.ToSlash(d.Location.File)] = struct{}{}
	}

	ruleIDs := make([]string, 0, len(ruleSet))
	for id := range ruleSet {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)

	for _, id := range ruleIDs {
		rule := run.AddRule(id)
		desc, ok := r.descriptors[id]
		if !ok {
			rule.WithName(ruleSet[id].RuleName)
			continue
		}
		rule.WithName(desc.Name)
		if desc.Title != "" {
			rule.WithShortDescription(sarif.NewMultiformatMessageString().WithText(desc.Title))
		}
		if desc.Description != "" {
			rule.WithFullDescription(sarif.NewMultiformatMessageString().WithText(desc.Description))
		}
		if desc.DocURL != "" {
			rule.WithHelpURI(desc.DocURL)
		}
	}

	files := make([]string, 0, len(fileSet))
	for file := range fileSet {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		run.AddDistinctArtifact(file)
	}

	for _, d := range diags {
		filePath := filepath.ToSlash(d.Location.File)

		result := sarif.NewRuleResult(d.RuleID).
			WithMessage(sarif.NewTextMessage(d.Message)).
			WithLevel(severityToSARIFLevel(d.Severity))

		physicalLocation := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewSimpleArtifactLocation(filePath))

		if !d.Location.IsFileLevel() {
			region := sarif.NewRegion().
				WithStartLine(d.Location.Start.Line)

			if d.Location.Start.Column >= 0 {
				region.WithStartColumn(d.Location.Start.Column + 1) // SARIF uses 1-based columns
			}

			if !d.Location.IsPointLocation() && d.Location.End.Line > 0 {
				region.WithEndLine(d.Location.End.Line)
				if d.Location.End.Column >= 0 {
					region.WithEndColumn(d.Location.End.Column + 1)
				}
			}
			physicalLocation.WithRegion(region)
		}

		result.WithLocations([]*sarif.Location{
			sarif.NewLocationWithPhysicalLocation(physicalLocation),
		})
		run.AddResult(result)
	}

	report.AddRun(run)

	return report.PrettyWrite(r.writer)
}

// SARIF severity levels.
const (
	sarifLevelError   = "error"
	sarifLevelWarning = "warning"
	sarifLevelNote    = "note"
)

// severityToSARIFLevel maps our Severity to SARIF levels.
// SARIF uses: "error", "warning", "note", "none"
func severityToSARIFLevel(s rules.Severity) string {
	switch s {
	case rules.SeverityError:
		return sarifLevelError
	case rules.SeverityWarning:
		return sarifLevelWarning
	case rules.SeverityInfo:
		return sarifLevelNote
	default:
		return sarifLevelWarning
	}
}
