package reporter

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// JSONOutput is the top-level structure for JSON output.
type JSONOutput struct {
	// Files contains results grouped by file.
	Files []FileResult `json:"files"`
	// Summary contains aggregate statistics.
	Summary Summary `json:"summary"`
	// FilesScanned is the total number of files scanned.
	FilesScanned int `json:"files_scanned"`
	// RulesEnabled is the number of diagnostic ids that were not excluded.
	RulesEnabled int `json:"rules_enabled"`
}

// FileResult contains the diagnostics for a single file.
type FileResult struct {
	File        string             `json:"file"`
	Diagnostics []rules.Diagnostic `json:"diagnostics"`
}

// Summary contains aggregate statistics about diagnostics.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
	Files    int `json:"files"`
}

// JSONReporter formats diagnostics as JSON output.
type JSONReporter struct {
	writer io.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Report implements Reporter.
func (r *JSONReporter) Report(diags []rules.Diagnostic, _ *workspace.Solution, metadata ReportMetadata) error {
	// Group by file in order of first appearance.
	// Normalize paths to forward slashes for cross-platform consistency
	byFile := make(map[string][]rules.Diagnostic)
	filesOrder := make([]string, 0)

	for _, d := range diags {
		d.Location.File = filepath.ToSlash(d.Location.File)
		file := d.Location.File
		if _, exists := byFile[file]; !exists {
			filesOrder = append(filesOrder, file)
		}
		byFile[file] = append(byFile[file], d)
	}

	output := JSONOutput{
		Files:        make([]FileResult, 0, len(filesOrder)),
		Summary:      calculateSummary(diags, len(filesOrder)),
		FilesScanned: metadata.FilesScanned,
		RulesEnabled: metadata.RulesEnabled,
	}

	for _, file := range filesOrder {
		output.Files = append(output.Files, FileResult{
			File:        file,
			Diagnostics: byFile[file],
		})
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// calculateSummary computes aggregate statistics from diagnostics.
func calculateSummary(diags []rules.Diagnostic, fileCount int) Summary {
	summary := Summary{
		Total: len(diags),
		Files: fileCount,
	}

	for _, d := range diags {
		switch d.Severity {
		case rules.SeverityError:
			summary.Errors++
		case rules.SeverityWarning:
			summary.Warnings++
		case rules.SeverityInfo:
			summary.Info++
		case rules.SeverityDefault, rules.SeverityHidden, rules.SeveritySuppress:
			// Never reported: the engine resolves defaults and drops excluded ids.
		}
	}

	return summary
}
