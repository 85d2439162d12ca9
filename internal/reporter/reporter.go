// Package reporter provides output formatters for check results.
//
// The package supports multiple output formats:
//   - text: one line per diagnostic, "id : path : line: message"
//   - xml: the legacy StyleCop violations document
//   - json: Machine-readable JSON output
//   - sarif: Static Analysis Results Interchange Format for CI/CD integration
//
// Reporters write diagnostics in the order they are given. Scans already
// produce a stable order, so nothing is re-sorted here.
package reporter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"

	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// ReportMetadata contains contextual information about the check run.
type ReportMetadata struct {
	// FilesScanned is the total number of files that were scanned.
	FilesScanned int
	// RulesEnabled is the number of diagnostic ids that were not excluded.
	RulesEnabled int
}

// Reporter formats and outputs diagnostics.
type Reporter interface {
	// Report writes diagnostics to the configured output. sol supplies the
	// document content some formats inspect; it may be nil.
	Report(diags []rules.Diagnostic, sol *workspace.Solution, metadata ReportMetadata) error
}

// Format represents an output format type.
type Format string

const (
	// FormatText is one line per diagnostic.
	FormatText Format = "text"
	// FormatXML is the legacy StyleCop violations document.
	FormatXML Format = "xml"
	// FormatJSON is machine-readable JSON output.
	FormatJSON Format = "json"
	// FormatSARIF is Static Analysis Results Interchange Format.
	FormatSARIF Format = "sarif"
)

// ErrUnknownFormat is wrapped by ParseFormat and New for unsupported formats.
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat parses a format string into a Format type.
// Returns an error wrapping ErrUnknownFormat if the format is unknown.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "xml":
		return FormatXML, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: text, xml, json, sarif)", ErrUnknownFormat, s)
	}
}

// Options configures reporter creation.
type Options struct {
	// Format specifies the output format.
	Format Format

	// Writer is the output destination.
	Writer io.Writer

	// Color enables/disables colored output (text format only).
	// nil means auto-detect.
	Color *bool

	// Rules describes the catalog; SARIF output uses it for rule metadata.
	Rules []rules.Descriptor

	// ToolVersion is included in SARIF output.
	ToolVersion string

	// ToolName is the tool name for SARIF output.
	ToolName string

	// ToolURI is the tool information URI for SARIF output.
	ToolURI string
}

// DefaultOptions returns sensible defaults for reporter options.
func DefaultOptions() Options {
	return Options{
		Format:      FormatText,
		Writer:      os.Stdout,
		Color:       nil, // auto-detect
		ToolName:    defaultToolName,
		ToolURI:     defaultToolURI,
		ToolVersion: "dev",
	}
}

// New creates a reporter based on the format specified in options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	switch opts.Format {
	case FormatText, "":
		color := termenv.EnvColorProfile() != termenv.Ascii
		if opts.Color != nil {
			color = *opts.Color
		}
		return NewTextReporter(opts.Writer, color), nil

	case FormatXML:
		return NewXMLReporter(opts.Writer), nil

	case FormatJSON:
		return NewJSONReporter(opts.Writer), nil

	case FormatSARIF:
		return NewSARIFReporter(opts.Writer, opts.ToolName, opts.ToolVersion, opts.ToolURI, opts.Rules), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}

// GetWriter returns an io.Writer for the given output path.
// Supports "stdout", "stderr", or file paths.
func GetWriter(path string) (io.Writer, func() error, error) {
	switch path {
	case "stdout", "":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		return f, f.Close, nil
	}
}

// documentContent returns the content of the document a diagnostic belongs
// to, or nil when sol does not have it.
func documentContent(sol *workspace.Solution, d rules.Diagnostic) []byte {
	if sol == nil || d.DocumentID == "" {
		return nil
	}
	doc := sol.Document(d.DocumentID)
	if doc == nil {
		return nil
	}
	return doc.Content
}
