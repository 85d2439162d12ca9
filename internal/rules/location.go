package rules

// Position represents a single point in a source file.
// Lines are 1-based; columns are 0-based byte offsets within the line.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Location represents a range in a source file.
// Following LSP conventions, Start is inclusive and End is exclusive.
type Location struct {
	// File is the path to the source file.
	File string `json:"file"`
	// Start is the starting position (inclusive).
	Start Position `json:"start"`
	// End is the ending position (exclusive).
	// A point location has End.Line < 0 (unset) or End equals Start.
	End Position `json:"end"`
}

// NewFileLocation creates a location for file-level issues (no specific line).
// Uses -1 as sentinel since 0 would be invalid (lines are 1-based).
func NewFileLocation(file string) Location {
	return Location{
		File:  file,
		Start: Position{Line: -1, Column: -1},
		End:   Position{Line: -1, Column: -1},
	}
}

// NewLineLocation creates a point location at the start of a 1-based line.
func NewLineLocation(file string, line int) Location {
	return Location{
		File:  file,
		Start: Position{Line: line, Column: 0},
		End:   Position{Line: -1, Column: -1},
	}
}

// NewRangeLocation creates a location spanning multiple lines/columns.
// Lines are 1-based, columns are 0-based.
func NewRangeLocation(file string, startLine, startCol, endLine, endCol int) Location {
	return Location{
		File:  file,
		Start: Position{Line: startLine, Column: startCol},
		End:   Position{Line: endLine, Column: endCol},
	}
}

// IsFileLevel returns true if this is a file-level location (no specific line).
func (l Location) IsFileLevel() bool {
	return l.Start.Line < 0
}

// IsPointLocation returns true if this is a single-point location (no range).
func (l Location) IsPointLocation() bool {
	return l.End.Line < 0 || (l.End.Line == l.Start.Line && l.End.Column == l.Start.Column)
}

// Line returns the 1-based start line, or 1 for file-level locations.
func (l Location) Line() int {
	if l.IsFileLevel() {
		return 1
	}
	return l.Start.Line
}
