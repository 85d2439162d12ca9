package rules

import (
	"bytes"
	"errors"
	"slices"
	"strings"
)

// TextEdit represents a single text replacement in a file.
type TextEdit struct {
	// Location specifies where to apply the edit.
	Location Location `json:"location"`
	// NewText is the text to insert/replace with. Empty string means delete.
	NewText string `json:"newText"`
}

// ErrOverlappingEdits is returned by ApplyEdits when two edits overlap.
var ErrOverlappingEdits = errors.New("overlapping text edits")

// ApplyEdits applies edits to content and returns the new content.
// Edits must not overlap. They are applied from the end of the file towards
// the start so earlier positions stay valid.
func ApplyEdits(content []byte, edits []TextEdit) ([]byte, error) {
	sorted := slices.Clone(edits)
	for i := range sorted {
		if sorted[i].Location.IsPointLocation() {
			sorted[i].Location.End = sorted[i].Location.Start
		}
	}
	slices.SortStableFunc(sorted, func(a, b TextEdit) int {
		if a.Location.Start.Line != b.Location.Start.Line {
			return b.Location.Start.Line - a.Location.Start.Line
		}
		return b.Location.Start.Column - a.Location.Start.Column
	})
	for i := 1; i < len(sorted); i++ {
		if editsOverlap(sorted[i-1], sorted[i]) {
			return nil, ErrOverlappingEdits
		}
	}

	out := content
	for _, e := range sorted {
		out = applyEdit(out, e)
	}
	return out, nil
}

// editsOverlap checks if two edits overlap in their locations.
func editsOverlap(a, b TextEdit) bool {
	aStart, aEnd := a.Location.Start, a.Location.End
	bStart, bEnd := b.Location.Start, b.Location.End

	// A is completely before B
	if aEnd.Line < bStart.Line ||
		(aEnd.Line == bStart.Line && aEnd.Column <= bStart.Column) {
		return false
	}

	// B is completely before A
	if bEnd.Line < aStart.Line ||
		(bEnd.Line == aStart.Line && bEnd.Column <= aStart.Column) {
		return false
	}

	return true
}

// applyEdit applies a single text edit to content.
// The edit replaces the range [Start, End) with NewText.
//
// Lines are numbered by splitting on "\n", the same way analyzers see them.
// A trailing "\r" belongs to its line's ending, so files with mixed line
// endings keep every line's own terminator.
func applyEdit(content []byte, edit TextEdit) []byte {
	lines := bytes.Split(content, []byte("\n"))
	crlf := make([]bool, len(lines))
	for i, l := range lines {
		if trimmed, ok := bytes.CutSuffix(l, []byte("\r")); ok {
			lines[i] = trimmed
			crlf[i] = true
		}
	}

	startLine := edit.Location.Start.Line - 1
	startCol := edit.Location.Start.Column
	endLine := edit.Location.End.Line - 1
	endCol := edit.Location.End.Column

	if edit.Location.IsPointLocation() {
		endLine, endCol = startLine, startCol
	}

	if startLine < 0 || startLine >= len(lines) {
		return content
	}
	if endLine < 0 || endLine >= len(lines) {
		return content
	}

	startCol = clamp(startCol, 0, len(lines[startLine]))
	endCol = clamp(endCol, 0, len(lines[endLine]))

	var result bytes.Buffer
	writeEnding := func(i int) {
		if crlf[i] {
			result.WriteByte('\r')
		}
		if i < len(lines)-1 {
			result.WriteByte('\n')
		}
	}

	for i := range startLine {
		result.Write(lines[i])
		writeEnding(i)
	}

	result.Write(lines[startLine][:startCol])

	// Newlines in the replacement follow the edited line's ending style.
	newText := strings.ReplaceAll(edit.NewText, "\r\n", "\n")
	if usesCRLF(crlf, startLine) {
		newText = strings.ReplaceAll(newText, "\n", "\r\n")
	}
	result.WriteString(newText)

	result.Write(lines[endLine][endCol:])
	writeEnding(endLine)

	for i := endLine + 1; i < len(lines); i++ {
		result.Write(lines[i])
		writeEnding(i)
	}

	return result.Bytes()
}

// usesCRLF reports the line ending style at line i. The unterminated last
// line takes the style of the line before it.
func usesCRLF(crlf []bool, i int) bool {
	if i == len(crlf)-1 && !crlf[i] && i > 0 {
		return crlf[i-1]
	}
	return crlf[i]
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
