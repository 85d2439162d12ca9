package reporter

import (
	"encoding/xml"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"path/filepath"

	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// StyleCopViolations is the root of the legacy XML report.
type StyleCopViolations struct {
	XMLName    xml.Name    `xml:"StyleCopViolations"`
	Violations []Violation `xml:"Violations>Violation"`
}

// Violation is one diagnostic in the legacy XML report.
type Violation struct {
	Section       string `xml:"Section,attr"`
	LineNumber    int    `xml:"LineNumber,attr"`
	Source        string `xml:"Source,attr"`
	RuleNamespace string `xml:"RuleNamespace,attr"`
	Rule          string `xml:"Rule,attr"`
	RuleID        string `xml:"RuleId,attr"`
	Message       string `xml:"Message"`
}

// XMLReporter writes the legacy StyleCop violations document.
type XMLReporter struct {
	writer io.Writer
}

// NewXMLReporter creates a new XML reporter.
func NewXMLReporter(w io.Writer) *XMLReporter {
	return &XMLReporter{writer: w}
}

// Report implements Reporter.
func (r *XMLReporter) Report(diags []rules.Diagnostic, sol *workspace.Solution, _ ReportMetadata) error {
	sections := newSectionFinder()
	doc := StyleCopViolations{Violations: make([]Violation, 0, len(diags))}
	for _, d := range diags {
		doc.Violations = append(doc.Violations, Violation{
			Section:       sections.find(d.DocumentID, documentContent(sol, d), d.Line()),
			LineNumber:    d.Line(),
			Source:        filepath.ToSlash(d.File()),
			RuleNamespace: d.Category,
			Rule:          d.RuleName,
			RuleID:        d.RuleID,
			Message:       d.Message,
		})
	}

	if _, err := io.WriteString(r.writer, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(r.writer)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(r.writer, "\n")
	return err
}

// typeSpan is one type declaration and the lines it covers.
type typeSpan struct {
	name       string
	start, end int
}

// sectionFinder resolves the best-effort enclosing type of a line.
// Parsed files are cached per document.
type sectionFinder struct {
	cache map[string]fileTypes
}

type fileTypes struct {
	pkg     string
	types   []typeSpan
	methods []typeSpan
}

func newSectionFinder() *sectionFinder {
	return &sectionFinder{cache: map[string]fileTypes{}}
}

// find returns "<package>.<Type>" for the type declaration or method
// containing line, else for the file's first type declaration, else "".
func (s *sectionFinder) find(docID string, content []byte, line int) string {
	if content == nil {
		return ""
	}
	ft, ok := s.cache[docID]
	if !ok {
		ft = collectTypes(content)
		s.cache[docID] = ft
	}
	for _, spans := range [][]typeSpan{ft.types, ft.methods} {
		for _, t := range spans {
			if line >= t.start && line <= t.end {
				return ft.pkg + "." + t.name
			}
		}
	}
	if len(ft.types) == 0 {
		return ""
	}
	return ft.pkg + "." + ft.types[0].name
}

func collectTypes(content []byte) fileTypes {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", content, parser.SkipObjectResolution)
	if err != nil {
		return fileTypes{}
	}
	ft := fileTypes{pkg: f.Name.Name}
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			if name := receiverType(fn); name != "" {
				ft.methods = append(ft.methods, typeSpan{
					name:  name,
					start: fset.Position(fn.Pos()).Line,
					end:   fset.Position(fn.End()).Line,
				})
			}
			continue
		}
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			ft.types = append(ft.types, typeSpan{
				name:  ts.Name.Name,
				start: fset.Position(ts.Pos()).Line,
				end:   fset.Position(ts.End()).Line,
			})
		}
	}
	return ft
}

// receiverType returns the base type name of a method receiver.
func receiverType(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	expr := fn.Recv.List[0].Type
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.Ident:
			return t.Name
		default:
			return ""
		}
	}
}
