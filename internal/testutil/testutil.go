// Package testutil provides test helpers for rules and the fix pipeline.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/rules"
	"github.com/wharflab/stylist/internal/workspace"
)

// TestDir is the directory in-memory test projects pretend to live in.
const TestDir = "/src"

// Source is a named in-memory source file.
type Source struct {
	Name    string
	Content string
}

// MakeProject builds a project under TestDir from sources.
func MakeProject(tb testing.TB, sources ...Source) *workspace.Project {
	tb.Helper()

	p := &workspace.Project{ID: TestDir, Name: "test", Dir: TestDir}
	for _, s := range sources {
		path := filepath.Join(TestDir, s.Name)
		p.Documents = append(p.Documents, &workspace.Document{
			ID:        path,
			ProjectID: p.ID,
			Name:      filepath.Base(s.Name),
			Path:      path,
			Content:   []byte(s.Content),
		})
	}
	return p
}

// MakePass creates an analyzer pass over sources with the given style
// properties applied to every file.
func MakePass(tb testing.TB, style map[string]string, sources ...Source) *rules.Pass {
	tb.Helper()

	p := MakeProject(tb, sources...)
	files := engine.PrepareFiles(context.Background(), p)
	for _, f := range files {
		f.Style = map[string]string{}
		for k, v := range style {
			f.Style[k] = v
		}
	}
	return &rules.Pass{Project: p, Files: files}
}

// RuleTestCase defines a test case for analyzer testing.
type RuleTestCase struct {
	// Name is the test case name.
	Name string

	// Content is the Go source of a single file named "x.go".
	Content string

	// Style holds style properties for the file.
	Style map[string]string

	// WantViolations is the expected number of violations.
	// Use -1 to skip the count check.
	WantViolations int

	// WantCodes is the expected rule ids in diagnostic order.
	WantCodes []string

	// WantLines is the expected 1-based lines in diagnostic order.
	WantLines []int

	// WantMessages are substrings expected in diagnostic messages.
	WantMessages []string
}

// RunRuleTests runs a table of test cases against an analyzer.
func RunRuleTests(t *testing.T, a rules.Analyzer, cases []RuleTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			pass := MakePass(t, tc.Style, Source{Name: "x.go", Content: tc.Content})
			diags := a.Check(pass)

			if tc.WantViolations >= 0 && len(diags) != tc.WantViolations {
				t.Errorf("got %d diagnostics, want %d", len(diags), tc.WantViolations)
				for i, d := range diags {
					t.Logf("  [%d] %s line %d: %s", i, d.RuleID, d.Line(), d.Message)
				}
			}

			if len(tc.WantCodes) > 0 {
				if len(diags) != len(tc.WantCodes) {
					t.Errorf("got %d diagnostics, want %d", len(diags), len(tc.WantCodes))
				} else {
					for i, code := range tc.WantCodes {
						if diags[i].RuleID != code {
							t.Errorf("diagnostic[%d].RuleID = %q, want %q", i, diags[i].RuleID, code)
						}
					}
				}
			}

			if len(tc.WantLines) > 0 {
				if len(diags) != len(tc.WantLines) {
					t.Errorf("got %d diagnostics, want %d", len(diags), len(tc.WantLines))
				} else {
					for i, line := range tc.WantLines {
						if diags[i].Line() != line {
							t.Errorf("diagnostic[%d].Line() = %d, want %d", i, diags[i].Line(), line)
						}
					}
				}
			}

			for i, msg := range tc.WantMessages {
				if i >= len(diags) {
					t.Errorf("expected diagnostic[%d] with message containing %q, but only got %d", i, msg, len(diags))
					continue
				}
				if !strings.Contains(diags[i].Message, msg) {
					t.Errorf("diagnostic[%d].Message = %q, want substring %q", i, diags[i].Message, msg)
				}
			}
		})
	}
}

// AssertNoViolations fails the test if there are any diagnostics.
func AssertNoViolations(tb testing.TB, diags []rules.Diagnostic) {
	tb.Helper()
	if len(diags) > 0 {
		tb.Errorf("expected no diagnostics, got %d:", len(diags))
		for _, d := range diags {
			tb.Logf("  - %s at line %d: %s", d.RuleID, d.Line(), d.Message)
		}
	}
}

// AssertViolationCount fails if the diagnostic count doesn't match.
func AssertViolationCount(tb testing.TB, diags []rules.Diagnostic, want int) {
	tb.Helper()
	if len(diags) != want {
		tb.Errorf("got %d diagnostics, want %d", len(diags), want)
		for _, d := range diags {
			tb.Logf("  - %s at line %d: %s", d.RuleID, d.Line(), d.Message)
		}
	}
}

// WriteCorpus writes files (slash-separated relative paths) below root.
func WriteCorpus(tb testing.TB, root string, files map[string]string) {
	tb.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			tb.Fatalf("write %s: %v", path, err)
		}
	}
}

// ReadFile returns the content of root/rel.
func ReadFile(tb testing.TB, root, rel string) string {
	tb.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		tb.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

// FileExists reports whether root/rel exists.
func FileExists(tb testing.TB, root, rel string) bool {
	tb.Helper()
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}
