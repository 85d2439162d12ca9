package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/moby/patternmatcher"
	"github.com/moby/patternmatcher/ignorefile"
)

// SourcePattern matches Go source files relative to a unit root.
const SourcePattern = "**/*.go"

// IgnoreFileName is the per-unit ignore file, in .dockerignore syntax.
const IgnoreFileName = ".stylistignore"

// walkOptions controls source enumeration below a unit root.
type walkOptions struct {
	// exclude are doublestar patterns matched against absolute paths,
	// base names, and path suffixes.
	exclude []string

	// skipNestedModules stops at subdirectories that have their own go.mod.
	skipNestedModules bool
}

// listSources returns the absolute paths of Go files below root, sorted.
func listSources(root string, opts walkOptions) ([]string, error) {
	ignore, err := loadIgnoreMatcher(root)
	if err != nil {
		return nil, err
	}

	var out []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			if opts.skipNestedModules && fileExists(filepath.Join(path, "go.mod")) {
				return filepath.SkipDir
			}
			if ignore != nil {
				if ok, _ := ignore.MatchesOrParentMatches(rel); ok {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if ok, _ := doublestar.Match(SourcePattern, rel); !ok {
			return nil
		}
		if ignore != nil {
			if ok, _ := ignore.MatchesOrParentMatches(rel); ok {
				return nil
			}
		}
		if isExcluded(path, opts.exclude) {
			return nil
		}
		out = append(out, filepath.Clean(path))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return out, nil
}

// skipDir reports whether the go tool would ignore a directory by name.
func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// loadIgnoreMatcher reads the unit's ignore file. Returns nil when absent.
func loadIgnoreMatcher(root string) (*patternmatcher.PatternMatcher, error) {
	f, err := os.Open(filepath.Join(root, IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	patterns, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	return patternmatcher.New(patterns)
}

// isExcluded checks absPath against exclusion patterns. Each pattern is tried
// against the full path, the base name, and every path suffix, so "gen/*"
// excludes direct children of any gen directory.
func isExcluded(absPath string, excludePatterns []string) bool {
	if len(excludePatterns) == 0 {
		return false
	}
	absPathSlash := filepath.ToSlash(absPath)
	base := filepath.Base(absPath)
	parts := strings.Split(strings.TrimPrefix(absPathSlash, "/"), "/")

	for _, pattern := range excludePatterns {
		pattern = filepath.ToSlash(pattern)

		if matched, err := doublestar.Match(pattern, absPathSlash); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
		for i := range parts {
			subpath := strings.Join(parts[i:], "/")
			if matched, err := doublestar.Match(pattern, subpath); err == nil && matched {
				return true
			}
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
