package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TargetKind classifies a command-line target.
type TargetKind int

const (
	// TargetFile is a single .go source file.
	TargetFile TargetKind = iota
	// TargetDirectory is a directory; all .go files below it form one unit.
	TargetDirectory
	// TargetModule is a go.mod file.
	TargetModule
	// TargetWorkspace is a go.work file; each use directive is one unit.
	TargetWorkspace
)

// String returns the target kind name.
func (k TargetKind) String() string {
	switch k {
	case TargetFile:
		return "file"
	case TargetDirectory:
		return "directory"
	case TargetModule:
		return "module"
	case TargetWorkspace:
		return "workspace"
	default:
		return "unknown"
	}
}

// Target is a resolved command-line target.
type Target struct {
	// Path is the cleaned absolute path.
	Path string
	Kind TargetKind
}

// Dir returns the directory the target lives in (the path itself for
// directory targets).
func (t Target) Dir() string {
	if t.Kind == TargetDirectory {
		return t.Path
	}
	return filepath.Dir(t.Path)
}

// ResolveTarget classifies path by file kind.
func ResolveTarget(path string) (Target, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Target{}, &ConfigurationError{Path: path, Reason: "cannot resolve path", Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Target{}, &ConfigurationError{Path: path, Reason: "target does not exist"}
		}
		return Target{}, &ConfigurationError{Path: path, Reason: "cannot stat target", Err: err}
	}
	if info.IsDir() {
		return Target{Path: abs, Kind: TargetDirectory}, nil
	}

	switch base := filepath.Base(abs); {
	case base == "go.mod":
		return Target{Path: abs, Kind: TargetModule}, nil
	case base == "go.work":
		return Target{Path: abs, Kind: TargetWorkspace}, nil
	case strings.EqualFold(filepath.Ext(base), ".go"):
		return Target{Path: abs, Kind: TargetFile}, nil
	default:
		return Target{}, &ConfigurationError{
			Path:   path,
			Reason: "unsupported target type (expected a .go file, go.mod, go.work, or directory)",
		}
	}
}
