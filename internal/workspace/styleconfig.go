package workspace

import (
	"os"
	"path/filepath"
)

// StyleConfigFileName is the style-configuration document discovered for
// each target.
const StyleConfigFileName = ".editorconfig"

// FindStyleConfig walks up from startDir and returns the path of the nearest
// style-configuration file, or "" when none exists.
func FindStyleConfig(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, StyleConfigFileName)
		if fileExists(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadStyleConfig reads the style-config document. An explicit path must
// exist; otherwise the nearest one above startDir is used, if any.
func loadStyleConfig(explicit, startDir string) (*Document, error) {
	path := explicit
	if path == "" {
		path = FindStyleConfig(startDir)
		if path == "" {
			return nil, nil
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Reason: "cannot resolve style config", Err: err}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Reason: "cannot read style config", Err: err}
	}
	return &Document{
		ID:      abs,
		Name:    filepath.Base(abs),
		Path:    abs,
		Content: data,
	}, nil
}
