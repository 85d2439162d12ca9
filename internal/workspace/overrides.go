package workspace

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// OverridesFileName is the per-unit settings file.
const OverridesFileName = ".stylist.toml"

// unitSettings is the decoded shape of a unit's .stylist.toml.
//
//	[severity]
//	ST1003 = "suppress"
type unitSettings struct {
	Severity map[string]string `toml:"severity"`
}

// loadOverrides reads the unit severity overrides from dir.
// A missing file yields nil overrides.
func loadOverrides(dir string) (map[string]string, error) {
	path := filepath.Join(dir, OverridesFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &ConfigurationError{Path: path, Reason: "cannot read unit settings", Err: err}
	}
	var s unitSettings
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, &ConfigurationError{Path: path, Reason: "invalid unit settings", Err: err}
	}
	return s.Severity, nil
}
