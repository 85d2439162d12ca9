// Package config provides ruleset loading and discovery for stylist.
//
// Configuration is loaded from multiple sources with the following priority
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (STYLIST_* prefix)
//  3. Ruleset file (closest stylist.ruleset.toml or .stylist-ruleset.toml)
//  4. Built-in defaults
//
// Ruleset discovery walks up the filesystem from the first target until a
// ruleset file is found. The closest file wins (no merging).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigFileNames defines the ruleset file names to search for, in priority order.
var ConfigFileNames = []string{"stylist.ruleset.toml", ".stylist-ruleset.toml"}

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "STYLIST_"

// Config represents the complete stylist configuration.
type Config struct {
	// Rules maps diagnostic ids to severities (default, error, warning,
	// info, hidden, suppress).
	Rules map[string]string `json:"rules,omitempty" koanf:"rules,omitempty"`

	// Output configures output format and destination.
	Output OutputConfig `json:"output" koanf:"output"`

	// Scan configures source discovery and parallelism.
	Scan ScanConfig `json:"scan" koanf:"scan"`

	// Fix configures the fix command.
	Fix FixConfig `json:"fix" koanf:"fix"`

	// ConfigFile is the path to the ruleset file that was loaded (if any).
	// This is metadata, not loaded from config.
	ConfigFile string `json:"-" koanf:"-"`
}

// OutputConfig configures output formatting and behavior.
type OutputConfig struct {
	// Format specifies the output format (text, xml, json, sarif).
	Format string `json:"format,omitempty" koanf:"format"`

	// Path specifies where to write output.
	Path string `json:"path,omitempty" koanf:"path"`

	// FailLevel sets the minimum severity level that causes a non-zero exit
	// code. "none" never fails.
	FailLevel string `json:"fail-level,omitempty" koanf:"fail-level"`
}

// ScanConfig configures source discovery.
//
// Example TOML configuration:
//
//	[scan]
//	concurrency = 4
//	exclude = ["gen/**"]
type ScanConfig struct {
	// Concurrency bounds parallel unit loading and scanning (0 = GOMAXPROCS).
	Concurrency int `json:"concurrency,omitempty" koanf:"concurrency"`

	// Exclude holds glob patterns for source files to skip.
	Exclude []string `json:"exclude,omitempty" koanf:"exclude"`
}

// FixConfig configures the fix command.
type FixConfig struct {
	// DryRun computes fixes without writing them.
	DryRun bool `json:"dry-run,omitempty" koanf:"dry-run"`
}

// Default returns the default configuration.
// Rule severities default to what each rule declares.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format:    "text",
			Path:      "stdout",
			FailLevel: "info", // Any reported diagnostic causes exit code 1
		},
	}
}

// Load loads configuration for a target path.
// It discovers the closest ruleset file, loads it, and applies
// environment variable overrides.
func Load(targetPath string) (*Config, error) {
	return loadWithConfigPath(Discover(targetPath))
}

// LoadFromFile loads configuration from a specific ruleset file path.
// Unlike Load, it does not perform discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return loadWithConfigPath(configPath)
}

// loadWithConfigPath is an internal helper that loads config with an optional config file path.
func loadWithConfigPath(configPath string) (*Config, error) {
	return loadWithConfigPathAndOverrides(configPath, nil)
}

func newKoanf() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}
	return k, nil
}

func loadEnv(k *koanf.Koanf) error {
	// STYLIST_OUTPUT_FAIL_LEVEL -> output.fail-level
	// STYLIST_RULES_ST1000 -> rules.ST1000
	return k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil)
}

// knownHyphenatedKeys maps dot-separated patterns to their hyphenated equivalents.
var knownHyphenatedKeys = map[string]string{
	"fail.level": "fail-level",
	"dry.run":    "dry-run",
}

var allowedEnvTopLevelKeys = map[string]struct{}{
	"rules":  {},
	"output": {},
	"scan":   {},
	"fix":    {},
}

// outputAliases are top-level shorthands for [output] keys.
var outputAliases = map[string]bool{
	"format":     true,
	"path":       true,
	"fail-level": true,
}

// envKeyTransform converts environment variable names to config keys.
// STYLIST_FORMAT -> output.format
// STYLIST_RULES_ST1000 -> rules.ST1000
// STYLIST_SCAN_EXCLUDE=a,b -> scan.exclude = [a b]
func envKeyTransform(k, v string) (string, any) {
	s := strings.TrimPrefix(k, EnvPrefix)
	s = strings.ToLower(s)

	// Rule ids are upper case and may not be split on underscores.
	if id, ok := strings.CutPrefix(s, "rules_"); ok {
		return "rules." + strings.ToUpper(id), v
	}

	s = strings.ReplaceAll(s, "_", ".")
	for pattern, replacement := range knownHyphenatedKeys {
		s = strings.ReplaceAll(s, pattern, replacement)
	}
	if outputAliases[s] {
		s = "output." + s
	}

	topLevel := s
	if before, _, ok := strings.Cut(s, "."); ok {
		topLevel = before
	}
	if _, ok := allowedEnvTopLevelKeys[topLevel]; !ok {
		return "", nil
	}

	if s == "scan.exclude" {
		var patterns []string
		for p := range strings.SplitSeq(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		return s, patterns
	}
	return s, v
}

// Discover finds the closest ruleset file for a target path.
// It walks up the directory tree from the target (or its directory, when
// the target is a file), checking for ruleset files at each level.
// Returns empty string if no ruleset file is found.
func Discover(targetPath string) string {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}

	dir := absPath
	if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if fileExists(configPath) {
				return configPath
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return ""
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
