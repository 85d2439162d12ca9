package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.yaml.in/yaml/v4"
)

// LoadWithOverrides loads configuration from configPath (empty means
// discover from targetPath) and applies overrides on top.
//
// Overrides are expected to use the same (nested) shape as the ruleset file,
// for example:
//
//	overrides := map[string]any{
//	  "output": map[string]any{"format": "json"},
//	  "fix":    map[string]any{"dry-run": true},
//	}
//
// Precedence: defaults → ruleset file → env → overrides.
func LoadWithOverrides(targetPath, configPath string, overrides map[string]any) (*Config, error) {
	if configPath == "" {
		configPath = Discover(targetPath)
	}
	return loadWithConfigPathAndOverrides(configPath, overrides)
}

func loadWithConfigPathAndOverrides(configPath string, overrides map[string]any) (*Config, error) {
	k, err := newKoanf()
	if err != nil {
		return nil, err
	}

	if err := loadConfigFile(k, configPath); err != nil {
		return nil, err
	}
	if err := loadEnv(k); err != nil {
		return nil, err
	}
	if err := loadOverrides(k, overrides); err != nil {
		return nil, err
	}

	cfg, err := decodeConfig(k.Raw())
	if err != nil {
		if configPath != "" {
			return nil, fmt.Errorf("%s: %w", configPath, err)
		}
		return nil, err
	}

	cfg.ConfigFile = configPath
	return cfg, nil
}

// loadConfigFile loads a TOML or YAML ruleset file. The format follows the
// file extension; anything that is not .yaml or .yml is read as TOML.
// Aliases and [[rule]] entries are folded within the file before it is
// layered over the defaults, so they win over defaults but not over env.
func loadConfigFile(k *koanf.Koanf, configPath string) error {
	if configPath == "" {
		return nil
	}
	fk := koanf.New(".")
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("read ruleset: %w", err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parse ruleset %s: %w", configPath, err)
		}
		if err := fk.Load(confmap.Provider(raw, ""), nil); err != nil {
			return fmt.Errorf("load ruleset %s: %w", configPath, err)
		}
	default:
		if err := fk.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return fmt.Errorf("load ruleset %s: %w", configPath, err)
		}
	}

	raw := fk.Raw()
	normalizeOutputAliases(raw)
	if err := normalizeRuleEntries(raw); err != nil {
		return fmt.Errorf("%s: %w", configPath, err)
	}
	return k.Load(confmap.Provider(raw, ""), nil)
}

func loadOverrides(k *koanf.Koanf, overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	return k.Load(confmap.Provider(overrides, ""), nil)
}
