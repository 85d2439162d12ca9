package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/wharflab/stylist/internal/rules"
)

// FailLevelNone disables the failing exit code.
const FailLevelNone = "none"

var allowedTopLevelKeys = []string{"fix", "output", "rules", "scan"}

func decodeConfig(raw map[string]any) (*Config, error) {
	normalizeOutputAliases(raw)
	if err := normalizeRuleEntries(raw); err != nil {
		return nil, err
	}
	if err := validateKeys(raw); err != nil {
		return nil, err
	}

	normalized := koanf.New(".")
	if err := normalized.Load(confmap.Provider(raw, ""), nil); err != nil {
		return nil, fmt.Errorf("load normalized config: %w", err)
	}

	var cfg Config
	if err := normalized.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeOutputAliases(raw map[string]any) {
	outputRaw, ok := raw["output"].(map[string]any)
	if !ok || outputRaw == nil {
		outputRaw = make(map[string]any)
		raw["output"] = outputRaw
	}

	for key := range outputAliases {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if _, exists := outputRaw[key]; !exists {
			outputRaw[key] = value
		}
		delete(raw, key)
	}
}

// normalizeRuleEntries folds [[rule]] id/severity entries into the [rules]
// table. Entries win over the table.
func normalizeRuleEntries(raw map[string]any) error {
	entries, ok := raw["rule"]
	if !ok {
		return nil
	}
	delete(raw, "rule")

	list, ok := entries.([]any)
	if !ok {
		return errors.New("rule: expected a list of {id, severity} entries")
	}
	rulesRaw, ok := raw["rules"].(map[string]any)
	if !ok || rulesRaw == nil {
		rulesRaw = make(map[string]any)
		raw["rules"] = rulesRaw
	}
	for i, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			return fmt.Errorf("rule[%d]: expected a table", i)
		}
		id, _ := obj["id"].(string)
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("rule[%d]: missing id", i)
		}
		severity, _ := obj["severity"].(string)
		rulesRaw[id] = severity
	}
	return nil
}

func validateKeys(raw map[string]any) error {
	var unknown []string
	for key := range raw {
		if !slices.Contains(allowedTopLevelKeys, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown config keys: %s", strings.Join(unknown, ", "))
	}

	rulesRaw, ok := raw["rules"].(map[string]any)
	if !ok {
		return nil
	}
	for id, value := range rulesRaw {
		if _, ok := value.(string); !ok {
			return fmt.Errorf("rules.%s: severity must be a string, got %T", id, value)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if _, err := c.Severities(); err != nil {
		return err
	}
	if _, _, err := c.FailSeverity(); err != nil {
		return err
	}
	if c.Scan.Concurrency < 0 {
		return fmt.Errorf("scan.concurrency must not be negative, got %d", c.Scan.Concurrency)
	}
	return nil
}

// Severities returns the configured rule severities.
func (c *Config) Severities() (rules.SeverityMap, error) {
	return rules.ParseSeverityMap(c.Rules)
}

// FailSeverity parses Output.FailLevel. never is true for "none".
func (c *Config) FailSeverity() (threshold rules.Severity, never bool, err error) {
	if strings.EqualFold(strings.TrimSpace(c.Output.FailLevel), FailLevelNone) {
		return rules.SeverityDefault, true, nil
	}
	sev, err := rules.ParseSeverity(c.Output.FailLevel)
	if err != nil {
		return rules.SeverityDefault, false, fmt.Errorf("output.fail-level: %w", err)
	}
	if sev.IsExcluded() {
		return rules.SeverityDefault, false, fmt.Errorf("output.fail-level: %q is not a reporting level", c.Output.FailLevel)
	}
	return sev, false, nil
}
