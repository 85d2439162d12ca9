// Package rules defines the style-rule capability interfaces (analyzers and
// fixers), the diagnostics they produce, and the registry that holds them.
package rules

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// Severity is the reporting level of a diagnostic id.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver per json.Unmarshaler interface
type Severity int

const (
	// SeverityDefault defers to the rule's declared severity.
	SeverityDefault Severity = iota
	// SeverityError reports the diagnostic as an error.
	SeverityError
	// SeverityWarning reports the diagnostic as a warning.
	SeverityWarning
	// SeverityInfo reports the diagnostic as information.
	SeverityInfo
	// SeverityHidden computes the diagnostic but never reports it.
	SeverityHidden
	// SeveritySuppress disables the diagnostic entirely.
	SeveritySuppress
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityDefault:
		return "default"
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHidden:
		return "hidden"
	case SeveritySuppress:
		return "suppress"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a severity string into a Severity value.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "default", "":
		return SeverityDefault, nil
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "hidden":
		return SeverityHidden, nil
	case "suppress", "none", "off":
		return SeveritySuppress, nil
	default:
		return SeverityDefault, fmt.Errorf("unknown severity: %q", s)
	}
}

// IsExcluded reports whether the severity removes a rule from scanning and fixing.
func (s Severity) IsExcluded() bool {
	return s == SeverityHidden || s == SeveritySuppress
}

// SeverityMap maps diagnostic ids to configured severities.
type SeverityMap map[string]Severity

// ParseSeverityMap converts raw id → severity strings. Invalid entries are
// returned in the error and left out of the result.
func ParseSeverityMap(raw map[string]string) (SeverityMap, error) {
	out := make(SeverityMap, len(raw))
	var bad []string
	for id, value := range raw {
		sev, err := ParseSeverity(value)
		if err != nil {
			bad = append(bad, id+"="+value)
			continue
		}
		out[id] = sev
	}
	if len(bad) > 0 {
		return out, fmt.Errorf("invalid severities: %s", strings.Join(bad, ", "))
	}
	return out, nil
}

// Get returns the configured severity for id and whether one was configured.
func (m SeverityMap) Get(id string) (Severity, bool) {
	s, ok := m[id]
	return s, ok
}

// Effective resolves the severity for id, falling back to the declared default
// when the id is unconfigured or configured as "default".
func (m SeverityMap) Effective(id string, declared Severity) Severity {
	if s, ok := m[id]; ok && s != SeverityDefault {
		return s
	}
	if declared == SeverityDefault {
		return SeverityWarning
	}
	return declared
}

// IsExcluded reports whether id is configured suppress or hidden.
func (m SeverityMap) IsExcluded(id string) bool {
	s, ok := m[id]
	return ok && s.IsExcluded()
}

// Merge returns a new map with overrides layered over m. Override entries win.
func (m SeverityMap) Merge(overrides SeverityMap) SeverityMap {
	out := make(SeverityMap, len(m)+len(overrides))
	maps.Copy(out, m)
	maps.Copy(out, overrides)
	return out
}

// rank orders reportable severities; excluded and default levels rank lowest.
func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// IsAtLeast returns true if s is at least as severe as threshold.
// Hidden and suppressed severities never meet a threshold.
func (s Severity) IsAtLeast(threshold Severity) bool {
	if s.rank() == 0 {
		return false
	}
	return s.rank() >= threshold.rank()
}
