// Package catalog resolves the set of rules that take part in a run from the
// registry and the configured severities.
package catalog

import (
	"cmp"
	"slices"

	"github.com/wharflab/stylist/internal/engine"
	"github.com/wharflab/stylist/internal/rules"
)

// Catalog is the active rule set of one run.
type Catalog struct {
	analyzers   []rules.Analyzer
	fixers      []rules.Fixer
	descriptors map[string]rules.Descriptor
	severities  rules.SeverityMap
}

// Load builds a catalog from reg and the configured severities.
//
// An analyzer or fixer is dropped only when every id it supports is
// configured suppress or hidden. The merged severity map holds every
// registered id: configured values win, the rest keep their declared default.
// AnalyzerErrorID is forced to error unless configured.
//
// A nil registry yields an empty catalog.
func Load(reg *rules.Registry, configured rules.SeverityMap) (*Catalog, error) {
	c := &Catalog{
		descriptors: map[string]rules.Descriptor{},
		severities:  rules.SeverityMap{},
	}
	if reg == nil {
		return c, nil
	}

	for _, d := range reg.Descriptors() {
		c.descriptors[d.ID] = d
		c.severities[d.ID] = d.DefaultSeverity
	}
	c.severities[engine.AnalyzerErrorID] = rules.SeverityError
	c.severities = c.severities.Merge(configured)

	for _, a := range reg.Analyzers() {
		if !allExcluded(descriptorIDs(a), c.severities) {
			c.analyzers = append(c.analyzers, a)
		}
	}
	for _, f := range reg.Fixers() {
		if !allExcluded(f.FixableIDs(), c.severities) {
			c.fixers = append(c.fixers, f)
		}
	}
	return c, nil
}

// Analyzers returns the active analyzers ordered by their smallest id.
func (c *Catalog) Analyzers() []rules.Analyzer {
	return slices.Clone(c.analyzers)
}

// Fixers returns the active fixers in registration order.
func (c *Catalog) Fixers() []rules.Fixer {
	return slices.Clone(c.fixers)
}

// Severities returns the merged severity map.
func (c *Catalog) Severities() rules.SeverityMap {
	return c.severities.Merge(nil)
}

// Descriptor returns the registered descriptor for id.
func (c *Catalog) Descriptor(id string) (rules.Descriptor, bool) {
	d, ok := c.descriptors[id]
	return d, ok
}

// Descriptors returns every registered descriptor sorted by id.
func (c *Catalog) Descriptors() []rules.Descriptor {
	out := make([]rules.Descriptor, 0, len(c.descriptors))
	for _, d := range c.descriptors {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b rules.Descriptor) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Rule returns the active analyzer that reports id, or nil.
func (c *Catalog) Rule(id string) rules.Analyzer {
	for _, a := range c.analyzers {
		if slices.Contains(descriptorIDs(a), id) {
			return a
		}
	}
	return nil
}

// FixersFor returns active fixers handling at least one of ids that is not
// excluded.
func (c *Catalog) FixersFor(ids ...string) []rules.Fixer {
	var out []rules.Fixer
	for _, f := range c.fixers {
		for _, id := range f.FixableIDs() {
			if slices.Contains(ids, id) && !c.severities.IsExcluded(id) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// HasFixer reports whether any active fixer handles id.
func (c *Catalog) HasFixer(id string) bool {
	return len(c.FixersFor(id)) > 0
}

// IsExcluded reports whether id is configured suppress or hidden.
func (c *Catalog) IsExcluded(id string) bool {
	return c.severities.IsExcluded(id)
}

func descriptorIDs(a rules.Analyzer) []string {
	ds := a.Descriptors()
	ids := make([]string, 0, len(ds))
	for _, d := range ds {
		ids = append(ids, d.ID)
	}
	return ids
}

func allExcluded(ids []string, severities rules.SeverityMap) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !severities.IsExcluded(id) {
			return false
		}
	}
	return true
}
