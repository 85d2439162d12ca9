package rules

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Registry holds analyzers and fixers. Rules are registered explicitly,
// usually from init functions.
type Registry struct {
	mu        sync.RWMutex
	analyzers map[string]Analyzer
	byID      map[string]Descriptor
	fixers    []Fixer
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		analyzers: make(map[string]Analyzer),
		byID:      make(map[string]Descriptor),
	}
}

// Register adds an analyzer. An analyzer that also implements Fixer is
// registered as a fixer too.
// Panics if any of its ids is already registered.
func (r *Registry) Register(a Analyzer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range a.Descriptors() {
		if _, exists := r.byID[d.ID]; exists {
			panic(fmt.Sprintf("rule %q already registered", d.ID))
		}
	}
	for _, d := range a.Descriptors() {
		r.byID[d.ID] = d
		r.analyzers[d.ID] = a
	}
	if f, ok := a.(Fixer); ok {
		r.fixers = append(r.fixers, f)
	}
}

// RegisterFixer adds a standalone fixer.
func (r *Registry) RegisterFixer(f Fixer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fixers = append(r.fixers, f)
}

// Get returns the analyzer reporting id, or nil.
func (r *Registry) Get(id string) Analyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.analyzers[id]
}

// Has returns true if an analyzer reports id.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.analyzers[id]
	return exists
}

// Descriptor returns the descriptor for id.
func (r *Registry) Descriptor(id string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	return d, ok
}

// Descriptors returns every registered descriptor sorted by id.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Descriptor) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Analyzers returns every analyzer once, ordered by its smallest id.
func (r *Registry) Analyzers() []Analyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Analyzer
	for _, id := range r.codesLocked() {
		a := r.analyzers[id]
		if firstID(a) == id {
			out = append(out, a)
		}
	}
	return out
}

// Fixers returns the fixers in registration order.
func (r *Registry) Fixers() []Fixer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.fixers)
}

// Codes returns all registered ids sorted.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.codesLocked()
}

func (r *Registry) codesLocked() []string {
	codes := make([]string, 0, len(r.byID))
	for id := range r.byID {
		codes = append(codes, id)
	}
	slices.Sort(codes)
	return codes
}

// firstID returns the smallest id an analyzer reports.
func firstID(a Analyzer) string {
	ids := make([]string, 0, len(a.Descriptors()))
	for _, d := range a.Descriptors() {
		ids = append(ids, d.ID)
	}
	return slices.Min(ids)
}

// defaultRegistry is the global default registry.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the global default registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds an analyzer to the default registry.
func Register(a Analyzer) {
	defaultRegistry.Register(a)
}

// RegisterFixer adds a fixer to the default registry.
func RegisterFixer(f Fixer) {
	defaultRegistry.RegisterFixer(f)
}

// Get retrieves an analyzer from the default registry.
func Get(id string) Analyzer {
	return defaultRegistry.Get(id)
}

// Codes returns all ids from the default registry.
func Codes() []string {
	return defaultRegistry.Codes()
}
