package registry

import (
	"fmt"

	"featrank/domain/core"
)

// Registry is the canonical ordered list of feature names shared by every
// model and every resampling iteration within a run. It is established once
// per run and read-only afterwards; rank tie-breaking relies on its order.
type Registry struct {
	names []string
	index map[string]int
}

// New creates a registry from an ordered feature list.
// Names must be unique and non-empty.
func New(names []string) (*Registry, error) {
	if len(names) == 0 {
		return nil, core.ErrEmptyRegistry
	}

	index := make(map[string]int, len(names))
	ordered := make([]string, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("feature name at position %d is empty", i)
		}
		if _, exists := index[name]; exists {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateKey, name)
		}
		index[name] = i
		ordered[i] = name
	}

	return &Registry{names: ordered, index: index}, nil
}

// Names returns a copy of the ordered feature names
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered features
func (r *Registry) Len() int {
	return len(r.names)
}

// Index returns the registry position of a feature
func (r *Registry) Index(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Contains reports whether a feature is registered
func (r *Registry) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// WorstRank is the sentinel rank assigned to features a model never scored.
// It equals the registry size, the worst possible rank.
func (r *Registry) WorstRank() int {
	return len(r.names)
}

// Validate checks every key of an importance vector against the registry.
// An unknown feature is a contract violation upstream and must abort the run.
func (r *Registry) Validate(scores map[string]float64) error {
	for name := range scores {
		if !r.Contains(name) {
			return core.NewSchemaMismatchError(name)
		}
	}
	return nil
}

// Hash fingerprints the registry (order-sensitive)
func (r *Registry) Hash() core.RegistryHash {
	return core.ComputeRegistryHash(r.names)
}
