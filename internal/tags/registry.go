package tags

import (
	"fmt"
	"sort"
)

// conflictDamping is how strongly a newly applied tag suppresses each
// conflicting tag already present on an element.
const conflictDamping = 0.7

// #region registry-struct

// Registry is the static catalog of UI tags and their mutual conflicts.
// Read-only after construction, safe for concurrent readers.
type Registry struct {
	tags      map[string]Tag
	conflicts map[string]map[string]bool
}

// #endregion registry-struct

// #region constructor

// NewRegistry builds a registry from a catalog. Conflict declarations are
// completed to be symmetric: declaring A conflicts-with B implies B
// conflicts-with A once both are registered.
func NewRegistry(catalog []Tag) (*Registry, error) {
	r := &Registry{
		tags:      make(map[string]Tag, len(catalog)),
		conflicts: make(map[string]map[string]bool, len(catalog)),
	}
	for _, t := range catalog {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// #endregion constructor

// #region register

// Register adds a tag to the catalog. A tag conflicting with itself or
// re-registering an existing name is an error.
func (r *Registry) Register(t Tag) error {
	if t.Name == "" {
		return fmt.Errorf("register tag: empty name")
	}
	if _, ok := r.tags[t.Name]; ok {
		return fmt.Errorf("register tag %q: already registered", t.Name)
	}
	for _, c := range t.ConflictsWith {
		if c == t.Name {
			return fmt.Errorf("register tag %q: conflicts with itself", t.Name)
		}
	}

	r.tags[t.Name] = t
	set := make(map[string]bool, len(t.ConflictsWith))
	for _, c := range t.ConflictsWith {
		set[c] = true
		// Mirror onto already-registered conflict partners.
		if _, ok := r.tags[c]; ok {
			r.conflicts[c][t.Name] = true
		}
	}
	// Pick up declarations made by earlier registrations against this name.
	for name, peers := range r.conflicts {
		if peers[t.Name] {
			set[name] = true
		}
	}
	r.conflicts[t.Name] = set
	return nil
}

// #endregion register

// #region lookups

// Lookup returns the registered tag by name.
func (r *Registry) Lookup(name string) (Tag, bool) {
	t, ok := r.tags[name]
	return t, ok
}

// Names returns all registered tag names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tags))
	for n := range r.tags {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ConflictsOf returns the set of tag names conflicting with name.
func (r *Registry) ConflictsOf(name string) (map[string]bool, error) {
	if _, ok := r.tags[name]; !ok {
		return nil, &UnknownTagError{Name: name}
	}
	out := make(map[string]bool, len(r.conflicts[name]))
	for c := range r.conflicts[name] {
		out[c] = true
	}
	return out, nil
}

// #endregion lookups

// #region resolve

// Resolve applies a new tag weight to a weight map, dampening every
// conflicting tag already present by newWeight * 0.7 (floored at 0), then
// overwriting the new tag's weight. Recency wins over magnitude. All
// resulting weights are clamped to [0, 1]. The input map is not mutated.
//
// A negative newWeight reverses a prior application: the tag's weight drops
// and previously dampened conflicts recover.
func (r *Registry) Resolve(current map[string]float64, name string, newWeight float64) (map[string]float64, error) {
	if _, ok := r.tags[name]; !ok {
		return nil, &UnknownTagError{Name: name}
	}

	result := make(map[string]float64, len(current)+1)
	for k, v := range current {
		result[k] = v
	}

	for conflict := range r.conflicts[name] {
		if w, ok := result[conflict]; ok {
			result[conflict] = clamp01(w - newWeight*conflictDamping)
		}
	}
	result[name] = clamp01(newWeight)
	return result, nil
}

// #endregion resolve

// #region helpers

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
