package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/aurasys/reflex-engine/internal/tags"
)

// #region tree-struct

// Tree is a hierarchical store of UI elements. Each user holds a private
// Tree, so mutation is single-threaded per user; the Tree itself performs
// no locking.
type Tree struct {
	reg      *tags.Registry
	elements map[string]*Element
	roots    []string
}

// #endregion tree-struct

// #region constructor

// NewTree builds a tree (or forest) from the given elements. Parents must
// be present, child links are attached idempotently, and cycles are
// rejected.
func NewTree(reg *tags.Registry, elements []Element) (*Tree, error) {
	t := &Tree{
		reg:      reg,
		elements: make(map[string]*Element, len(elements)),
	}
	for _, el := range elements {
		if err := t.AddElement(el); err != nil {
			return nil, err
		}
	}
	if err := t.checkCycles(); err != nil {
		return nil, err
	}
	return t, nil
}

// #endregion constructor

// #region add-element

// AddElement inserts an element. A declared parent must already exist; the
// child id is appended to the parent's child list only if not present.
func (t *Tree) AddElement(el Element) error {
	if el.ID == "" {
		return fmt.Errorf("add element: empty id")
	}
	if _, ok := t.elements[el.ID]; ok {
		return fmt.Errorf("add element %q: already present", el.ID)
	}

	cp := copyElement(el)
	if cp.Tags == nil {
		cp.Tags = map[string]float64{}
	}

	if cp.ParentID != "" {
		parent, ok := t.elements[cp.ParentID]
		if !ok {
			return fmt.Errorf("add element %q: parent %q not found", cp.ID, cp.ParentID)
		}
		if !contains(parent.Children, cp.ID) {
			parent.Children = append(parent.Children, cp.ID)
		}
	} else {
		t.roots = append(t.roots, cp.ID)
	}

	t.elements[cp.ID] = &cp
	return nil
}

// #endregion add-element

// #region update-tags

// UpdateTags applies tag weight changes to an element, running each change
// through the registry's conflict resolution. Changes are applied in
// sorted tag-name order so repeated calls are deterministic.
func (t *Tree) UpdateTags(elementID string, changes map[string]float64) error {
	el, ok := t.elements[elementID]
	if !ok {
		return fmt.Errorf("update tags: element %q not found", elementID)
	}

	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	sort.Strings(names)

	current := el.Tags
	for _, name := range names {
		next, err := t.reg.Resolve(current, name, changes[name])
		if err != nil {
			return err
		}
		current = next
	}
	el.Tags = current
	return nil
}

// #endregion update-tags

// #region propagate

// Propagate blends the element's tag weights into its direct children.
// Only tags a child already holds are adjusted; propagation never
// introduces a tag. Traversal is single-level per call.
func (t *Tree) Propagate(elementID string, factor float64) error {
	el, ok := t.elements[elementID]
	if !ok {
		return fmt.Errorf("propagate: element %q not found", elementID)
	}
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}

	for _, childID := range el.Children {
		child, ok := t.elements[childID]
		if !ok {
			continue
		}
		for name, parentWeight := range el.Tags {
			if childWeight, has := child.Tags[name]; has {
				child.Tags[name] = childWeight*(1-factor) + parentWeight*factor
			}
		}
	}
	return nil
}

// #endregion propagate

// #region accessors

// Element returns a copy of the element with the given id.
func (t *Tree) Element(id string) (Element, bool) {
	el, ok := t.elements[id]
	if !ok {
		return Element{}, false
	}
	return copyElement(*el), true
}

// Roots returns the ids of root elements.
func (t *Tree) Roots() []string {
	out := make([]string, len(t.roots))
	copy(out, t.roots)
	return out
}

// Snapshot returns a deep copy of every element, keyed by id.
func (t *Tree) Snapshot() map[string]Element {
	out := make(map[string]Element, len(t.elements))
	for id, el := range t.elements {
		out[id] = copyElement(*el)
	}
	return out
}

// Clone returns an independent copy of the tree sharing the registry.
func (t *Tree) Clone() *Tree {
	cp := &Tree{
		reg:      t.reg,
		elements: make(map[string]*Element, len(t.elements)),
		roots:    append([]string(nil), t.roots...),
	}
	for id, el := range t.elements {
		e := copyElement(*el)
		cp.elements[id] = &e
	}
	return cp
}

// #endregion accessors

// #region default-layout

// DefaultLayout returns the built-in dashboard shape used when no external
// layout file is configured.
func DefaultLayout() []Element {
	return []Element{
		{ID: "dashboard", Type: "container", Tags: map[string]float64{"minimal": 0.3, "focused": 0.5}},
		{ID: "header", Type: "panel", Tags: map[string]float64{"compact": 0.4}, ParentID: "dashboard"},
		{ID: "main_content", Type: "container", Tags: map[string]float64{"open": 0.6}, ParentID: "dashboard"},
		{ID: "sidebar", Type: "panel", Tags: map[string]float64{"dense": 0.3}, ParentID: "dashboard"},
	}
}

// LoadLayout reads a layout shape from a JSON file. Elements must be
// ordered parents-first.
func LoadLayout(path string) ([]Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	var elements []Element
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return elements, nil
}

// #endregion default-layout

// #region helpers

func (t *Tree) checkCycles() error {
	for id := range t.elements {
		seen := map[string]bool{}
		cur := id
		for cur != "" {
			if seen[cur] {
				return fmt.Errorf("layout cycle through element %q", cur)
			}
			seen[cur] = true
			cur = t.elements[cur].ParentID
		}
	}
	return nil
}

func copyElement(el Element) Element {
	cp := el
	cp.Tags = make(map[string]float64, len(el.Tags))
	for k, v := range el.Tags {
		cp.Tags[k] = v
	}
	cp.Children = append([]string(nil), el.Children...)
	return cp
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// #endregion helpers
