package layout

import (
	"testing"

	"github.com/aurasys/reflex-engine/internal/tags"
)

func newTestTree(t *testing.T) *Tree {
	t.Helper()
	reg, err := tags.NewRegistry(tags.DefaultCatalog())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	tree, err := NewTree(reg, DefaultLayout())
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	return tree
}

func TestDefaultLayoutShape(t *testing.T) {
	tree := newTestTree(t)

	roots := tree.Roots()
	if len(roots) != 1 || roots[0] != "dashboard" {
		t.Fatalf("roots = %v, want [dashboard]", roots)
	}

	dash, ok := tree.Element("dashboard")
	if !ok {
		t.Fatal("dashboard missing")
	}
	if len(dash.Children) != 3 {
		t.Errorf("dashboard has %d children, want 3", len(dash.Children))
	}
}

func TestAddElementIdempotentAttachment(t *testing.T) {
	tree := newTestTree(t)

	if err := tree.AddElement(Element{ID: "kpi_card", Type: "card", ParentID: "main_content"}); err != nil {
		t.Fatalf("add element: %v", err)
	}
	if err := tree.AddElement(Element{ID: "kpi_card", Type: "card", ParentID: "main_content"}); err == nil {
		t.Fatal("expected error adding duplicate element id")
	}

	parent, _ := tree.Element("main_content")
	count := 0
	for _, c := range parent.Children {
		if c == "kpi_card" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("kpi_card attached %d times, want 1", count)
	}
}

func TestAddElementMissingParent(t *testing.T) {
	tree := newTestTree(t)
	err := tree.AddElement(Element{ID: "orphan", Type: "card", ParentID: "nope"})
	if err == nil {
		t.Fatal("expected error for missing parent")
	}
}

func TestUpdateTagsResolvesConflicts(t *testing.T) {
	tree := newTestTree(t)

	if err := tree.UpdateTags("dashboard", map[string]float64{"energetic": 0.8}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := tree.UpdateTags("dashboard", map[string]float64{"calm": 0.7}); err != nil {
		t.Fatalf("update: %v", err)
	}

	dash, _ := tree.Element("dashboard")
	if got := dash.Tags["calm"]; got != 0.7 {
		t.Errorf("calm = %.2f, want 0.70", got)
	}
	if got := dash.Tags["energetic"]; got < 0.30 || got > 0.32 {
		t.Errorf("energetic = %.2f, want ~0.31 after damping", got)
	}
}

func TestUpdateTagsUnknownElement(t *testing.T) {
	tree := newTestTree(t)
	if err := tree.UpdateTags("ghost", map[string]float64{"calm": 0.5}); err == nil {
		t.Fatal("expected error for unknown element")
	}
}

func TestPropagateBlendsExistingTagsOnly(t *testing.T) {
	tree := newTestTree(t)

	// dashboard holds minimal=0.3 focused=0.5; header holds compact=0.4.
	// Give header a "minimal" weight so one tag overlaps.
	if err := tree.UpdateTags("header", map[string]float64{"minimal": 0.2}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := tree.Propagate("dashboard", 0.5); err != nil {
		t.Fatalf("propagate: %v", err)
	}

	header, _ := tree.Element("header")
	// 0.2*0.5 + 0.3*0.5 = 0.25
	if got := header.Tags["minimal"]; got < 0.24 || got > 0.26 {
		t.Errorf("minimal = %.3f, want ~0.25", got)
	}
	// focused must not be injected.
	if _, has := header.Tags["focused"]; has {
		t.Error("propagate injected tag 'focused' into child")
	}
}

func TestPropagateSingleLevelOnly(t *testing.T) {
	tree := newTestTree(t)

	if err := tree.AddElement(Element{
		ID: "kpi_card", Type: "card", ParentID: "main_content",
		Tags: map[string]float64{"open": 0.2},
	}); err != nil {
		t.Fatalf("add element: %v", err)
	}
	// main_content holds open=0.6. Propagating from dashboard must not
	// reach the grandchild.
	if err := tree.UpdateTags("dashboard", map[string]float64{"open": 0.9}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := tree.Propagate("dashboard", 0.5); err != nil {
		t.Fatalf("propagate: %v", err)
	}

	card, _ := tree.Element("kpi_card")
	if got := card.Tags["open"]; got != 0.2 {
		t.Errorf("grandchild open = %.2f, want untouched 0.20", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tree := newTestTree(t)
	cp := tree.Clone()

	if err := cp.UpdateTags("dashboard", map[string]float64{"calm": 0.9}); err != nil {
		t.Fatalf("update clone: %v", err)
	}

	orig, _ := tree.Element("dashboard")
	if _, has := orig.Tags["calm"]; has {
		t.Error("mutating clone leaked into original tree")
	}
}
