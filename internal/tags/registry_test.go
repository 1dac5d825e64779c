package tags

import (
	"errors"
	"testing"
)

func TestDefaultCatalogSymmetry(t *testing.T) {
	r, err := NewRegistry(DefaultCatalog())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	for _, name := range r.Names() {
		conflicts, err := r.ConflictsOf(name)
		if err != nil {
			t.Fatalf("conflicts of %q: %v", name, err)
		}
		for peer := range conflicts {
			if _, ok := r.Lookup(peer); !ok {
				continue // declared conflict with an uncataloged name
			}
			peerConflicts, err := r.ConflictsOf(peer)
			if err != nil {
				t.Fatalf("conflicts of %q: %v", peer, err)
			}
			if !peerConflicts[name] {
				t.Errorf("asymmetric conflict: %q lists %q but not vice versa", name, peer)
			}
		}
	}
}

func TestRegisterRejectsSelfConflict(t *testing.T) {
	_, err := NewRegistry([]Tag{
		{Name: "loop", Category: CategoryStyle, ConflictsWith: []string{"loop"}},
	})
	if err == nil {
		t.Fatal("expected error for self-conflicting tag")
	}
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	_, err := NewRegistry([]Tag{
		{Name: "calm", Category: CategoryStyle},
		{Name: "calm", Category: CategoryMood},
	})
	if err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}

func TestResolveDampensConflicts(t *testing.T) {
	r, err := NewRegistry(DefaultCatalog())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	current := map[string]float64{"energetic": 0.8}
	result, err := r.Resolve(current, "calm", 0.7)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if got := result["calm"]; got != 0.7 {
		t.Errorf("calm = %.2f, want 0.70", got)
	}
	// 0.8 - 0.7*0.7 = 0.31
	if got := result["energetic"]; got < 0.30 || got > 0.32 {
		t.Errorf("energetic = %.2f, want ~0.31", got)
	}
	// Input map untouched.
	if current["energetic"] != 0.8 {
		t.Errorf("input map mutated: energetic = %.2f", current["energetic"])
	}
}

func TestResolveUnknownTagFailsLoudly(t *testing.T) {
	r, err := NewRegistry(DefaultCatalog())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	_, err = r.Resolve(map[string]float64{}, "sparkly", 0.5)
	var unknown *UnknownTagError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTagError, got %v", err)
	}
	if unknown.Name != "sparkly" {
		t.Errorf("error names %q, want sparkly", unknown.Name)
	}
}

func TestResolveWeightsStayBounded(t *testing.T) {
	r, err := NewRegistry(DefaultCatalog())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	// Hammer a weight map with alternating conflicting applications,
	// including reversals, and verify every weight stays in [0, 1].
	weights := map[string]float64{}
	sequence := []struct {
		name   string
		weight float64
	}{
		{"calm", 0.9}, {"energetic", 1.0}, {"calm", 0.8}, {"urgent", 0.7},
		{"relaxed", 0.95}, {"calm", -0.8}, {"energetic", -1.0}, {"urgent", 0.3},
		{"calm", 0.2}, {"relaxed", -0.95},
	}
	for _, step := range sequence {
		var err error
		weights, err = r.Resolve(weights, step.name, step.weight)
		if err != nil {
			t.Fatalf("resolve %q: %v", step.name, err)
		}
		for name, w := range weights {
			if w < 0 || w > 1 {
				t.Fatalf("weight %q = %.3f out of [0, 1] after applying %q", name, w, step.name)
			}
		}
	}
}

func TestResolveNegativeWeightRecoversConflicts(t *testing.T) {
	r, err := NewRegistry(DefaultCatalog())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	weights := map[string]float64{"energetic": 0.8}
	weights, err = r.Resolve(weights, "calm", 0.7)
	if err != nil {
		t.Fatalf("resolve apply: %v", err)
	}
	weights, err = r.Resolve(weights, "calm", -0.7)
	if err != nil {
		t.Fatalf("resolve revert: %v", err)
	}

	if got := weights["calm"]; got != 0 {
		t.Errorf("calm after revert = %.2f, want 0", got)
	}
	// 0.31 + 0.49 = 0.8 restored
	if got := weights["energetic"]; got < 0.79 || got > 0.81 {
		t.Errorf("energetic after revert = %.2f, want ~0.80", got)
	}
}
