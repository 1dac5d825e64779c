package gate

import (
	"testing"
	"time"

	"github.com/aurasys/reflex-engine/internal/decision"
	"github.com/aurasys/reflex-engine/internal/trigger"
)

func testDecision(confidence float64) decision.Decision {
	return decision.Decision{
		Trigger:    trigger.StressElevation,
		Type:       decision.ColorScheme,
		Params:     decision.ColorSchemeParams{Scheme: "calming", Intensity: 0.8},
		Confidence: confidence,
		Urgency:    0.7,
	}
}

func TestAdmitFirstDecision(t *testing.T) {
	g := NewGate(DefaultConfig())
	res := g.Admit("sess-1", testDecision(0.8), time.Now())
	if !res.Admitted {
		t.Fatalf("expected admit, got rejection: %s", res.Reason)
	}
}

func TestCooldownEnforcement(t *testing.T) {
	g := NewGate(DefaultConfig())
	now := time.Now()

	first := g.Admit("sess-1", testDecision(0.8), now)
	if !first.Admitted {
		t.Fatalf("first decision rejected: %s", first.Reason)
	}

	// Same type 10s later: inside the 60s color_scheme cooldown.
	second := g.Admit("sess-1", testDecision(0.9), now.Add(10*time.Second))
	if second.Admitted {
		t.Fatal("second decision admitted inside cooldown window")
	}

	// After the window elapses, admitted again.
	third := g.Admit("sess-1", testDecision(0.8), now.Add(61*time.Second))
	if !third.Admitted {
		t.Fatalf("decision after cooldown rejected: %s", third.Reason)
	}
}

func TestCooldownIsPerSession(t *testing.T) {
	g := NewGate(DefaultConfig())
	now := time.Now()

	if res := g.Admit("sess-1", testDecision(0.8), now); !res.Admitted {
		t.Fatalf("sess-1 rejected: %s", res.Reason)
	}
	if res := g.Admit("sess-2", testDecision(0.8), now); !res.Admitted {
		t.Fatalf("sess-2 rejected despite separate session: %s", res.Reason)
	}
}

func TestCooldownIsPerType(t *testing.T) {
	g := NewGate(DefaultConfig())
	now := time.Now()

	if res := g.Admit("sess-1", testDecision(0.8), now); !res.Admitted {
		t.Fatalf("color_scheme rejected: %s", res.Reason)
	}

	other := testDecision(0.8)
	other.Type = decision.LayoutDensity
	other.Params = decision.LayoutDensityParams{Density: "simplified"}
	if res := g.Admit("sess-1", other, now.Add(time.Second)); !res.Admitted {
		t.Fatalf("different type rejected by unrelated cooldown: %s", res.Reason)
	}
}

func TestConfidenceFloor(t *testing.T) {
	g := NewGate(DefaultConfig())
	now := time.Now()

	// Below floor, regardless of urgency.
	d := testDecision(0.59)
	d.Urgency = 1.0
	if res := g.Admit("sess-1", d, now); res.Admitted {
		t.Fatal("decision below confidence floor was admitted")
	}

	// A rejection on confidence must not start a cooldown.
	if res := g.Admit("sess-1", testDecision(0.6), now.Add(time.Second)); !res.Admitted {
		t.Fatalf("decision at floor rejected: %s", res.Reason)
	}
}

func TestForgetClearsSessionState(t *testing.T) {
	g := NewGate(DefaultConfig())
	now := time.Now()

	if res := g.Admit("sess-1", testDecision(0.8), now); !res.Admitted {
		t.Fatalf("first rejected: %s", res.Reason)
	}
	g.Forget("sess-1")
	if res := g.Admit("sess-1", testDecision(0.8), now.Add(time.Second)); !res.Admitted {
		t.Fatalf("post-forget decision rejected: %s", res.Reason)
	}
}

func TestUnknownTypeUsesDefaultCooldown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cooldowns = map[decision.AdaptationType]time.Duration{}
	cfg.DefaultCooldown = 30 * time.Second
	g := NewGate(cfg)
	now := time.Now()

	if res := g.Admit("sess-1", testDecision(0.8), now); !res.Admitted {
		t.Fatalf("first rejected: %s", res.Reason)
	}
	if res := g.Admit("sess-1", testDecision(0.8), now.Add(10*time.Second)); res.Admitted {
		t.Fatal("default cooldown not applied")
	}
	if res := g.Admit("sess-1", testDecision(0.8), now.Add(31*time.Second)); !res.Admitted {
		t.Fatalf("decision after default cooldown rejected: %s", res.Reason)
	}
}
