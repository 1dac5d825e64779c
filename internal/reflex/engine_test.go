package reflex

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aurasys/reflex-engine/internal/biometric"
	"github.com/aurasys/reflex-engine/internal/insight"
	"github.com/aurasys/reflex-engine/internal/intent"
	"github.com/aurasys/reflex-engine/internal/store"
)

func newTestEngine(t *testing.T, st store.Store) *Engine {
	t.Helper()
	if st == nil {
		st = store.NewMemoryStore()
	}
	e, err := NewEngine(Config{Store: st})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func calmReading(sessionID string, ts time.Time) biometric.Reading {
	return biometric.Reading{
		SessionID:      sessionID,
		Timestamp:      ts,
		GazePosition:   [2]float64{0.5, 0.5},
		PupilDiameter:  0.5,
		BlinkRate:      0.15,
		AttentionScore: 0.6,
		StressLevel:    0.4,
		CognitiveLoad:  0.5,
		Confidence:     0.95,
	}
}

func seedBaseline(t *testing.T, st *store.MemoryStore, userID string, stress, learningConfidence float64) {
	t.Helper()
	profile := biometric.Profile{
		UserID:             userID,
		BaselineStress:     stress,
		BaselineBlinkRate:  0.15,
		BaselineAttention:  0.6,
		Seeded:             true,
		ReadingCount:       90,
		LearningConfidence: learningConfidence,
		Sensitivity:        1.0,
	}
	data, err := json.Marshal(profile)
	if err != nil {
		t.Fatalf("marshal profile: %v", err)
	}
	if err := st.SaveBaseline(store.BaselineRecord{
		UserID:      userID,
		ProfileJSON: string(data),
		UpdatedAt:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("SaveBaseline: %v", err)
	}
}

func TestPassiveTierDisabledRejects(t *testing.T) {
	e := newTestEngine(t, nil)
	before, err := e.LayoutState("u1")
	if err != nil {
		t.Fatalf("LayoutState: %v", err)
	}

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := calmReading("sess-1", ts)
	r.StressLevel = 0.9

	_, err = e.ProcessSignals("u1", []biometric.Reading{r})
	var tierErr *TierDisabledError
	if !errors.As(err, &tierErr) {
		t.Fatalf("expected TierDisabledError, got %v", err)
	}
	if tierErr.Tier != TierPassive {
		t.Errorf("tier = %s, want passive", tierErr.Tier)
	}

	after, err := e.LayoutState("u1")
	if err != nil {
		t.Fatalf("LayoutState: %v", err)
	}
	for id, el := range before {
		for name, w := range el.Tags {
			if after[id].Tags[name] != w {
				t.Errorf("layout mutated: %s/%s %v -> %v", id, name, w, after[id].Tags[name])
			}
		}
	}

	export, err := e.ExportUserData("u1")
	if err != nil {
		t.Fatalf("ExportUserData: %v", err)
	}
	if export.CommandHistoryCount != 0 {
		t.Errorf("history count = %d, want 0", export.CommandHistoryCount)
	}
}

func TestPassiveStressAdaptation(t *testing.T) {
	st := store.NewMemoryStore()
	seedBaseline(t, st, "u1", 0.4, 0.9)
	e := newTestEngine(t, st)

	if err := e.ToggleTier("u1", TierPassive, true); err != nil {
		t.Fatalf("ToggleTier: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stresses := []float64{0.5, 0.55, 0.6, 0.68, 0.75}
	readings := make([]biometric.Reading, len(stresses))
	for i, s := range stresses {
		r := calmReading("sess-1", base.Add(time.Duration(i)*2*time.Second))
		r.StressLevel = s
		readings[i] = r
	}

	res, err := e.ProcessSignals("u1", readings)
	if err != nil {
		t.Fatalf("ProcessSignals: %v", err)
	}
	if !res.Applied {
		t.Fatalf("expected adaptation, got %+v", res)
	}
	if res.Summary != "Adjusted interface based on elevated stress indicators" {
		t.Errorf("summary = %q", res.Summary)
	}
	if !res.Reversible || res.CommandID == "" {
		t.Errorf("passive adaptation should be reversible with an id: %+v", res)
	}

	state, err := e.LayoutState("u1")
	if err != nil {
		t.Fatalf("LayoutState: %v", err)
	}
	theme := state["global_theme"]

	// calm applied at 0.7 x sensitivity 0.5 x gradual 0.5 = 0.175,
	// up from the seeded 0.1.
	if got := theme.Tags["calm"]; math.Abs(got-0.175) > 1e-9 {
		t.Errorf("calm = %v, want 0.175", got)
	}
	// energetic dampened by newWeight x 0.7 from its seeded 0.4.
	if got := theme.Tags["energetic"]; math.Abs(got-(0.4-0.175*0.7)) > 1e-9 {
		t.Errorf("energetic = %v, want %v", got, 0.4-0.175*0.7)
	}

	e.Close()
	if st.AdaptationCount() == 0 {
		t.Error("admitted decision was not persisted")
	}
	if st.DataPointCount() != len(readings) {
		t.Errorf("persisted %d data points, want %d", st.DataPointCount(), len(readings))
	}
	if _, ok, _ := st.LoadBaseline("u1"); !ok {
		t.Error("baseline not persisted")
	}
}

func TestPassiveCalmReadingsNoAdaptation(t *testing.T) {
	e := newTestEngine(t, nil)
	if err := e.ToggleTier("u1", TierPassive, true); err != nil {
		t.Fatalf("ToggleTier: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var readings []biometric.Reading
	for i := 0; i < 4; i++ {
		readings = append(readings, calmReading("sess-1", base.Add(time.Duration(i)*2*time.Second)))
	}

	res, err := e.ProcessSignals("u1", readings)
	if err != nil {
		t.Fatalf("ProcessSignals: %v", err)
	}
	if res.Applied {
		t.Fatalf("calm readings should not adapt: %+v", res)
	}
	if res.Reason != "no_adaptation" {
		t.Errorf("reason = %q, want no_adaptation", res.Reason)
	}
}

func TestMirrorFeedbackAndRevert(t *testing.T) {
	e := newTestEngine(t, nil)

	first, err := e.ProcessCommand(Command{UserID: "u1", EntryMode: intent.Mirror, RawInput: "too harsh"})
	if err != nil {
		t.Fatalf("first command: %v", err)
	}
	second, err := e.ProcessCommand(Command{UserID: "u1", EntryMode: intent.Mirror, RawInput: "too harsh"})
	if err != nil {
		t.Fatalf("second command: %v", err)
	}
	// Mirror commands are not cooldown-gated.
	if !first.Applied || !second.Applied {
		t.Fatalf("both commands should apply: %+v %+v", first, second)
	}
	if first.CommandID == second.CommandID {
		t.Fatal("commands share an id")
	}

	export, err := e.ExportUserData("u1")
	if err != nil {
		t.Fatalf("ExportUserData: %v", err)
	}
	if export.CommandHistoryCount != 2 {
		t.Fatalf("history count = %d, want 2", export.CommandHistoryCount)
	}

	// Revert walks back to the newest applied command.
	rev, err := e.Revert("u1")
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if !rev.Applied || rev.CommandID != second.CommandID {
		t.Fatalf("expected second command reverted, got %+v", rev)
	}

	rev2, err := e.Revert("u1")
	if err != nil {
		t.Fatalf("second Revert: %v", err)
	}
	if rev2.CommandID != first.CommandID {
		t.Fatalf("expected first command reverted next, got %+v", rev2)
	}
}

func TestRevertIsIdempotent(t *testing.T) {
	e := newTestEngine(t, nil)

	if _, err := e.ProcessCommand(Command{UserID: "u1", EntryMode: intent.Mirror, RawInput: "too noisy"}); err != nil {
		t.Fatalf("command: %v", err)
	}
	if _, err := e.Revert("u1"); err != nil {
		t.Fatalf("Revert: %v", err)
	}

	res, err := e.Revert("u1")
	if err != nil {
		t.Fatalf("second Revert: %v", err)
	}
	if res.Applied {
		t.Fatal("second revert should be a no-op")
	}
	if res.Summary != "no pending changes" {
		t.Errorf("summary = %q", res.Summary)
	}
}

func TestEditCommandTargetsElement(t *testing.T) {
	e := newTestEngine(t, nil)

	res, err := e.ProcessCommand(Command{
		UserID:        "u1",
		EntryMode:     intent.Edit,
		RawInput:      "make this smaller",
		TargetElement: "sidebar",
	})
	if err != nil {
		t.Fatalf("ProcessCommand: %v", err)
	}
	if !res.Applied {
		t.Fatalf("expected edit to apply: %+v", res)
	}

	state, err := e.LayoutState("u1")
	if err != nil {
		t.Fatalf("LayoutState: %v", err)
	}
	sidebar := state["sidebar"]
	// compact 0.8 and minimal 0.6 scaled by sensitivity 0.5.
	if got := sidebar.Tags["compact"]; math.Abs(got-0.4) > 1e-9 {
		t.Errorf("compact = %v, want 0.4", got)
	}
	if got := sidebar.Tags["minimal"]; math.Abs(got-0.3) > 1e-9 {
		t.Errorf("minimal = %v, want 0.3", got)
	}
}

func TestDisabledActiveTierRejects(t *testing.T) {
	e := newTestEngine(t, nil)
	if err := e.ToggleTier("u1", TierActive, false); err != nil {
		t.Fatalf("ToggleTier: %v", err)
	}

	_, err := e.ProcessCommand(Command{UserID: "u1", EntryMode: intent.Edit, RawInput: "hide this"})
	var tierErr *TierDisabledError
	if !errors.As(err, &tierErr) {
		t.Fatalf("expected TierDisabledError, got %v", err)
	}
	if tierErr.Tier != TierActive {
		t.Errorf("tier = %s, want active", tierErr.Tier)
	}
}

func TestUnmatchedInputAppliesNothing(t *testing.T) {
	e := newTestEngine(t, nil)

	res, err := e.ProcessCommand(Command{UserID: "u1", EntryMode: intent.Mirror, RawInput: "hello there"})
	if err != nil {
		t.Fatalf("ProcessCommand: %v", err)
	}
	if res.Applied {
		t.Fatalf("nothing should match: %+v", res)
	}

	export, _ := e.ExportUserData("u1")
	if export.CommandHistoryCount != 0 {
		t.Errorf("unmatched input appended history: %d", export.CommandHistoryCount)
	}
}

func TestSummaryGroupsByCategory(t *testing.T) {
	e := newTestEngine(t, nil)

	res, err := e.ProcessCommand(Command{UserID: "u1", EntryMode: intent.Mirror, RawInput: "too noisy"})
	if err != nil {
		t.Fatalf("ProcessCommand: %v", err)
	}
	if res.Summary != "Layout: more minimal, more open" {
		t.Errorf("summary = %q", res.Summary)
	}
}

func TestUnknownEntryMode(t *testing.T) {
	e := newTestEngine(t, nil)
	if _, err := e.ProcessCommand(Command{UserID: "u1", EntryMode: intent.EntryMode("voice")}); err == nil {
		t.Fatal("expected error for unknown entry mode")
	}
}

func TestInsightsRequireOptIn(t *testing.T) {
	e := newTestEngine(t, nil)
	if err := e.ToggleTier("u1", TierPassive, true); err != nil {
		t.Fatalf("ToggleTier: %v", err)
	}

	if _, ok, err := e.Insight("u1", insight.DigitalFatigue); err != nil || ok {
		t.Fatalf("insight before opt-in: ok=%v err=%v", ok, err)
	}

	if err := e.EnableInsights("u1"); err != nil {
		t.Fatalf("EnableInsights: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		r := calmReading("sess-1", base.Add(time.Duration(i)*16*time.Minute))
		if _, err := e.ProcessSignals("u1", []biometric.Reading{r}); err != nil {
			t.Fatalf("ProcessSignals: %v", err)
		}
	}

	ins, ok, err := e.Insight("u1", insight.DigitalFatigue)
	if err != nil {
		t.Fatalf("Insight: %v", err)
	}
	if !ok {
		t.Fatal("expected an insight after opt-in and data")
	}
	if ins.UserID != "u1" || ins.Type != insight.DigitalFatigue {
		t.Errorf("wrong insight identity: %+v", ins)
	}
}

func TestExportUserData(t *testing.T) {
	e := newTestEngine(t, nil)

	if _, err := e.ProcessCommand(Command{
		UserID:        "u1",
		EntryMode:     intent.Edit,
		RawInput:      "make this smaller",
		TargetElement: "sidebar",
	}); err != nil {
		t.Fatalf("ProcessCommand: %v", err)
	}
	if _, err := e.ProcessCommand(Command{UserID: "u1", EntryMode: intent.Mirror, RawInput: "too harsh"}); err != nil {
		t.Fatalf("ProcessCommand: %v", err)
	}

	export, err := e.ExportUserData("u1")
	if err != nil {
		t.Fatalf("ExportUserData: %v", err)
	}
	if export.CommandHistoryCount != 2 {
		t.Errorf("history count = %d, want 2", export.CommandHistoryCount)
	}
	if export.LayoutCustomizations != 1 {
		t.Errorf("layout customizations = %d, want 1 (active tier only)", export.LayoutCustomizations)
	}
	if len(export.Insights) != 0 {
		t.Errorf("insights exported without opt-in: %v", export.Insights)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	e := newTestEngine(t, nil)

	s, err := e.Settings("u1")
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if s.PassiveTierEnabled {
		t.Error("passive tier should default off")
	}
	if !s.SemiActiveTierEnabled || !s.ActiveTierEnabled {
		t.Error("semi-active and active tiers should default on")
	}
	if s.AdaptationSensitivity != 0.5 || s.PropagationFactor != 0.3 {
		t.Errorf("unexpected defaults: %+v", s)
	}

	s.AdaptationSensitivity = 0.8
	if err := e.UpdateSettings("u1", s); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	got, err := e.Settings("u1")
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if got.AdaptationSensitivity != 0.8 {
		t.Errorf("sensitivity = %v, want 0.8", got.AdaptationSensitivity)
	}
}
