package reflex

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aurasys/reflex-engine/internal/biometric"
	"github.com/aurasys/reflex-engine/internal/decision"
	"github.com/aurasys/reflex-engine/internal/gate"
	"github.com/aurasys/reflex-engine/internal/insight"
	"github.com/aurasys/reflex-engine/internal/intent"
	"github.com/aurasys/reflex-engine/internal/layout"
	"github.com/aurasys/reflex-engine/internal/store"
	"github.com/aurasys/reflex-engine/internal/tags"
	"github.com/aurasys/reflex-engine/internal/trigger"
)

// #region passive-mapping

// globalThemeID is the layout element passive adaptations target.
const globalThemeID = "global_theme"

// passiveDamping halves passive tag weights relative to direct commands
// ("gradual" policy).
const passiveDamping = 0.5

// passiveTagChanges maps a fired trigger to the tag adjustments the
// passive tier applies to the global theme.
var passiveTagChanges = map[trigger.Trigger]map[string]float64{
	trigger.StressElevation:    {"calm": 0.7, "smooth": 0.5, "relaxed": 0.6, "minimal": 0.4},
	trigger.CognitiveOverload:  {"minimal": 0.8, "open": 0.6, "light": 0.5},
	trigger.AttentionDeficit:   {"focused": 0.7, "minimal": 0.6, "alert": 0.4},
	trigger.FatigueDetection:   {"soft": 0.6, "calm": 0.5, "light": 0.4, "spacious": 0.3},
	trigger.ConfusionIndicator: {"focused": 0.7, "minimal": 0.5, "open": 0.4},
	trigger.HighEngagement:     {"dense": 0.4, "energetic": 0.3},
	trigger.DecisionHesitation: {"focused": 0.6, "minimal": 0.4},
}

// passiveReasons are the user-facing explanations for passive changes.
// Raw signal values never appear in a summary.
var passiveReasons = map[trigger.Trigger]string{
	trigger.StressElevation:    "elevated stress indicators",
	trigger.CognitiveOverload:  "signs of cognitive overload",
	trigger.AttentionDeficit:   "attention drift patterns",
	trigger.FatigueDetection:   "signs of fatigue",
	trigger.ConfusionIndicator: "signs of confusion",
	trigger.HighEngagement:     "a sustained flow state",
	trigger.DecisionHesitation: "decision hesitation patterns",
}

// #endregion passive-mapping

// #region engine-struct

// Config wires an Engine. Zero-value fields fall back to defaults.
type Config struct {
	Catalog       []tags.Tag
	Layout        []layout.Element
	Store         store.Store
	Logger        *zap.Logger
	TriggerConfig *trigger.Config
	GateConfig    *gate.Config
	Selector      decision.Selector
}

// userState is everything owned by one user, guarded by its mutex so
// commands and signal batches for the same user are serialized.
type userState struct {
	mu       sync.Mutex
	settings Settings
	tree     *layout.Tree
	profile  *biometric.Profile
	history  []*historyEntry
	insights *insight.Builder
}

// Engine is the tiered session controller. It owns all per-user and
// per-session state and is safe for concurrent use across users.
type Engine struct {
	reg    *tags.Registry
	shape  []layout.Element
	parser *intent.Parser
	det    *trigger.Detector
	synth  *decision.Synthesizer
	gate   *gate.Gate
	store  store.Store
	log    *zap.Logger

	mu       sync.Mutex
	users    map[string]*userState
	sessions map[string]*biometric.SessionWindow

	wg sync.WaitGroup
}

// #endregion engine-struct

// #region constructor

// NewEngine builds an engine from config, applying defaults for any
// unset field.
func NewEngine(cfg Config) (*Engine, error) {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = tags.DefaultCatalog()
	}
	reg, err := tags.NewRegistry(catalog)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	shape := cfg.Layout
	if shape == nil {
		shape = layout.DefaultLayout()
	}

	st := cfg.Store
	if st == nil {
		st = store.NewMemoryStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	trigCfg := trigger.DefaultConfig()
	if cfg.TriggerConfig != nil {
		trigCfg = *cfg.TriggerConfig
	}
	gateCfg := gate.DefaultConfig()
	if cfg.GateConfig != nil {
		gateCfg = *cfg.GateConfig
	}

	return &Engine{
		reg:      reg,
		shape:    shape,
		parser:   intent.NewParser(),
		det:      trigger.NewDetector(trigCfg),
		synth:    decision.NewSynthesizer(cfg.Selector),
		gate:     gate.NewGate(gateCfg),
		store:    st,
		log:      logger,
		users:    map[string]*userState{},
		sessions: map[string]*biometric.SessionWindow{},
	}, nil
}

// Close waits for in-flight persistence writes and closes the store.
func (e *Engine) Close() error {
	e.wg.Wait()
	return e.store.Close()
}

// #endregion constructor

// #region user-state

// user returns the state for userID, creating and loading it on first
// touch. The caller must not hold e.mu.
func (e *Engine) user(userID string) (*userState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if u, ok := e.users[userID]; ok {
		return u, nil
	}

	tree, err := e.newUserTree()
	if err != nil {
		return nil, err
	}

	profile := &biometric.Profile{UserID: userID, Sensitivity: 1.0}
	if rec, ok, err := e.store.LoadBaseline(userID); err != nil {
		e.log.Warn("load baseline failed", zap.String("user", userID), zap.Error(err))
	} else if ok {
		if err := json.Unmarshal([]byte(rec.ProfileJSON), profile); err != nil {
			e.log.Warn("corrupt stored baseline, starting fresh", zap.String("user", userID), zap.Error(err))
			profile = &biometric.Profile{UserID: userID, Sensitivity: 1.0}
		}
	}

	u := &userState{
		settings: DefaultSettings(userID),
		tree:     tree,
		profile:  profile,
		insights: insight.NewBuilder(userID),
	}
	e.users[userID] = u
	return u, nil
}

// newUserTree builds a private layout tree and guarantees the global
// theme element exists as a passive-tier target.
func (e *Engine) newUserTree() (*layout.Tree, error) {
	tree, err := layout.NewTree(e.reg, e.shape)
	if err != nil {
		return nil, fmt.Errorf("build layout: %w", err)
	}
	if _, ok := tree.Element(globalThemeID); !ok {
		el := layout.Element{
			ID:   globalThemeID,
			Type: "theme",
			Tags: map[string]float64{"calm": 0.1, "energetic": 0.4},
		}
		if err := tree.AddElement(el); err != nil {
			return nil, fmt.Errorf("add global theme: %w", err)
		}
	}
	return tree, nil
}

// window returns the session window for sessionID, creating it on
// first touch.
func (e *Engine) window(sessionID string) *biometric.SessionWindow {
	e.mu.Lock()
	defer e.mu.Unlock()
	w, ok := e.sessions[sessionID]
	if !ok {
		w = biometric.NewSessionWindow(0, 0)
		e.sessions[sessionID] = w
	}
	return w
}

// #endregion user-state

// #region process-command

// ProcessCommand routes a command to its tier. Mirror and edit commands
// are parsed and applied directly; observe commands run the passive
// signal path.
func (e *Engine) ProcessCommand(cmd Command) (Result, error) {
	if !cmd.EntryMode.Valid() {
		return Result{}, fmt.Errorf("unknown entry mode %q", cmd.EntryMode)
	}
	if cmd.EntryMode == intent.Observe {
		return e.ProcessSignals(cmd.UserID, cmd.Signals)
	}

	u, err := e.user(cmd.UserID)
	if err != nil {
		return Result{}, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	tier := tierFor(cmd.EntryMode)
	if !u.settings.tierEnabled(tier) {
		return Result{}, &TierDisabledError{Tier: tier}
	}

	parsed := e.parser.Parse(cmd.RawInput, cmd.EntryMode, cmd.TargetElement)
	if !parsed.Matched() {
		return Result{Applied: false, Summary: "No changes applied", Reason: "no_matching_pattern"}, nil
	}

	targets := parsed.TargetElements
	if len(targets) == 0 {
		targets = []string{"main_content"}
	}

	adjusted := scaleChanges(parsed.TagChanges, u.settings.AdaptationSensitivity)
	if err := e.applyToTree(u, targets, adjusted); err != nil {
		return Result{}, err
	}

	entry := &historyEntry{
		id:         uuid.New().String(),
		timestamp:  time.Now().UTC(),
		tier:       tier,
		entryMode:  cmd.EntryMode,
		rawInput:   cmd.RawInput,
		targets:    targets,
		tagChanges: adjusted,
		applied:    true,
		reversible: true,
	}
	if u.settings.AutoSummarize {
		entry.summary = e.summarize(adjusted)
	}
	u.history = append(u.history, entry)
	e.persistCommand(entry, cmd.UserID)

	e.log.Debug("command applied",
		zap.String("user", cmd.UserID),
		zap.String("tier", string(tier)),
		zap.Int("tag_changes", len(adjusted)))

	return Result{
		Applied:    true,
		TagChanges: adjusted,
		Summary:    entry.summary,
		Reversible: true,
		CommandID:  entry.id,
	}, nil
}

// #endregion process-command

// #region process-signals

// ProcessSignals runs the passive tier: validate, score, window, detect,
// synthesize, gate, apply. Readings for one session must arrive in
// timestamp order.
func (e *Engine) ProcessSignals(userID string, readings []biometric.Reading) (Result, error) {
	u, err := e.user(userID)
	if err != nil {
		return Result{}, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.settings.PassiveTierEnabled {
		return Result{}, &TierDisabledError{Tier: TierPassive}
	}

	merged := map[string]float64{}
	var reasons []string

	for _, r := range readings {
		if err := r.Validate(); err != nil {
			e.log.Debug("reading rejected", zap.String("user", userID), zap.Error(err))
			continue
		}
		quality := biometric.QualityScore(r)
		w := e.window(r.SessionID)
		if err := w.Add(r); err != nil {
			e.log.Debug("reading dropped from window", zap.String("session", r.SessionID), zap.Error(err))
			continue
		}
		e.persistDataPoint(r, quality)

		fired := e.det.Detect(r, w, u.profile)
		for _, t := range fired {
			d, err := e.synth.Synthesize(t, r, u.profile)
			if err != nil {
				e.log.Warn("synthesize failed", zap.String("trigger", string(t)), zap.Error(err))
				continue
			}
			res := e.gate.Admit(r.SessionID, d, r.Timestamp)
			if !res.Admitted {
				e.log.Debug("decision throttled",
					zap.String("session", r.SessionID),
					zap.String("trigger", string(t)),
					zap.String("reason", res.Reason))
				continue
			}
			e.persistAdaptation(userID, r.SessionID, d, r.Timestamp)
			for name, weight := range passiveTagChanges[t] {
				merged[name] = weight
			}
			if reason := passiveReasons[t]; reason != "" && !containsString(reasons, reason) {
				reasons = append(reasons, reason)
			}
		}

		if u.settings.WellnessInsightsEnabled {
			u.insights.AddSample(r.Timestamp, fatigueProxy(r, u.profile), r.AttentionScore)
		}
		e.synth.UpdateBaseline(u.profile, r)
	}
	e.persistBaseline(u.profile)

	if len(merged) == 0 {
		return Result{Applied: false, Reason: "no_adaptation"}, nil
	}

	adjusted := scaleChanges(merged, u.settings.AdaptationSensitivity*passiveDamping)
	targets := []string{globalThemeID}
	if err := e.applyToTree(u, targets, adjusted); err != nil {
		return Result{}, err
	}

	entry := &historyEntry{
		id:         uuid.New().String(),
		timestamp:  time.Now().UTC(),
		tier:       TierPassive,
		entryMode:  intent.Observe,
		rawInput:   "[biometric adaptation]",
		targets:    targets,
		tagChanges: adjusted,
		summary:    "Adjusted interface based on " + strings.Join(reasons, " and "),
		applied:    true,
		reversible: true,
	}
	u.history = append(u.history, entry)
	e.persistCommand(entry, userID)

	return Result{
		Applied:    true,
		TagChanges: adjusted,
		Summary:    entry.summary,
		Reversible: true,
		CommandID:  entry.id,
	}, nil
}

// #endregion process-signals

// #region revert

// Revert undoes the most recent applied, reversible command by negating
// its tag changes through the same update path. An empty or fully
// reverted history is a normal no-op, not an error.
func (e *Engine) Revert(userID string) (Result, error) {
	u, err := e.user(userID)
	if err != nil {
		return Result{}, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	for i := len(u.history) - 1; i >= 0; i-- {
		entry := u.history[i]
		if !entry.applied || !entry.reversible {
			continue
		}

		negated := make(map[string]float64, len(entry.tagChanges))
		for name, weight := range entry.tagChanges {
			negated[name] = -weight
		}
		if err := e.applyToTree(u, entry.targets, negated); err != nil {
			return Result{}, err
		}

		entry.applied = false
		e.persistRevert(entry.id)

		return Result{
			Applied:    true,
			TagChanges: negated,
			Summary:    "Reverted last change",
			CommandID:  entry.id,
		}, nil
	}

	return Result{Applied: false, Summary: "no pending changes", Reason: "no_pending"}, nil
}

// #endregion revert

// #region settings-api

// Settings returns a copy of the user's settings.
func (e *Engine) Settings(userID string) (Settings, error) {
	u, err := e.user(userID)
	if err != nil {
		return Settings{}, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.settings, nil
}

// UpdateSettings replaces the user's settings, preserving the user id.
func (e *Engine) UpdateSettings(userID string, s Settings) error {
	u, err := e.user(userID)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	s.UserID = userID
	u.settings = s
	return nil
}

// ToggleTier switches one tier on or off for a user.
func (e *Engine) ToggleTier(userID string, tier Tier, enabled bool) error {
	u, err := e.user(userID)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	switch tier {
	case TierPassive:
		u.settings.PassiveTierEnabled = enabled
	case TierSemiActive:
		u.settings.SemiActiveTierEnabled = enabled
	case TierActive:
		u.settings.ActiveTierEnabled = enabled
	default:
		return fmt.Errorf("unknown tier %q", tier)
	}
	return nil
}

func (s Settings) tierEnabled(t Tier) bool {
	switch t {
	case TierPassive:
		return s.PassiveTierEnabled
	case TierSemiActive:
		return s.SemiActiveTierEnabled
	default:
		return s.ActiveTierEnabled
	}
}

// #endregion settings-api

// #region queries

// LayoutState returns a deep copy of the user's current layout.
func (e *Engine) LayoutState(userID string) (map[string]layout.Element, error) {
	u, err := e.user(userID)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tree.Snapshot(), nil
}

// EnableInsights opts the user into wellness insights.
func (e *Engine) EnableInsights(userID string) error {
	u, err := e.user(userID)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.settings.WellnessInsightsEnabled = true
	return nil
}

// Insight generates a wellness insight of the requested type. Returns
// false when the user has not opted in or there is not enough data.
func (e *Engine) Insight(userID string, t insight.Type) (insight.Insight, bool, error) {
	u, err := e.user(userID)
	if err != nil {
		return insight.Insight{}, false, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.settings.WellnessInsightsEnabled {
		return insight.Insight{}, false, nil
	}
	ins, ok := u.insights.Generate(t, time.Now().UTC())
	return ins, ok, nil
}

// UserExport is the privacy-compliance view of a user's data. It never
// contains raw biometric readings.
type UserExport struct {
	Settings             Settings          `json:"settings"`
	CommandHistoryCount  int               `json:"command_history_count"`
	LayoutCustomizations int               `json:"layout_customizations"`
	Insights             []insight.Insight `json:"wellness_insights,omitempty"`
}

// ExportUserData assembles the exportable view of a user's data.
func (e *Engine) ExportUserData(userID string) (UserExport, error) {
	u, err := e.user(userID)
	if err != nil {
		return UserExport{}, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	out := UserExport{
		Settings:            u.settings,
		CommandHistoryCount: len(u.history),
	}
	for _, entry := range u.history {
		if entry.applied && entry.tier == TierActive {
			out.LayoutCustomizations++
		}
	}
	if u.settings.WellnessInsightsEnabled {
		for _, t := range []insight.Type{insight.DigitalFatigue, insight.AttentionPattern} {
			if ins, ok := u.insights.Generate(t, time.Now().UTC()); ok {
				out.Insights = append(out.Insights, ins)
			}
		}
	}
	return out, nil
}

// #endregion queries

// #region apply-helpers

// applyToTree runs tag changes through conflict resolution for each
// target, then propagates to children with the user's factor.
func (e *Engine) applyToTree(u *userState, targets []string, changes map[string]float64) error {
	for _, target := range targets {
		if err := u.tree.UpdateTags(target, changes); err != nil {
			return err
		}
		if u.settings.PropagationFactor > 0 {
			if err := u.tree.Propagate(target, u.settings.PropagationFactor); err != nil {
				return err
			}
		}
	}
	return nil
}

// summarize groups tag changes into a human-readable sentence by
// category, e.g. "Style: more calm; Layout: more minimal".
func (e *Engine) summarize(changes map[string]float64) string {
	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	sort.Strings(names)

	var style, lay []string
	for _, name := range names {
		tag, ok := e.reg.Lookup(name)
		if !ok {
			continue
		}
		switch tag.Category {
		case tags.CategoryStyle:
			style = append(style, "more "+name)
		case tags.CategoryLayout:
			lay = append(lay, "more "+name)
		}
	}

	var parts []string
	if len(style) > 0 {
		parts = append(parts, "Style: "+strings.Join(style, ", "))
	}
	if len(lay) > 0 {
		parts = append(parts, "Layout: "+strings.Join(lay, ", "))
	}
	if len(parts) == 0 {
		return "Interface adjusted"
	}
	return strings.Join(parts, "; ")
}

func scaleChanges(changes map[string]float64, factor float64) map[string]float64 {
	out := make(map[string]float64, len(changes))
	for name, weight := range changes {
		out[name] = weight * factor
	}
	return out
}

// fatigueProxy derives a normalized strain value from blink rate
// relative to the user's baseline. Only this derived value reaches the
// insight builder.
func fatigueProxy(r biometric.Reading, profile *biometric.Profile) float64 {
	baseline := 0.15
	if profile.Seeded && profile.BaselineBlinkRate > 0 {
		baseline = profile.BaselineBlinkRate
	}
	v := r.BlinkRate / (2 * baseline)
	if v > 1 {
		v = 1
	}
	return v
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// #endregion apply-helpers

// #region persistence

// Persistence happens after the in-memory mutation and never blocks the
// caller; failures are logged and the in-memory state stays
// authoritative.
func (e *Engine) persistAsync(op string, fn func() error) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := fn(); err != nil {
			e.log.Warn("persist failed", zap.String("op", op), zap.Error(err))
		}
	}()
}

func (e *Engine) persistCommand(entry *historyEntry, userID string) {
	rec := store.CommandRecord{
		ID:         entry.id,
		UserID:     userID,
		Timestamp:  entry.timestamp,
		Tier:       string(entry.tier),
		EntryMode:  string(entry.entryMode),
		RawInput:   entry.rawInput,
		Targets:    append([]string(nil), entry.targets...),
		TagChanges: copyChanges(entry.tagChanges),
		Summary:    entry.summary,
		Applied:    entry.applied,
		Reversible: entry.reversible,
	}
	e.persistAsync("save command", func() error { return e.store.SaveCommand(rec) })
}

func (e *Engine) persistRevert(commandID string) {
	e.persistAsync("mark reverted", func() error { return e.store.MarkCommandReverted(commandID) })
}

func (e *Engine) persistDataPoint(r biometric.Reading, quality float64) {
	readingJSON, err := json.Marshal(r)
	if err != nil {
		e.log.Warn("marshal reading", zap.Error(err))
		return
	}
	dp := store.DataPoint{
		ID:          uuid.New().String(),
		SessionID:   r.SessionID,
		Timestamp:   r.Timestamp,
		Quality:     quality,
		ReadingJSON: string(readingJSON),
	}
	e.persistAsync("save data point", func() error { return e.store.SaveDataPoint(dp) })
}

func (e *Engine) persistAdaptation(userID, sessionID string, d decision.Decision, ts time.Time) {
	paramsJSON, err := json.Marshal(d.Params)
	if err != nil {
		e.log.Warn("marshal params", zap.Error(err))
		return
	}
	rec := store.AdaptationRecord{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		UserID:     userID,
		Trigger:    string(d.Trigger),
		Type:       string(d.Type),
		ParamsJSON: string(paramsJSON),
		Confidence: d.Confidence,
		Urgency:    d.Urgency,
		Reasoning:  d.Reasoning,
		CreatedAt:  ts,
	}
	e.persistAsync("save adaptation", func() error { return e.store.SaveAdaptation(rec) })
}

func (e *Engine) persistBaseline(profile *biometric.Profile) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		e.log.Warn("marshal profile", zap.Error(err))
		return
	}
	rec := store.BaselineRecord{
		UserID:      profile.UserID,
		ProfileJSON: string(profileJSON),
		UpdatedAt:   time.Now().UTC(),
	}
	e.persistAsync("save baseline", func() error { return e.store.SaveBaseline(rec) })
}

func copyChanges(changes map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(changes))
	for k, v := range changes {
		out[k] = v
	}
	return out
}

// #endregion persistence
