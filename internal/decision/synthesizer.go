package decision

import (
	"fmt"
	"time"

	"github.com/aurasys/reflex-engine/internal/biometric"
	"github.com/aurasys/reflex-engine/internal/trigger"
)

// #region candidate-table

// candidates maps each trigger to its ranked adaptation candidates,
// best first.
var candidates = map[trigger.Trigger][]Candidate{
	trigger.StressElevation: {
		{ColorScheme, ColorSchemeParams{Scheme: "calming", Intensity: 0.8}},
		{InformationFiltering, InformationFilteringParams{Level: "essential_only"}},
		{LayoutDensity, LayoutDensityParams{Density: "simplified"}},
	},
	trigger.CognitiveOverload: {
		{LayoutDensity, LayoutDensityParams{Density: "minimal"}},
		{InformationFiltering, InformationFilteringParams{Level: "high_priority"}},
		{Typography, TypographyParams{SizeScale: 1.2, SpacingScale: 1.3}},
	},
	trigger.AttentionDeficit: {
		{ContentPrioritization, ContentPrioritizationParams{HighlightImportant: true}},
		{FeedbackIntensity, FeedbackIntensityParams{Intensity: "enhanced"}},
		{ColorScheme, ColorSchemeParams{Contrast: "high"}},
	},
	trigger.FatigueDetection: {
		{ColorScheme, ColorSchemeParams{Scheme: "warm", Brightness: 0.7}},
		{AutomationLevel, AutomationLevelParams{Level: "increased"}},
		{InteractionSpeed, InteractionSpeedParams{Speed: "relaxed"}},
	},
	trigger.ConfusionIndicator: {
		{FeedbackIntensity, FeedbackIntensityParams{Explanations: true, Guidance: true}},
		{LayoutDensity, LayoutDensityParams{Density: "simplified"}},
		{ContentPrioritization, ContentPrioritizationParams{FocusMode: true}},
	},
	trigger.HighEngagement: {
		{InformationFiltering, InformationFilteringParams{Level: "comprehensive"}},
		{ContentPrioritization, ContentPrioritizationParams{DetailLevel: "enhanced"}},
		{LayoutDensity, LayoutDensityParams{Density: "detailed"}},
	},
	trigger.DecisionHesitation: {
		{FeedbackIntensity, FeedbackIntensityParams{DecisionSupport: true}},
		{ContentPrioritization, ContentPrioritizationParams{ComparisonMode: true}},
		{AutomationLevel, AutomationLevelParams{Suggestions: "enhanced"}},
	},
}

// urgencyBase weights each trigger before severity scaling.
var urgencyBase = map[trigger.Trigger]float64{
	trigger.StressElevation:    0.9,
	trigger.CognitiveOverload:  0.8,
	trigger.ConfusionIndicator: 0.7,
	trigger.FatigueDetection:   0.6,
	trigger.AttentionDeficit:   0.5,
	trigger.DecisionHesitation: 0.4,
	trigger.HighEngagement:     0.2,
}

// #endregion candidate-table

// #region selector

// Selector ranks a trigger's candidates. The default takes the first
// (highest-ranked) candidate; a learned ranking can be swapped in without
// touching the gate or detector.
type Selector func(t trigger.Trigger, cands []Candidate, profile *biometric.Profile) Candidate

// FirstCandidate is the default selector.
func FirstCandidate(_ trigger.Trigger, cands []Candidate, _ *biometric.Profile) Candidate {
	return cands[0]
}

// #endregion selector

// #region synthesizer

// Synthesizer maps triggers to adaptation decisions and maintains the
// per-user learned baseline.
type Synthesizer struct {
	selector Selector
}

// NewSynthesizer creates a synthesizer. A nil selector uses FirstCandidate.
func NewSynthesizer(selector Selector) *Synthesizer {
	if selector == nil {
		selector = FirstCandidate
	}
	return &Synthesizer{selector: selector}
}

// #endregion synthesizer

// #region synthesize

// Synthesize produces an adaptation decision for a fired trigger. profile
// may be nil.
func (s *Synthesizer) Synthesize(t trigger.Trigger, r biometric.Reading, profile *biometric.Profile) (Decision, error) {
	cands, ok := candidates[t]
	if !ok {
		return Decision{}, fmt.Errorf("no adaptation candidates for trigger %q", t)
	}

	chosen := s.selector(t, cands, profile)
	params := personalize(chosen.Params, profile)

	confidence := s.confidence(r, profile)
	urgency := s.urgency(t, r)

	return Decision{
		Trigger:    t,
		Type:       chosen.Type,
		Params:     params,
		Confidence: confidence,
		Urgency:    urgency,
		Reasoning:  fmt.Sprintf("triggered by %s with confidence %.2f", t, confidence),
	}, nil
}

// #endregion synthesize

// #region personalize

// personalize adjusts base parameters from the user's learned preferences:
// intensity scales by sensitivity, and preferred color schemes substitute
// the default ones.
func personalize(p Parameters, profile *biometric.Profile) Parameters {
	if profile == nil {
		return p
	}
	cs, ok := p.(ColorSchemeParams)
	if !ok {
		return p
	}
	if cs.Intensity > 0 && profile.Sensitivity > 0 {
		cs.Intensity *= profile.Sensitivity
	}
	if cs.Scheme != "" {
		if preferred, ok := profile.PreferredSchemes[cs.Scheme]; ok && preferred != "" {
			cs.Scheme = preferred
		}
	}
	return cs
}

// #endregion personalize

// #region confidence

// confidence is reading confidence discounted by capture quality, averaged
// with the baseline's learning confidence when one exists.
func (s *Synthesizer) confidence(r biometric.Reading, profile *biometric.Profile) float64 {
	c := r.Confidence * biometric.QualityScore(r)
	if profile != nil && profile.LearningConfidence > 0 {
		c = (c + profile.LearningConfidence) / 2
	}
	if c > 1 {
		c = 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

// #endregion confidence

// #region urgency

// urgency is the trigger's base weight scaled by the triggering scalar.
func (s *Synthesizer) urgency(t trigger.Trigger, r biometric.Reading) float64 {
	u, ok := urgencyBase[t]
	if !ok {
		u = 0.5
	}
	switch t {
	case trigger.StressElevation:
		u *= r.StressLevel
	case trigger.CognitiveOverload:
		u *= r.CognitiveLoad
	case trigger.AttentionDeficit:
		u *= 1.0 - r.AttentionScore
	}
	if u > 1 {
		u = 1
	}
	return u
}

// #endregion urgency

// #region baseline

// baselineAlpha is the EMA learning rate for baseline updates.
const baselineAlpha = 0.1

// UpdateBaseline folds a processed reading into the user's baseline.
// Callers serialize per user; the synthesizer is the only mutator.
func (s *Synthesizer) UpdateBaseline(profile *biometric.Profile, r biometric.Reading) {
	if !profile.Seeded {
		profile.BaselineStress = r.StressLevel
		profile.BaselineBlinkRate = r.BlinkRate
		profile.BaselineAttention = r.AttentionScore
		profile.Seeded = true
	} else {
		profile.BaselineStress = baselineAlpha*r.StressLevel + (1-baselineAlpha)*profile.BaselineStress
		profile.BaselineBlinkRate = baselineAlpha*r.BlinkRate + (1-baselineAlpha)*profile.BaselineBlinkRate
		profile.BaselineAttention = baselineAlpha*r.AttentionScore + (1-baselineAlpha)*profile.BaselineAttention
	}

	profile.ReadingCount++
	profile.LearningConfidence = float64(profile.ReadingCount) / 100.0
	if profile.LearningConfidence > 1 {
		profile.LearningConfidence = 1
	}
	profile.LastUpdate = time.Now().UTC()
}

// #endregion baseline
