package trigger

import (
	"github.com/aurasys/reflex-engine/internal/biometric"
)

// #region detector

// Detector classifies a reading, plus its session window, into zero or
// more triggers. Detect is stateless given its inputs: all history lives
// in the caller-supplied window.
type Detector struct {
	config Config
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(config Config) *Detector {
	return &Detector{config: config}
}

// #endregion detector

// #region detect

// Detect runs every trigger's detector against the reading and returns the
// full set that fired, in fixed order. profile may be nil (no learned
// baseline yet). The synthesizer decides which triggers to act on.
func (d *Detector) Detect(r biometric.Reading, w *biometric.SessionWindow, profile *biometric.Profile) []Trigger {
	var fired []Trigger

	checks := map[Trigger]bool{
		StressElevation:    d.stressElevation(r, w, profile),
		CognitiveOverload:  d.cognitiveOverload(r, w),
		AttentionDeficit:   d.attentionDeficit(r, w),
		FatigueDetection:   d.fatigue(r, w, profile),
		ConfusionIndicator: d.confusion(r),
		HighEngagement:     d.highEngagement(r, w),
		DecisionHesitation: d.decisionHesitation(r, w),
	}
	for _, t := range All {
		if checks[t] {
			fired = append(fired, t)
		}
	}
	return fired
}

// #endregion detect

// #region stress

func (d *Detector) stressElevation(r biometric.Reading, w *biometric.SessionWindow, profile *biometric.Profile) bool {
	threshold := d.config.StressThreshold
	if profile != nil && profile.Seeded {
		threshold = profile.BaselineStress + d.config.StressBaselineMargin
	}
	if r.StressLevel > threshold {
		return true
	}

	// Trend: increasing stress over the last 5 readings.
	stress := values(w.Recent(5), func(p biometric.Reading) float64 { return p.StressLevel })
	if len(stress) >= 3 {
		if slope(stress) > d.config.StressTrendSlope {
			return true
		}
	}
	return false
}

// #endregion stress

// #region cognitive-overload

func (d *Detector) cognitiveOverload(r biometric.Reading, w *biometric.SessionWindow) bool {
	// High load with sustained attention.
	if r.CognitiveLoad > d.config.CognitiveLoadThreshold && r.AttentionScore > d.config.SustainedAttention {
		return true
	}

	// Rapid pupil dilation indicates mental effort.
	pupils := values(w.Recent(3), func(p biometric.Reading) float64 { return p.PupilDiameter })
	if len(pupils) >= 2 {
		if pupils[len(pupils)-1]-pupils[0] > d.config.PupilDilationDelta {
			return true
		}
	}
	return false
}

// #endregion cognitive-overload

// #region attention-deficit

func (d *Detector) attentionDeficit(r biometric.Reading, w *biometric.SessionWindow) bool {
	if r.AttentionScore < d.config.AttentionThreshold {
		return true
	}

	// Erratic gaze: high variance on either axis over the last 5 samples.
	recent := w.Recent(5)
	gazeX := values(recent, func(p biometric.Reading) float64 { return p.GazePosition[0] })
	gazeY := values(recent, func(p biometric.Reading) float64 { return p.GazePosition[1] })
	if len(gazeX) >= 3 && len(gazeY) >= 3 {
		if variance(gazeX) > d.config.GazeVarianceThreshold || variance(gazeY) > d.config.GazeVarianceThreshold {
			return true
		}
	}
	return false
}

// #endregion attention-deficit

// #region fatigue

func (d *Detector) fatigue(r biometric.Reading, w *biometric.SessionWindow, profile *biometric.Profile) bool {
	baselineBlink := d.config.DefaultBaselineBlink
	if profile != nil && profile.Seeded {
		baselineBlink = profile.BaselineBlinkRate
	}
	if r.BlinkRate > baselineBlink*d.config.BlinkRateMultiplier {
		return true
	}

	// Declining attention over the last 10 samples.
	attention := values(w.Recent(10), func(p biometric.Reading) float64 { return p.AttentionScore })
	if len(attention) >= 5 {
		if slope(attention) < d.config.AttentionDeclineSlope {
			return true
		}
	}
	return false
}

// #endregion fatigue

// #region confusion

func (d *Detector) confusion(r biometric.Reading) bool {
	if r.Expressions["confused"] > d.config.ConfusionExpression {
		return true
	}

	// Frown cluster with a concentrated (neutral) base expression.
	frown := r.Expressions["angry"] + r.Expressions["sad"]
	if frown > d.config.FrownClusterThreshold && r.Expressions["neutral"] > d.config.NeutralThreshold {
		return true
	}
	return false
}

// #endregion confusion

// #region high-engagement

func (d *Detector) highEngagement(r biometric.Reading, w *biometric.SessionWindow) bool {
	// Flow state: high attention with moderate stress.
	if r.AttentionScore > d.config.FlowAttentionFloor &&
		r.StressLevel > d.config.FlowStressLow && r.StressLevel < d.config.FlowStressHigh {
		return true
	}

	// Stable gaze with good attention.
	gazeX := values(w.Recent(5), func(p biometric.Reading) float64 { return p.GazePosition[0] })
	if len(gazeX) >= 3 {
		stability := 1.0 - variance(gazeX)
		if stability > d.config.GazeStabilityThreshold && r.AttentionScore > d.config.StableAttentionFloor {
			return true
		}
	}
	return false
}

// #endregion high-engagement

// #region decision-hesitation

func (d *Detector) decisionHesitation(r biometric.Reading, w *biometric.SessionWindow) bool {
	// Micro-expressions of uncertainty.
	uncertainty := r.Expressions["surprised"] + r.Expressions["fearful"]
	if uncertainty > d.config.UncertaintyExpression {
		return true
	}

	// Oscillating gaze-x over the last 6 samples.
	gazeX := values(w.Recent(6), func(p biometric.Reading) float64 { return p.GazePosition[0] })
	if len(gazeX) >= 4 {
		if directionReversals(gazeX) >= d.config.GazeReversalCount {
			return true
		}
	}
	return false
}

// #endregion decision-hesitation

// #region math-helpers

// values extracts one scalar per reading, oldest first.
func values(points []biometric.Reading, get func(biometric.Reading) float64) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = get(p)
	}
	return out
}

// slope computes the least-squares linear slope of v over sample index.
// Returns 0 for fewer than 2 samples (no signal, no division by zero).
func slope(v []float64) float64 {
	n := len(v)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range v {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := float64(n)*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (float64(n)*sumXY - sumX*sumY) / denom
}

// variance computes the population variance of v. Returns 0 when empty.
func variance(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	mean := sum / float64(len(v))
	var acc float64
	for _, x := range v {
		d := x - mean
		acc += d * d
	}
	return acc / float64(len(v))
}

// directionReversals counts sign changes in the step direction of v.
func directionReversals(v []float64) int {
	reversals := 0
	for i := 1; i < len(v)-1; i++ {
		if (v[i] > v[i-1]) != (v[i+1] > v[i]) {
			reversals++
		}
	}
	return reversals
}

// #endregion math-helpers
