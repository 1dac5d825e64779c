package trigger

// #region trigger

// Trigger is a derived classification of a biometric reading. Triggers are
// recomputed per reading and never stored.
type Trigger string

const (
	StressElevation    Trigger = "stress_elevation"
	CognitiveOverload  Trigger = "cognitive_overload"
	AttentionDeficit   Trigger = "attention_deficit"
	FatigueDetection   Trigger = "fatigue_detection"
	ConfusionIndicator Trigger = "confusion_indicator"
	HighEngagement     Trigger = "high_engagement"
	DecisionHesitation Trigger = "decision_hesitation"
)

// All lists every trigger in detection order.
var All = []Trigger{
	StressElevation,
	CognitiveOverload,
	AttentionDeficit,
	FatigueDetection,
	ConfusionIndicator,
	HighEngagement,
	DecisionHesitation,
}

// #endregion trigger

// #region config

// Config holds the detection thresholds. These are behavioral constants
// exposed as configuration.
type Config struct {
	StressThreshold        float64 // absolute stress cutoff without a baseline
	StressBaselineMargin   float64 // added to a learned stress baseline
	StressTrendSlope       float64 // per-sample slope over last 5 stress readings
	CognitiveLoadThreshold float64
	SustainedAttention     float64 // attention floor for the overload test
	PupilDilationDelta     float64 // normalized dilation over last 3 samples
	AttentionThreshold     float64
	GazeVarianceThreshold  float64 // per-axis variance over last 5 samples
	BlinkRateMultiplier    float64 // fatigue: multiple of baseline blink rate
	DefaultBaselineBlink   float64 // fallback when no profile exists
	AttentionDeclineSlope  float64 // fatigue: slope over last 10 samples
	ConfusionExpression    float64 // "confused" expression cutoff
	FrownClusterThreshold  float64
	NeutralThreshold       float64
	FlowAttentionFloor     float64 // high engagement: attention cutoff
	FlowStressLow          float64 // flow-state stress band
	FlowStressHigh         float64
	GazeStabilityThreshold float64 // 1 - variance cutoff
	StableAttentionFloor   float64
	UncertaintyExpression  float64 // surprise + fear cutoff
	GazeReversalCount      int     // direction reversals over last 6 samples
}

// DefaultConfig returns the standard detection thresholds.
func DefaultConfig() Config {
	return Config{
		StressThreshold:        0.7,
		StressBaselineMargin:   0.2,
		StressTrendSlope:       0.02,
		CognitiveLoadThreshold: 0.8,
		SustainedAttention:     0.7,
		PupilDilationDelta:     0.1,
		AttentionThreshold:     0.3,
		GazeVarianceThreshold:  0.1,
		BlinkRateMultiplier:    1.5,
		DefaultBaselineBlink:   0.15,
		AttentionDeclineSlope:  -0.01,
		ConfusionExpression:    0.3,
		FrownClusterThreshold:  0.2,
		NeutralThreshold:       0.5,
		FlowAttentionFloor:     0.8,
		FlowStressLow:          0.3,
		FlowStressHigh:         0.6,
		GazeStabilityThreshold: 0.8,
		StableAttentionFloor:   0.7,
		UncertaintyExpression:  0.2,
		GazeReversalCount:      2,
	}
}

// #endregion config
