package biometric

import "time"

// #region profile

// Profile is a user's long-lived learned baseline. It outlives sessions
// and is mutated only by the decision synthesizer, serially per user.
type Profile struct {
	UserID string `json:"user_id"`

	// Exponential moving averages over processed readings.
	BaselineStress    float64 `json:"baseline_stress"`
	BaselineBlinkRate float64 `json:"baseline_blink_rate"`
	BaselineAttention float64 `json:"baseline_attention"`

	// Set to false until the first reading seeds the averages.
	Seeded bool `json:"seeded"`

	// ReadingCount drives LearningConfidence, which saturates at 1.0.
	ReadingCount       int     `json:"reading_count"`
	LearningConfidence float64 `json:"learning_confidence"`

	// Personalization preferences.
	Sensitivity      float64           `json:"sensitivity"`       // intensity scaling, 0 disables
	PreferredSchemes map[string]string `json:"preferred_schemes"` // scheme name substitutions

	LastUpdate time.Time `json:"last_update"`
}

// #endregion profile
