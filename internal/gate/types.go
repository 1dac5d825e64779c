package gate

import (
	"time"

	"github.com/aurasys/reflex-engine/internal/decision"
)

// #region config

// Config holds the admission policy: per-type cooldown windows and the
// hard confidence floor.
type Config struct {
	Cooldowns       map[decision.AdaptationType]time.Duration
	DefaultCooldown time.Duration
	MinConfidence   float64
}

// DefaultConfig returns the standard cooldown table and the 0.6
// confidence floor that prevents low-confidence flapping.
func DefaultConfig() Config {
	return Config{
		Cooldowns: map[decision.AdaptationType]time.Duration{
			decision.ColorScheme:           60 * time.Second,
			decision.LayoutDensity:         120 * time.Second,
			decision.InformationFiltering:  30 * time.Second,
			decision.Typography:            180 * time.Second,
			decision.InteractionSpeed:      45 * time.Second,
			decision.ContentPrioritization: 60 * time.Second,
			decision.AutomationLevel:       300 * time.Second,
			decision.FeedbackIntensity:     90 * time.Second,
		},
		DefaultCooldown: 60 * time.Second,
		MinConfidence:   0.6,
	}
}

// #endregion config

// #region result

// Result is the outcome of an admission check. A rejection is an expected
// throttling outcome, not an error; Reason is for debug logging.
type Result struct {
	Admitted bool
	Reason   string
}

// #endregion result
