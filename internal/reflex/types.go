package reflex

import (
	"fmt"
	"time"

	"github.com/aurasys/reflex-engine/internal/biometric"
	"github.com/aurasys/reflex-engine/internal/intent"
)

// #region tier

// Tier is the trust level a command originates from. Each tier is
// independently toggleable per user.
type Tier string

const (
	// TierPassive is continuous biometric-reactive adaptation.
	TierPassive Tier = "passive"
	// TierSemiActive is freeform feedback and suggestions.
	TierSemiActive Tier = "semi_active"
	// TierActive is direct user commands.
	TierActive Tier = "active"
)

// tierFor maps an entry mode to the tier that owns it.
func tierFor(mode intent.EntryMode) Tier {
	switch mode {
	case intent.Observe:
		return TierPassive
	case intent.Mirror:
		return TierSemiActive
	default:
		return TierActive
	}
}

// #endregion tier

// #region settings

// Settings gates the three tiers and tunes adaptation behavior per user.
type Settings struct {
	UserID string `json:"user_id"`

	PassiveTierEnabled    bool `json:"passive_tier_enabled"`
	SemiActiveTierEnabled bool `json:"semi_active_tier_enabled"`
	ActiveTierEnabled     bool `json:"active_tier_enabled"`

	SystemMetricsEnabled    bool `json:"system_metrics_enabled"`
	WellnessInsightsEnabled bool `json:"wellness_insights_enabled"`

	BiometricLocalOnly bool `json:"biometric_processing_local_only"`
	DataRetentionDays  int  `json:"data_retention_days"`
	AutoSummarize      bool `json:"auto_summarize_changes"`

	AdaptationSensitivity float64 `json:"adaptation_sensitivity"`
	PropagationFactor     float64 `json:"propagation_factor"`
}

// DefaultSettings returns per-user defaults. The passive tier starts
// disabled: biometric adaptation is strictly opt-in.
func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:                userID,
		PassiveTierEnabled:    false,
		SemiActiveTierEnabled: true,
		ActiveTierEnabled:     true,
		SystemMetricsEnabled:  true,
		BiometricLocalOnly:    true,
		DataRetentionDays:     7,
		AutoSummarize:         true,
		AdaptationSensitivity: 0.5,
		PropagationFactor:     0.3,
	}
}

// #endregion settings

// #region command

// Command is the unified request shape for all three tiers.
type Command struct {
	UserID        string              `json:"user_id"`
	EntryMode     intent.EntryMode    `json:"entry_mode"`
	RawInput      string              `json:"raw_input,omitempty"`
	TargetElement string              `json:"target_element,omitempty"`
	Signals       []biometric.Reading `json:"signals,omitempty"`
}

// Result is returned from every tier entry point.
type Result struct {
	Applied    bool               `json:"applied"`
	TagChanges map[string]float64 `json:"tag_changes"`
	Summary    string             `json:"summary"`
	Reversible bool               `json:"reversible"`
	CommandID  string             `json:"command_id,omitempty"`
	Reason     string             `json:"reason,omitempty"`
}

// historyEntry is one applied (or since-reverted) command in a user's
// undo history.
type historyEntry struct {
	id         string
	timestamp  time.Time
	tier       Tier
	entryMode  intent.EntryMode
	rawInput   string
	targets    []string
	tagChanges map[string]float64
	summary    string
	applied    bool
	reversible bool
}

// #endregion command

// #region errors

// TierDisabledError is returned when a command is routed to a tier the
// user has switched off. No state is mutated.
type TierDisabledError struct {
	Tier Tier
}

func (e *TierDisabledError) Error() string {
	return fmt.Sprintf("%s tier is disabled", e.Tier)
}

// #endregion errors
