package decision

import (
	"github.com/aurasys/reflex-engine/internal/trigger"
)

// #region adaptation-type

// AdaptationType identifies which aspect of the interface a decision
// changes. The set is closed: new kinds require a new constant and a
// parameter struct, not a loose map key.
type AdaptationType string

const (
	ColorScheme           AdaptationType = "color_scheme"
	Typography            AdaptationType = "typography"
	LayoutDensity         AdaptationType = "layout_density"
	InformationFiltering  AdaptationType = "information_filtering"
	InteractionSpeed      AdaptationType = "interaction_speed"
	ContentPrioritization AdaptationType = "content_prioritization"
	AutomationLevel       AdaptationType = "automation_level"
	FeedbackIntensity     AdaptationType = "feedback_intensity"
)

// #endregion adaptation-type

// #region parameters

// Parameters is the closed set of per-type adaptation parameters.
type Parameters interface {
	isParameters()
}

// ColorSchemeParams adjusts palette, intensity, brightness, or contrast.
type ColorSchemeParams struct {
	Scheme     string  `json:"scheme,omitempty"` // calming, warm, ...
	Intensity  float64 `json:"intensity,omitempty"`
	Brightness float64 `json:"brightness,omitempty"`
	Contrast   string  `json:"contrast,omitempty"` // high
}

// TypographyParams scales type size and spacing.
type TypographyParams struct {
	SizeScale    float64 `json:"size_scale"`
	SpacingScale float64 `json:"spacing_scale"`
}

// LayoutDensityParams selects an overall density preset.
type LayoutDensityParams struct {
	Density string `json:"density"` // minimal, simplified, detailed
}

// InformationFilteringParams selects how aggressively content is filtered.
type InformationFilteringParams struct {
	Level string `json:"filter_level"` // essential_only, high_priority, comprehensive
}

// InteractionSpeedParams adjusts interaction pacing.
type InteractionSpeedParams struct {
	Speed string `json:"speed"` // relaxed
}

// ContentPrioritizationParams reorders or reframes content.
type ContentPrioritizationParams struct {
	HighlightImportant bool   `json:"highlight_important,omitempty"`
	FocusMode          bool   `json:"focus_mode,omitempty"`
	ComparisonMode     bool   `json:"comparison_mode,omitempty"`
	DetailLevel        string `json:"detail_level,omitempty"` // enhanced
}

// AutomationLevelParams changes how much the system does unprompted.
type AutomationLevelParams struct {
	Level       string `json:"level,omitempty"`       // increased
	Suggestions string `json:"suggestions,omitempty"` // enhanced
}

// FeedbackIntensityParams tunes guidance and feedback volume.
type FeedbackIntensityParams struct {
	Intensity       string `json:"intensity,omitempty"` // enhanced
	Explanations    bool   `json:"explanations,omitempty"`
	Guidance        bool   `json:"guidance,omitempty"`
	DecisionSupport bool   `json:"decision_support,omitempty"`
}

func (ColorSchemeParams) isParameters()           {}
func (TypographyParams) isParameters()            {}
func (LayoutDensityParams) isParameters()         {}
func (InformationFilteringParams) isParameters()  {}
func (InteractionSpeedParams) isParameters()      {}
func (ContentPrioritizationParams) isParameters() {}
func (AutomationLevelParams) isParameters()       {}
func (FeedbackIntensityParams) isParameters()     {}

// #endregion parameters

// #region decision

// Decision is the ephemeral output of synthesis. It only becomes a
// persisted adaptation after passing the cooldown gate.
type Decision struct {
	Trigger    trigger.Trigger
	Type       AdaptationType
	Params     Parameters
	Confidence float64
	Urgency    float64
	Reasoning  string
}

// Candidate pairs an adaptation type with its base parameters in a
// trigger's ranked candidate list.
type Candidate struct {
	Type   AdaptationType
	Params Parameters
}

// #endregion decision
