package biometric

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// #region reading

// Reading is one timestamped biometric snapshot for a session. All scalar
// scores are normalized to [0, 1]; gaze coordinates may fall outside the
// screen (that degrades quality, it does not invalidate the reading).
type Reading struct {
	SessionID      string             `json:"session_id" validate:"required"`
	Timestamp      time.Time          `json:"timestamp" validate:"required"`
	Expressions    map[string]float64 `json:"facial_expressions" validate:"dive,gte=0,lte=1"`
	GazePosition   [2]float64         `json:"gaze_position"`
	PupilDiameter  float64            `json:"pupil_diameter" validate:"gte=0"`
	BlinkRate      float64            `json:"blink_rate" validate:"gte=0"`
	AttentionScore float64            `json:"attention_score" validate:"gte=0,lte=1"`
	StressLevel    float64            `json:"stress_level" validate:"gte=0,lte=1"`
	CognitiveLoad  float64            `json:"cognitive_load" validate:"gte=0,lte=1"`
	Confidence     float64            `json:"confidence" validate:"gte=0,lte=1"`
}

// #endregion reading

// #region signal

// Signal is the simplified passive-tier signal shape. SystemFacingOnly is
// always true: raw signals never cross into a user-facing payload.
type Signal struct {
	SessionID        string    `json:"session_id"`
	Timestamp        time.Time `json:"timestamp"`
	SignalType       string    `json:"signal_type"` // fatigue, stress, attention_drift, eye_strain
	Intensity        float64   `json:"intensity"`
	Confidence       float64   `json:"confidence"`
	SystemFacingOnly bool      `json:"-"`
}

// #endregion signal

// #region validation

// ValidationError reports a malformed reading. Malformed readings are
// rejected before scoring and never enter a session window.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid reading: %s %s", e.Field, e.Reason)
}

var validate = validator.New()

// Validate checks required fields and scalar ranges on a reading.
func (r *Reading) Validate() error {
	if err := validate.Struct(r); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ValidationError{
				Field:  fe.Field(),
				Reason: fmt.Sprintf("failed %q constraint", fe.Tag()),
			}
		}
		return &ValidationError{Field: "reading", Reason: err.Error()}
	}
	return nil
}

// #endregion validation
