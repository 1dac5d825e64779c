package intent

// #region entry-mode

// EntryMode identifies how a command entered the system.
type EntryMode string

const (
	// Mirror is freeform feedback about the interface ("too noisy").
	Mirror EntryMode = "mirror"
	// Edit is a direct, element-targeted command ("make this smaller").
	Edit EntryMode = "edit"
	// Observe is passive biometric reflection. Observe input carries no
	// text to parse.
	Observe EntryMode = "observe"
)

// Valid reports whether m is one of the three known entry modes.
func (m EntryMode) Valid() bool {
	switch m {
	case Mirror, Edit, Observe:
		return true
	}
	return false
}

// #endregion entry-mode

// #region intent

// Intent is the structured result of parsing raw command text.
type Intent struct {
	EntryMode        EntryMode          `json:"entry_mode"`
	RawInput         string             `json:"raw_input"`
	DetectedPatterns []string           `json:"detected_patterns"`
	TagChanges       map[string]float64 `json:"tag_changes"`
	TargetElements   []string           `json:"target_elements"`
	Confidence       float64            `json:"confidence"`
}

// Matched reports whether the parser recognized anything actionable.
func (i Intent) Matched() bool {
	return len(i.TagChanges) > 0
}

// #endregion intent
