package store

import (
	"time"
)

// #region records

// DataPoint is one persisted biometric reading together with its
// computed quality score. Raw reading fields are stored as JSON since
// the store never interprets them.
type DataPoint struct {
	ID          string
	SessionID   string
	Timestamp   time.Time
	Quality     float64
	ReadingJSON string
}

// AdaptationRecord is an admitted adaptation decision. Only decisions
// that passed the cooldown gate are persisted.
type AdaptationRecord struct {
	ID         string
	SessionID  string
	UserID     string
	Trigger    string
	Type       string
	ParamsJSON string
	Confidence float64
	Urgency    float64
	Reasoning  string
	CreatedAt  time.Time
}

// CommandRecord is a reflex command from any tier, persisted after the
// in-memory mutation succeeds.
type CommandRecord struct {
	ID         string
	UserID     string
	Timestamp  time.Time
	Tier       string
	EntryMode  string
	RawInput   string
	Targets    []string
	TagChanges map[string]float64
	Summary    string
	Applied    bool
	Reversible bool
}

// BaselineRecord is a user's learned biometric baseline, stored as an
// opaque JSON profile keyed by user.
type BaselineRecord struct {
	UserID      string
	ProfileJSON string
	UpdatedAt   time.Time
}

// #endregion records

// #region interface

// Store persists readings, adaptations, commands, and baselines. The
// engine mutates in-memory state first and writes through afterwards;
// implementations must be safe for concurrent use.
type Store interface {
	SaveDataPoint(dp DataPoint) error
	SaveAdaptation(rec AdaptationRecord) error
	SaveCommand(rec CommandRecord) error
	MarkCommandReverted(commandID string) error
	ListCommands(userID string, limit int) ([]CommandRecord, error)
	LoadBaseline(userID string) (BaselineRecord, bool, error)
	SaveBaseline(rec BaselineRecord) error
	Close() error
}

// #endregion interface
