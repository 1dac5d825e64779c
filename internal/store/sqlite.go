package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS data_points (
	id            TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	timestamp     TEXT NOT NULL,
	quality       REAL NOT NULL,
	reading_json  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_data_points_session ON data_points(session_id, timestamp);

CREATE TABLE IF NOT EXISTS adaptations (
	id            TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	user_id       TEXT NOT NULL,
	trigger_type  TEXT NOT NULL,
	adaptation    TEXT NOT NULL,
	params_json   TEXT NOT NULL,
	confidence    REAL NOT NULL,
	urgency       REAL NOT NULL,
	reasoning     TEXT,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_adaptations_session ON adaptations(session_id, created_at);

CREATE TABLE IF NOT EXISTS commands (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	timestamp     TEXT NOT NULL,
	tier          TEXT NOT NULL,
	entry_mode    TEXT NOT NULL,
	raw_input     TEXT,
	targets_json  TEXT NOT NULL,
	changes_json  TEXT NOT NULL,
	summary       TEXT,
	applied       INTEGER NOT NULL,
	reversible    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_commands_user ON commands(user_id, timestamp);

CREATE TABLE IF NOT EXISTS baselines (
	user_id       TEXT PRIMARY KEY,
	profile_json  TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);
`
// #endregion schema

// #region store-struct
// SQLiteStore persists engine records in SQLite.
type SQLiteStore struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewSQLiteStore opens a SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
// #endregion close

// #region data-points
// SaveDataPoint inserts one reading with its quality score.
func (s *SQLiteStore) SaveDataPoint(dp DataPoint) error {
	_, err := s.db.Exec(
		`INSERT INTO data_points (id, session_id, timestamp, quality, reading_json)
		 VALUES (?, ?, ?, ?, ?)`,
		dp.ID, dp.SessionID, dp.Timestamp.UTC().Format(time.RFC3339Nano), dp.Quality, dp.ReadingJSON,
	)
	if err != nil {
		return fmt.Errorf("insert data point: %w", err)
	}
	return nil
}
// #endregion data-points

// #region adaptations
// SaveAdaptation inserts an admitted adaptation decision.
func (s *SQLiteStore) SaveAdaptation(rec AdaptationRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO adaptations (id, session_id, user_id, trigger_type, adaptation, params_json, confidence, urgency, reasoning, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.UserID, rec.Trigger, rec.Type, rec.ParamsJSON,
		rec.Confidence, rec.Urgency, rec.Reasoning, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert adaptation: %w", err)
	}
	return nil
}
// #endregion adaptations

// #region commands
// SaveCommand inserts a reflex command record.
func (s *SQLiteStore) SaveCommand(rec CommandRecord) error {
	targetsJSON, err := json.Marshal(rec.Targets)
	if err != nil {
		return fmt.Errorf("marshal targets: %w", err)
	}
	changesJSON, err := json.Marshal(rec.TagChanges)
	if err != nil {
		return fmt.Errorf("marshal tag changes: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO commands (id, user_id, timestamp, tier, entry_mode, raw_input, targets_json, changes_json, summary, applied, reversible)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.Tier,
		rec.EntryMode, rec.RawInput, string(targetsJSON), string(changesJSON),
		rec.Summary, boolToInt(rec.Applied), boolToInt(rec.Reversible),
	)
	if err != nil {
		return fmt.Errorf("insert command: %w", err)
	}
	return nil
}

// MarkCommandReverted clears the applied flag on a persisted command.
func (s *SQLiteStore) MarkCommandReverted(commandID string) error {
	res, err := s.db.Exec(`UPDATE commands SET applied = 0 WHERE id = ?`, commandID)
	if err != nil {
		return fmt.Errorf("mark reverted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("command %s not found", commandID)
	}
	return nil
}

// ListCommands returns the most recent commands for a user, newest first.
func (s *SQLiteStore) ListCommands(userID string, limit int) ([]CommandRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, timestamp, tier, entry_mode, raw_input, targets_json, changes_json, summary, applied, reversible
		 FROM commands WHERE user_id = ? ORDER BY timestamp DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	defer rows.Close()

	var records []CommandRecord
	for rows.Next() {
		var rec CommandRecord
		var tsStr, targetsJSON, changesJSON string
		var applied, reversible int

		if err := rows.Scan(&rec.ID, &rec.UserID, &tsStr, &rec.Tier, &rec.EntryMode,
			&rec.RawInput, &targetsJSON, &changesJSON, &rec.Summary, &applied, &reversible); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, tsStr)
		if err := json.Unmarshal([]byte(targetsJSON), &rec.Targets); err != nil {
			return nil, fmt.Errorf("unmarshal targets: %w", err)
		}
		if err := json.Unmarshal([]byte(changesJSON), &rec.TagChanges); err != nil {
			return nil, fmt.Errorf("unmarshal tag changes: %w", err)
		}
		rec.Applied = applied != 0
		rec.Reversible = reversible != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}
// #endregion commands

// #region baselines
// LoadBaseline reads a user's stored profile. The second return value
// reports whether a baseline exists.
func (s *SQLiteStore) LoadBaseline(userID string) (BaselineRecord, bool, error) {
	var rec BaselineRecord
	var updatedStr string

	err := s.db.QueryRow(
		`SELECT user_id, profile_json, updated_at FROM baselines WHERE user_id = ?`, userID,
	).Scan(&rec.UserID, &rec.ProfileJSON, &updatedStr)
	if err == sql.ErrNoRows {
		return BaselineRecord{}, false, nil
	}
	if err != nil {
		return BaselineRecord{}, false, fmt.Errorf("load baseline %s: %w", userID, err)
	}
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return rec, true, nil
}

// SaveBaseline upserts a user's profile.
func (s *SQLiteStore) SaveBaseline(rec BaselineRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO baselines (user_id, profile_json, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET profile_json = excluded.profile_json, updated_at = excluded.updated_at`,
		rec.UserID, rec.ProfileJSON, rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save baseline: %w", err)
	}
	return nil
}
// #endregion baselines

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
