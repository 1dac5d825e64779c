package store

import (
	"fmt"
	"sync"
)

// #region memory-store

// MemoryStore is an in-memory Store for tests and for running without
// a database. It mirrors SQLiteStore semantics.
type MemoryStore struct {
	mu          sync.Mutex
	dataPoints  []DataPoint
	adaptations []AdaptationRecord
	commands    []CommandRecord
	baselines   map[string]BaselineRecord
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{baselines: map[string]BaselineRecord{}}
}

func (m *MemoryStore) SaveDataPoint(dp DataPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dataPoints = append(m.dataPoints, dp)
	return nil
}

func (m *MemoryStore) SaveAdaptation(rec AdaptationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adaptations = append(m.adaptations, rec)
	return nil
}

func (m *MemoryStore) SaveCommand(rec CommandRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, rec)
	return nil
}

func (m *MemoryStore) MarkCommandReverted(commandID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.commands {
		if m.commands[i].ID == commandID {
			m.commands[i].Applied = false
			return nil
		}
	}
	return fmt.Errorf("command %s not found", commandID)
}

func (m *MemoryStore) ListCommands(userID string, limit int) ([]CommandRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []CommandRecord
	for i := len(m.commands) - 1; i >= 0 && len(out) < limit; i-- {
		if m.commands[i].UserID == userID {
			out = append(out, m.commands[i])
		}
	}
	return out, nil
}

func (m *MemoryStore) LoadBaseline(userID string) (BaselineRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.baselines[userID]
	return rec, ok, nil
}

func (m *MemoryStore) SaveBaseline(rec BaselineRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baselines[rec.UserID] = rec
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// #endregion memory-store

// #region test-accessors

// DataPointCount reports how many readings were persisted.
func (m *MemoryStore) DataPointCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dataPoints)
}

// AdaptationCount reports how many admitted decisions were persisted.
func (m *MemoryStore) AdaptationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.adaptations)
}

// #endregion test-accessors
