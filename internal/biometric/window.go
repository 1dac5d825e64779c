package biometric

import "time"

// #region defaults

// DefaultWindowSpan is the analysis window for trend detection.
const DefaultWindowSpan = 120 * time.Second

// DefaultWindowCap bounds the window even under faster-than-expected
// capture rates, keeping trend scans O(cap).
const DefaultWindowCap = 64

// #endregion defaults

// #region window-struct

// SessionWindow is a bounded, time-ordered sequence of recent readings for
// one session. It is owned exclusively by that session's processing path
// and never shared across sessions; it performs no locking.
type SessionWindow struct {
	span     time.Duration
	capacity int
	points   []Reading
}

// NewSessionWindow creates a window with the given span and capacity.
// Non-positive arguments fall back to the defaults.
func NewSessionWindow(span time.Duration, capacity int) *SessionWindow {
	if span <= 0 {
		span = DefaultWindowSpan
	}
	if capacity <= 0 {
		capacity = DefaultWindowCap
	}
	return &SessionWindow{span: span, capacity: capacity}
}

// #endregion window-struct

// #region add

// Add appends a reading. Trend detectors assume monotonic timestamps, so a
// reading older than the current tail is rejected and not stored.
func (w *SessionWindow) Add(r Reading) error {
	if n := len(w.points); n > 0 && r.Timestamp.Before(w.points[n-1].Timestamp) {
		return &ValidationError{Field: "Timestamp", Reason: "out of order for session"}
	}
	w.points = append(w.points, r)
	w.Prune(r.Timestamp)
	if len(w.points) > w.capacity {
		w.points = w.points[len(w.points)-w.capacity:]
	}
	return nil
}

// #endregion add

// #region prune

// Prune drops readings older than the window span relative to now.
func (w *SessionWindow) Prune(now time.Time) {
	cutoff := now.Add(-w.span)
	i := 0
	for i < len(w.points) && w.points[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		w.points = w.points[i:]
	}
}

// #endregion prune

// #region accessors

// Len returns the number of readings currently held.
func (w *SessionWindow) Len() int {
	return len(w.points)
}

// Recent returns up to n of the most recent readings, oldest first.
func (w *SessionWindow) Recent(n int) []Reading {
	if n <= 0 || len(w.points) == 0 {
		return nil
	}
	if n > len(w.points) {
		n = len(w.points)
	}
	out := make([]Reading, n)
	copy(out, w.points[len(w.points)-n:])
	return out
}

// #endregion accessors
