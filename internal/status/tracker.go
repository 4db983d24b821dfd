// internal/status/tracker.go
package status

import (
	"sync"
	"time"
)

// Tracker folds poll outcomes into a health Snapshot.
// Safe for concurrent use: the poller writes, anyone reads.
type Tracker struct {
	mu        sync.Mutex
	threshold int
	snap      Snapshot
}

// NewTracker creates a tracker. A threshold <= 0 uses DefaultFailureThreshold.
func NewTracker(threshold int) *Tracker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	return &Tracker{
		threshold: threshold,
		snap:      Snapshot{Health: HealthUnknown},
	}
}

// ReadOK records a successful poll. It reports whether health changed.
func (t *Tracker) ReadOK(at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	changed := t.snap.Health != HealthOK

	// Recovery resets the streak, not the totals.
	t.snap.Health = HealthOK
	t.snap.ConsecutiveFailures = 0
	t.snap.ErrorSince = time.Time{}
	t.snap.LastSuccess = at

	return changed
}

// ReadFailed records a failed poll. It reports whether health changed.
func (t *Tracker) ReadFailed(err error, at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.snap.Health

	t.snap.ReadFailures++
	t.snap.ConsecutiveFailures++
	if t.snap.ConsecutiveFailures == 1 {
		t.snap.ErrorSince = at
	}
	if err != nil {
		t.snap.LastError = err.Error()
	}

	if t.snap.ConsecutiveFailures >= t.threshold {
		t.snap.Health = HealthError
	} else {
		t.snap.Health = HealthStale
	}

	return prev != t.snap.Health
}

// WriteFailed records a failed override write. Writes do not affect health.
func (t *Tracker) WriteFailed(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.WriteFailures++
	if err != nil {
		t.snap.LastError = err.Error()
	}
}

// Snapshot copies the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}
