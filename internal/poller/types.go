// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/mppt-reader/internal/registers"
)

// ReadBlock describes the one holding-register read of a cycle.
// Geometry only: no semantics.
type ReadBlock struct {
	Address  uint16
	Quantity uint16
}

// State is the poll cycle state.
type State int32

const (
	// StateIdle is before the first successful block read.
	StateIdle State = iota
	// StateRunning is steady-state polling.
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// PollResult is the outcome of one poll cycle.
type PollResult struct {
	At time.Time

	// Snapshot is the newly published block; nil when the read failed.
	Snapshot *registers.Snapshot

	Err      error // non-nil means the read failed and the previous snapshot stands
	WriteErr error // override echo failures, reported but never fatal
}
