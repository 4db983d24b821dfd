// internal/status/snapshot.go
package status

import "time"

// Snapshot is a point-in-time copy of the reader's transport health.
// It contains no logic.
type Snapshot struct {
	Health              uint16
	ConsecutiveFailures int
	ReadFailures        uint64
	WriteFailures       uint64
	LastError           string
	LastSuccess         time.Time
	// ErrorSince is the time of the first failure of the current streak.
	ErrorSince time.Time
}

// Persistent reports whether the current failure streak reached the threshold.
func (s Snapshot) Persistent() bool {
	return s.Health == HealthError
}
