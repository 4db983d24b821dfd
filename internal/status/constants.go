// internal/status/constants.go
package status

// Reader health codes.
// These values are reported verbatim to sinks and MUST NOT be configurable.

// HealthUnknown represents the boot state, before the first poll completes.
const HealthUnknown uint16 = 0

// HealthOK represents a device answering every poll.
const HealthOK uint16 = 1

// HealthError represents a persistent failure: consecutive failed polls
// reached the configured threshold.
const HealthError uint16 = 2

// HealthStale represents a transient failure: the last poll failed and
// readers are served the previous snapshot.
const HealthStale uint16 = 3

// ---- LIMITS ----

// DefaultFailureThreshold is the consecutive failure count that turns
// Stale into Error when none is configured.
const DefaultFailureThreshold = 5

// HealthName renders a health code for logs and sinks.
func HealthName(h uint16) string {
	switch h {
	case HealthOK:
		return "ok"
	case HealthError:
		return "error"
	case HealthStale:
		return "stale"
	default:
		return "unknown"
	}
}
