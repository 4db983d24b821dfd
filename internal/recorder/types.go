// internal/recorder/types.go
package recorder

import (
	"time"

	"github.com/tamzrod/mppt-reader/internal/status"
	"github.com/tamzrod/mppt-reader/internal/telemetry"
)

// Row is one sampled tick, in configured variable order.
type Row struct {
	At     time.Time
	Values []telemetry.Value
	Health status.Snapshot
}

// Sink receives every row. Sinks are called from the sampler goroutine only.
type Sink interface {
	Name() string
	Write(row Row) error
	Close() error
}

// Source is what the recorder samples from.
type Source interface {
	Frame() (telemetry.Frame, error)
	Health() status.Snapshot
}
