// internal/watchdog/watchdog.go
package watchdog

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/mppt-reader/internal/registers"
)

var log = logrus.WithField("component", "watchdog")

// Source yields the current published snapshot.
type Source interface {
	Snapshot() (*registers.Snapshot, error)
}

// Config is the minimal runtime config the watchdog needs.
type Config struct {
	Interval time.Duration
}

// State is the decoded status of one tick. Replaced wholesale.
type State struct {
	At          time.Time
	SnapshotAt  time.Time
	Faults      []string
	Alarms      []string
	Dipswitches []string

	// Err carries decode problems of the tick. A *registers.BitRangeError
	// still comes with the names that did resolve.
	Err error
}

// Watchdog decodes the status bit-fields on its own clock.
// It never talks to the device; it only reads the poller's snapshot.
type Watchdog struct {
	cfg   Config
	src   Source
	state atomic.Pointer[State]
}

// New creates a watchdog. The interval obeys the same ceiling as polling.
func New(cfg Config, src Source) (*Watchdog, error) {
	if src == nil {
		return nil, errors.New("watchdog: source required")
	}
	if err := registers.CheckInterval("watchdog", cfg.Interval); err != nil {
		return nil, err
	}
	return &Watchdog{cfg: cfg, src: src}, nil
}

// Tick decodes the current snapshot and publishes the result.
// Without a snapshot nothing is published.
func (w *Watchdog) Tick() (*State, error) {
	snap, err := w.src.Snapshot()
	if err != nil {
		return nil, err
	}

	st := &State{At: time.Now(), SnapshotAt: snap.At()}

	var errs []error
	var ferr, aerr, derr error
	st.Faults, ferr = registers.DecodeFaults(snap)
	st.Alarms, aerr = registers.DecodeAlarms(snap)
	st.Dipswitches, derr = registers.DecodeDipswitches(snap)
	for _, e := range []error{ferr, aerr, derr} {
		if e != nil {
			errs = append(errs, e)
		}
	}
	st.Err = errors.Join(errs...)

	if st.Err != nil {
		log.WithError(st.Err).Warn("status decode")
	}
	if prev := w.state.Load(); prev == nil || !equal(prev.Faults, st.Faults) || !equal(prev.Alarms, st.Alarms) {
		if len(st.Faults) > 0 || len(st.Alarms) > 0 {
			log.WithField("faults", st.Faults).WithField("alarms", st.Alarms).Warn("device status")
		} else if prev != nil {
			log.Info("device status clear")
		}
	}

	w.state.Store(st)
	return st, nil
}

// State returns the last published tick.
func (w *Watchdog) State() (*State, error) {
	st := w.state.Load()
	if st == nil {
		return nil, registers.ErrNoSnapshot
	}
	return st, nil
}

func (w *Watchdog) Faults() ([]string, error) {
	st, err := w.State()
	if err != nil {
		return nil, err
	}
	return st.Faults, nil
}

func (w *Watchdog) Alarms() ([]string, error) {
	st, err := w.State()
	if err != nil {
		return nil, err
	}
	return st.Alarms, nil
}

func (w *Watchdog) Dipswitches() ([]string, error) {
	st, err := w.State()
	if err != nil {
		return nil, err
	}
	return st.Dipswitches, nil
}

// Run ticks until ctx is done. The first tick is immediate.
func (w *Watchdog) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.Tick(); err != nil && !errors.Is(err, registers.ErrNoSnapshot) {
			log.WithError(err).Warn("tick")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
