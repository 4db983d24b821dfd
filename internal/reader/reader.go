// internal/reader/reader.go
package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	cfg "github.com/tamzrod/mppt-reader/internal/config"
	"github.com/tamzrod/mppt-reader/internal/override"
	"github.com/tamzrod/mppt-reader/internal/poller"
	"github.com/tamzrod/mppt-reader/internal/registers"
	"github.com/tamzrod/mppt-reader/internal/status"
	"github.com/tamzrod/mppt-reader/internal/telemetry"
	"github.com/tamzrod/mppt-reader/internal/watchdog"
)

var log = logrus.WithField("component", "reader")

// Transport is the device connection shared by polling and overrides.
type Transport interface {
	poller.Client
	override.Writer
	Close() error
}

// Config is the runtime config of one reader.
type Config struct {
	Poll     poller.Config
	Watchdog watchdog.Config
}

// Reader owns one device: its transport, poller, watchdog and setpoints.
type Reader struct {
	transport Transport
	poller    *poller.Poller
	watchdog  *watchdog.Watchdog
	overrides *override.Set

	closeOnce sync.Once
	closeErr  error
}

// New validates config and wires the components. Nothing runs until Run.
func New(c Config, t Transport) (*Reader, error) {
	if t == nil {
		return nil, errors.New("reader: transport required")
	}

	r := &Reader{transport: t}

	// slots read scaling from whatever the poller published last
	r.overrides = override.NewSet(t, override.ScalingFunc(func() (telemetry.Scaling, error) {
		return r.poller.Scaling()
	}))

	p, err := poller.New(c.Poll, t, r.overrides)
	if err != nil {
		return nil, err
	}
	r.poller = p

	w, err := watchdog.New(c.Watchdog, p)
	if err != nil {
		return nil, err
	}
	r.watchdog = w

	return r, nil
}

// Build dials the configured device and creates its reader.
func Build(rc cfg.ReaderConfig) (*Reader, error) {
	c := Config{
		Poll:     poller.BuildConfig(rc),
		Watchdog: watchdog.Config{Interval: time.Duration(rc.Watchdog.IntervalMs) * time.Millisecond},
	}

	t, err := poller.Dial(rc.Device)
	if err != nil {
		return nil, err
	}

	r, err := New(c, t)
	if err != nil {
		_ = t.Close()
		return nil, err
	}
	return r, nil
}

// Run polls and watches until ctx is done. On the way out every locked
// setpoint is released and the transport is closed.
func (r *Reader) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.poller.Run(gctx)
		return nil
	})
	g.Go(func() error {
		r.watchdog.Run(gctx)
		return nil
	})

	runErr := g.Wait()

	relErr := r.overrides.ReleaseAll()
	if relErr != nil {
		log.WithError(relErr).Error("release setpoints")
	}

	return errors.Join(runErr, relErr, r.Close())
}

// Close releases the transport. Idempotent.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.transport.Close()
	})
	return r.closeErr
}

// WaitReady blocks until the first snapshot is published.
func (r *Reader) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for r.poller.State() != poller.StateRunning {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// ---- telemetry ----

func (r *Reader) Snapshot() (*registers.Snapshot, error) { return r.poller.Snapshot() }

// Battery pins a battery view to the current snapshot.
func (r *Reader) Battery() (telemetry.Battery, error) {
	s, err := r.poller.Snapshot()
	if err != nil {
		return telemetry.Battery{}, err
	}
	return telemetry.NewBattery(s), nil
}

// Array pins an array view to the current snapshot.
func (r *Reader) Array() (telemetry.Array, error) {
	s, err := r.poller.Snapshot()
	if err != nil {
		return telemetry.Array{}, err
	}
	return telemetry.NewArray(s), nil
}

// Utilities pins a utilities view to the current snapshot.
func (r *Reader) Utilities() (telemetry.Utilities, error) {
	s, err := r.poller.Snapshot()
	if err != nil {
		return telemetry.Utilities{}, err
	}
	return telemetry.NewUtilities(s), nil
}

func (r *Reader) Faults() ([]string, error) { return r.watchdog.Faults() }
func (r *Reader) Alarms() ([]string, error) { return r.watchdog.Alarms() }
func (r *Reader) Dipswitches() ([]string, error) { return r.watchdog.Dipswitches() }

// Watchdog returns the last watchdog tick.
func (r *Reader) Watchdog() (*watchdog.State, error) { return r.watchdog.State() }

// Frame gathers one consistent sample: one snapshot plus the latest
// watchdog decode.
func (r *Reader) Frame() (telemetry.Frame, error) {
	s, err := r.poller.Snapshot()
	if err != nil {
		return telemetry.Frame{}, err
	}

	f := telemetry.Frame{At: time.Now(), Snapshot: s}
	if st, err := r.watchdog.State(); err == nil {
		f.Faults, f.Alarms, f.Dipswitches = st.Faults, st.Alarms, st.Dipswitches
	}
	return f, nil
}

func (r *Reader) Health() status.Snapshot { return r.poller.Health() }

func (r *Reader) State() poller.State { return r.poller.State() }

// ---- setpoints ----

func (r *Reader) Overrides() *override.Set { return r.overrides }

// Hold sets a setpoint and locks it so every poll echoes it.
func (r *Reader) Hold(name string, value float64) error {
	sl, err := r.overrides.Slot(name)
	if err != nil {
		return err
	}
	if err := sl.SetValue(value); err != nil {
		return err
	}
	sl.Lock()
	log.WithField("setpoint", name).WithField("value", value).Info("holding")
	return nil
}

// Release unlocks a setpoint and restores native regulation.
func (r *Reader) Release(name string) error {
	sl, err := r.overrides.Slot(name)
	if err != nil {
		return err
	}
	if err := sl.Unlock(); err != nil {
		return fmt.Errorf("reader: release %s: %w", name, err)
	}
	log.WithField("setpoint", name).Info("released")
	return nil
}
