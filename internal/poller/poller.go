// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/mppt-reader/internal/registers"
	"github.com/tamzrod/mppt-reader/internal/status"
	"github.com/tamzrod/mppt-reader/internal/telemetry"
)

var log = logrus.WithField("component", "poller")

// Client abstracts the transport read the poller needs.
type Client interface {
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
}

// Overrides is the echo step run after every published snapshot.
type Overrides interface {
	Seed(sc telemetry.Scaling) error
	Update() error
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Block            ReadBlock
	Interval         time.Duration
	FailureThreshold int

	// Bounded in-tick retry of a failed read. Hardening only: 1 attempt
	// means no retry, which is the plain fixed-interval behaviour.
	RetryAttempts uint
	RetryDelay    time.Duration
}

// Poller is the clock-driven reader of the register block.
// It is the only writer of the published snapshot.
type Poller struct {
	cfg       Config
	client    Client
	overrides Overrides
	health    *status.Tracker

	snap   atomic.Pointer[registers.Snapshot]
	state  atomic.Int32
	seeded bool // touched only by the polling goroutine
}

// New creates a poller with immutable config.
// An interval at or above registers.MaxSilence is refused here, before any
// task can start.
func New(cfg Config, client Client, overrides Overrides) (*Poller, error) {
	if client == nil {
		return nil, errors.New("poller: client required")
	}
	if err := registers.CheckInterval("poller: poll", cfg.Interval); err != nil {
		return nil, err
	}
	if cfg.Block.Address != registers.BlockStart || cfg.Block.Quantity < registers.BlockSize {
		return nil, fmt.Errorf("poller: block %d+%d does not cover the register map (%d+%d)",
			cfg.Block.Address, cfg.Block.Quantity, registers.BlockStart, registers.BlockSize)
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 1
	}

	return &Poller{
		cfg:       cfg,
		client:    client,
		overrides: overrides,
		health:    status.NewTracker(cfg.FailureThreshold),
	}, nil
}

// PollOnce performs exactly one poll cycle:
// read, publish, echo overrides. A failed read publishes nothing.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	res := PollResult{At: time.Now()}

	words, err := p.read(ctx)
	if err != nil {
		res.Err = fmt.Errorf("poller: read: %w", err)
		if p.health.ReadFailed(res.Err, res.At) {
			h := p.health.Snapshot()
			log.WithError(res.Err).
				WithField("health", status.HealthName(h.Health)).
				WithField("consecutive", h.ConsecutiveFailures).
				Warn("device not answering, serving previous snapshot")
		} else {
			log.WithError(res.Err).Debug("read failed")
		}
		return res
	}

	snap := registers.NewSnapshot(words, res.At)
	p.snap.Store(snap)
	res.Snapshot = snap

	if p.health.ReadOK(res.At) {
		log.Info("device answering")
	}

	if p.overrides != nil && !p.seeded {
		p.seeded = p.seed(snap)
	}

	if p.State() == StateIdle {
		p.state.Store(int32(StateRunning))
		log.WithField("registers", snap.Len()).Info("first snapshot published")
	}

	if p.overrides == nil {
		return res
	}

	if err := p.overrides.Update(); err != nil {
		res.WriteErr = err
		p.health.WriteFailed(err)
		log.WithError(err).Warn("override echo failed")
	}

	return res
}

func (p *Poller) seed(snap *registers.Snapshot) bool {
	sc, err := telemetry.ScalingOf(snap)
	if err != nil {
		log.WithError(err).Error("cannot seed overrides")
		return false
	}
	if err := p.overrides.Seed(sc); err != nil {
		log.WithError(err).Error("cannot seed overrides")
		return false
	}
	return true
}

func (p *Poller) read(ctx context.Context) ([]uint16, error) {
	var words []uint16
	addr, qty := p.cfg.Block.Address, p.cfg.Block.Quantity

	err := retry.Do(
		func() error {
			w, err := p.client.ReadHoldingRegisters(addr, qty)
			if err != nil {
				return err
			}
			if len(w) < int(qty) {
				return fmt.Errorf("short read: got %d registers want %d", len(w), qty)
			}
			words = w
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(p.cfg.RetryAttempts),
		retry.Delay(p.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	return words, err
}

// Snapshot returns the last published block.
func (p *Poller) Snapshot() (*registers.Snapshot, error) {
	s := p.snap.Load()
	if s == nil {
		return nil, registers.ErrNoSnapshot
	}
	return s, nil
}

// Scaling returns the scaling of the last published block.
func (p *Poller) Scaling() (telemetry.Scaling, error) {
	s, err := p.Snapshot()
	if err != nil {
		return telemetry.Scaling{}, err
	}
	return telemetry.ScalingOf(s)
}

func (p *Poller) State() State { return State(p.state.Load()) }

func (p *Poller) Health() status.Snapshot { return p.health.Snapshot() }
