// internal/recorder/recorder.go
package recorder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/mppt-reader/internal/registers"
	"github.com/tamzrod/mppt-reader/internal/status"
	"github.com/tamzrod/mppt-reader/internal/telemetry"
)

var log = logrus.WithField("component", "recorder")

// Config is the minimal runtime config the recorder needs.
type Config struct {
	Interval  time.Duration
	Variables []string
}

// Recorder samples the configured variables on a clock and fans every row
// out to its sinks.
type Recorder struct {
	interval time.Duration
	vars     []telemetry.Variable
	src      Source
	sinks    []Sink
}

// New resolves the variables once. Unknown names fail here, never at sample time.
func New(cfg Config, src Source, sinks []Sink) (*Recorder, error) {
	if src == nil {
		return nil, errors.New("recorder: source required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("recorder: interval must be > 0")
	}
	vars, err := telemetry.Resolve(cfg.Variables)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		interval: cfg.Interval,
		vars:     vars,
		src:      src,
		sinks:    sinks,
	}, nil
}

// Variables returns the resolved variable names in column order.
func (r *Recorder) Variables() []string {
	out := make([]string, len(r.vars))
	for i, v := range r.vars {
		out[i] = v.Name
	}
	return out
}

// Record samples one frame and writes it to every sink.
// A failing sink does not stop the others. Before the first snapshot
// nothing is written.
func (r *Recorder) Record() error {
	f, err := r.src.Frame()
	if err != nil {
		if errors.Is(err, registers.ErrNoSnapshot) {
			return nil
		}
		return err
	}

	row := Row{
		At:     f.At,
		Values: telemetry.Sample(f, r.vars),
		Health: r.src.Health(),
	}

	var errs []string
	for _, s := range r.sinks {
		if err := s.Write(row); err != nil {
			errs = append(errs, fmt.Sprintf("recorder: sink=%s err=%v", s.Name(), err))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// Run records on every tick until ctx is done.
func (r *Recorder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Record(); err != nil {
				log.WithError(err).Warn("record")
			}
		}
	}
}

func healthName(row Row) string {
	return status.HealthName(row.Health.Health)
}
