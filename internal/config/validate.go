// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/mppt-reader/internal/override"
	"github.com/tamzrod/mppt-reader/internal/registers"
	"github.com/tamzrod/mppt-reader/internal/telemetry"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values are accepted where Normalize supplies a default.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if cfg.LogLevel != "" {
		if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
			add("log_level: %v", err)
		}
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	d := cfg.Reader.Device
	switch {
	case d.Port == "" && d.Endpoint == "":
		add("reader.device: one of port or endpoint is required")
	case d.Port != "" && d.Endpoint != "":
		add("reader.device: port and endpoint are exclusive")
	}
	if d.BaudRate < 0 {
		add("reader.device.baud_rate must be >= 0")
	}
	if d.TimeoutMs < 0 {
		add("reader.device.timeout_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// TIMING (device watchdog ceiling)
	// ------------------------------------------------------------

	checkMs := func(name string, ms int) {
		if ms == 0 {
			return
		}
		if err := registers.CheckInterval(name, time.Duration(ms)*time.Millisecond); err != nil {
			add("%v", err)
		}
	}
	checkMs("reader.poll", cfg.Reader.Poll.IntervalMs)
	checkMs("reader.watchdog", cfg.Reader.Watchdog.IntervalMs)

	if cfg.Reader.Poll.FailureThreshold < 0 {
		add("reader.poll.failure_threshold must be >= 0")
	}
	if cfg.Reader.Poll.RetryDelayMs < 0 {
		add("reader.poll.retry_delay_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// OVERRIDES
	// ------------------------------------------------------------

	known := make(map[string]bool)
	for _, n := range override.Names() {
		known[n] = true
	}
	seen := make(map[string]bool)
	for i, o := range cfg.Reader.Overrides {
		if !known[o.Name] {
			add("reader.overrides[%d]: unknown setpoint %q (known: %s)", i, o.Name, strings.Join(override.Names(), ", "))
			continue
		}
		if seen[o.Name] {
			add("reader.overrides[%d]: duplicate setpoint %q", i, o.Name)
		}
		seen[o.Name] = true
	}

	// ------------------------------------------------------------
	// RECORDER
	// ------------------------------------------------------------

	r := cfg.Recorder
	if r.IntervalMs < 0 {
		add("recorder.interval_ms must be >= 0")
	}
	if r.Enabled() && len(r.Variables) == 0 {
		add("recorder.variables: at least one variable is required when a sink is enabled")
	}
	if _, err := telemetry.Resolve(r.Variables); err != nil {
		add("recorder.variables: %v", err)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}
