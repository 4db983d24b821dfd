// internal/override/slot.go
package override

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tamzrod/mppt-reader/internal/registers"
	"github.com/tamzrod/mppt-reader/internal/telemetry"
)

// ErrNotSeeded is returned by Unlock before the first snapshot seeded the slot.
var ErrNotSeeded = errors.New("override: slot not seeded by a snapshot yet")

// Sentinel is the user value whose conversion is the at-rest raw value.
const Sentinel = -1.0

// Writer is the single-register write the slot needs from the transport.
type Writer interface {
	WriteRegister(addr, value uint16) error
}

// ScalingProvider yields the scaling of the current snapshot.
type ScalingProvider interface {
	Scaling() (telemetry.Scaling, error)
}

// ScalingFunc adapts a function to ScalingProvider.
type ScalingFunc func() (telemetry.Scaling, error)

func (f ScalingFunc) Scaling() (telemetry.Scaling, error) { return f() }

// Slot is one controllable setpoint.
//
// Locked slots are echoed by the poller every cycle. Unlocking writes the
// at-rest value once and returns the setpoint to native regulation.
// The mutex is held across transport writes so an Unlock never interleaves
// with an in-flight echo.
type Slot struct {
	name     string
	register registers.Register
	conv     Conversion
	w        Writer
	scaling  ScalingProvider

	mu      sync.Mutex
	held    uint16
	heldSet bool
	atRest  uint16
	seeded  bool
	locked  bool
}

// State is a point-in-time copy of a slot.
type State struct {
	Name     string
	Register registers.Register
	Locked   bool
	Seeded   bool
	Held     uint16
	AtRest   uint16
}

// NewSlot creates a slot for the setpoint read at reg.
func NewSlot(name string, reg registers.Register, conv Conversion, w Writer, sp ScalingProvider) *Slot {
	return &Slot{
		name:     name,
		register: reg,
		conv:     conv,
		w:        w,
		scaling:  sp,
	}
}

func (s *Slot) Name() string { return s.name }

// WriteAddress is the register the slot writes to.
func (s *Slot) WriteAddress() uint16 {
	return uint16(s.register) + registers.WriteOffset
}

// Seed computes the at-rest value from the sentinel once. Later calls are no-ops.
// If no value was set yet, the held value starts at rest too.
func (s *Slot) Seed(sc telemetry.Scaling) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeded {
		return nil
	}

	raw, err := s.conv.Raw(Sentinel, sc)
	if err != nil {
		return fmt.Errorf("override %s: seed: %w", s.name, err)
	}

	s.atRest = raw
	if !s.heldSet {
		s.held = raw
		s.heldSet = true
	}
	s.seeded = true
	return nil
}

// SetValue stores the converted value. It never writes to the device.
func (s *Slot) SetValue(user float64) error {
	var sc telemetry.Scaling
	if s.conv.NeedsScaling() {
		if s.scaling == nil {
			return fmt.Errorf("override %s: %w", s.name, registers.ErrNoSnapshot)
		}
		var err error
		if sc, err = s.scaling.Scaling(); err != nil {
			return fmt.Errorf("override %s: %w", s.name, err)
		}
	}

	raw, err := s.conv.Raw(user, sc)
	if err != nil {
		return fmt.Errorf("override %s: %w", s.name, err)
	}

	s.mu.Lock()
	s.held = raw
	s.heldSet = true
	s.mu.Unlock()
	return nil
}

// Lock enables echo on every following poll. Idempotent.
func (s *Slot) Lock() {
	s.mu.Lock()
	s.locked = true
	s.mu.Unlock()
}

// Update writes the held value when locked. Unlocked slots never write.
func (s *Slot) Update() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.locked || !s.heldSet {
		return nil
	}
	if err := s.w.WriteRegister(s.WriteAddress(), s.held); err != nil {
		return fmt.Errorf("override %s: write %d: %w", s.name, s.WriteAddress(), err)
	}
	return nil
}

// Unlock stops echo and writes the at-rest value exactly once.
func (s *Slot) Unlock() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locked = false
	if !s.seeded {
		return fmt.Errorf("override %s: %w", s.name, ErrNotSeeded)
	}
	if err := s.w.WriteRegister(s.WriteAddress(), s.atRest); err != nil {
		return fmt.Errorf("override %s: release write %d: %w", s.name, s.WriteAddress(), err)
	}
	return nil
}

// State copies the slot fields.
func (s *Slot) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Name:     s.name,
		Register: s.register,
		Locked:   s.locked,
		Seeded:   s.seeded,
		Held:     s.held,
		AtRest:   s.atRest,
	}
}
