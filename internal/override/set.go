// internal/override/set.go
package override

import (
	"errors"
	"fmt"

	"github.com/tamzrod/mppt-reader/internal/registers"
	"github.com/tamzrod/mppt-reader/internal/telemetry"
)

// Controllable setpoint names.
const (
	BatteryCurrentRegulation = "battery_current_regulation"
	BatteryVoltageRegulation = "battery_voltage_regulation"
	ArrayVoltageTarget       = "array_voltage_target"
)

// ErrUnknownSlot is returned for a name outside the controllable set.
var ErrUnknownSlot = errors.New("override: unknown slot")

// Names lists the controllable setpoints in echo order.
func Names() []string {
	return []string{BatteryCurrentRegulation, BatteryVoltageRegulation, ArrayVoltageTarget}
}

// Set is the fixed group of controllable setpoints of one reader.
type Set struct {
	slots  []*Slot
	byName map[string]*Slot
}

// NewSet builds the device's controllable setpoints.
func NewSet(w Writer, sp ScalingProvider) *Set {
	return NewSetOf(
		NewSlot(BatteryCurrentRegulation, registers.BatteryCurrentRegulation,
			Linear(telemetry.CurrentRegulationBase, 0, SourceNone), w, sp),
		NewSlot(BatteryVoltageRegulation, registers.BatteryVoltageRegulation,
			Linear(1, 0, SourceVoltage), w, sp),
		NewSlot(ArrayVoltageTarget, registers.ArrayVoltageTarget,
			Linear(1, 0, SourceVoltage), w, sp),
	)
}

// NewSetOf groups arbitrary slots, in order.
func NewSetOf(slots ...*Slot) *Set {
	s := &Set{byName: make(map[string]*Slot, len(slots))}
	for _, sl := range slots {
		s.slots = append(s.slots, sl)
		s.byName[sl.Name()] = sl
	}
	return s
}

// Slot looks up a setpoint by name.
func (s *Set) Slot(name string) (*Slot, error) {
	sl, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, name)
	}
	return sl, nil
}

// Slots returns the setpoints in echo order.
func (s *Set) Slots() []*Slot {
	out := make([]*Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

func (s *Set) BatteryCurrentRegulation() *Slot { return s.byName[BatteryCurrentRegulation] }
func (s *Set) BatteryVoltageRegulation() *Slot { return s.byName[BatteryVoltageRegulation] }
func (s *Set) ArrayVoltageTarget() *Slot { return s.byName[ArrayVoltageTarget] }

// Seed seeds every slot from the first snapshot's scaling.
func (s *Set) Seed(sc telemetry.Scaling) error {
	var errs []error
	for _, sl := range s.slots {
		if err := sl.Seed(sc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Update echoes every locked slot. A failing slot does not stop the others.
func (s *Set) Update() error {
	var errs []error
	for _, sl := range s.slots {
		if err := sl.Update(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReleaseAll unlocks every locked slot, writing each at-rest value once.
func (s *Set) ReleaseAll() error {
	var errs []error
	for _, sl := range s.slots {
		if !sl.State().Locked {
			continue
		}
		if err := sl.Unlock(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// States copies every slot's state, in echo order.
func (s *Set) States() []State {
	out := make([]State, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.State()
	}
	return out
}
