// internal/telemetry/views.go
package telemetry

import (
	"errors"

	"github.com/tamzrod/mppt-reader/internal/registers"
)

// ErrZeroSpan is returned when the battery min/max voltages coincide.
var ErrZeroSpan = errors.New("telemetry: battery min and max voltage are equal")

// Views are read-only projections pinned to one snapshot.
// Every value a view returns, scaling included, comes from that snapshot.

// Battery exposes battery quantities.
type Battery struct{ snap *registers.Snapshot }

// Array exposes solar array quantities.
type Array struct{ snap *registers.Snapshot }

// Utilities exposes temperatures, rails, power and status words.
type Utilities struct{ snap *registers.Snapshot }

func NewBattery(s *registers.Snapshot) Battery { return Battery{snap: s} }
func NewArray(s *registers.Snapshot) Array { return Array{snap: s} }
func NewUtilities(s *registers.Snapshot) Utilities { return Utilities{snap: s} }

// ---- shared decode helpers ----

func volts(s *registers.Snapshot, r registers.Register) (float64, error) {
	sc, err := ScalingOf(s)
	if err != nil {
		return 0, err
	}
	w, err := s.Word(r)
	if err != nil {
		return 0, err
	}
	return sc.Volts(w), nil
}

func amps(s *registers.Snapshot, r registers.Register) (float64, error) {
	sc, err := ScalingOf(s)
	if err != nil {
		return 0, err
	}
	w, err := s.Word(r)
	if err != nil {
		return 0, err
	}
	return sc.Amps(w), nil
}

func watts(s *registers.Snapshot, r registers.Register) (float64, error) {
	sc, err := ScalingOf(s)
	if err != nil {
		return 0, err
	}
	w, err := s.Word(r)
	if err != nil {
		return 0, err
	}
	return sc.Watts(w), nil
}

func raw(s *registers.Snapshot, r registers.Register) (float64, error) {
	w, err := s.Word(r)
	if err != nil {
		return 0, err
	}
	return float64(w), nil
}

func celsius(s *registers.Snapshot, r registers.Register) (float64, error) {
	w, err := s.Word(r)
	if err != nil {
		return 0, err
	}
	return Celsius(w), nil
}

// ---- BATTERY ----

func (b Battery) Voltage() (float64, error) { return volts(b.snap, registers.BatteryVolt) }

func (b Battery) TerminalVoltage() (float64, error) {
	return volts(b.snap, registers.BatteryTermVolt)
}

func (b Battery) MinimumVoltage() (float64, error) { return volts(b.snap, registers.MinBatteryVolt) }

func (b Battery) MaximumVoltage() (float64, error) { return volts(b.snap, registers.MaxBatteryVolt) }

func (b Battery) VoltageRegulation() (float64, error) {
	return volts(b.snap, registers.BatteryVoltageRegulation)
}

func (b Battery) Current() (float64, error) { return amps(b.snap, registers.BatteryCurrent) }

// CurrentRegulation uses the fixed 80 A base, not the current scaling.
func (b Battery) CurrentRegulation() (float64, error) {
	w, err := b.snap.Word(registers.BatteryCurrentRegulation)
	if err != nil {
		return 0, err
	}
	return RegulationAmps(w), nil
}

// Remaining is the terminal voltage position between the recorded min and max, as a fraction.
func (b Battery) Remaining() (float64, error) {
	term, err := b.TerminalVoltage()
	if err != nil {
		return 0, err
	}
	lo, err := b.MinimumVoltage()
	if err != nil {
		return 0, err
	}
	hi, err := b.MaximumVoltage()
	if err != nil {
		return 0, err
	}
	if hi == lo {
		return 0, ErrZeroSpan
	}
	return (term - lo) / (hi - lo), nil
}

func (b Battery) TemperatureC() (float64, error) { return celsius(b.snap, registers.BatteryTemp) }

func (b Battery) TemperatureF() (float64, error) {
	c, err := b.TemperatureC()
	if err != nil {
		return 0, err
	}
	return Fahrenheit(c), nil
}

// ---- ARRAY ----

func (a Array) Voltage() (float64, error) { return volts(a.snap, registers.ArrayVolt) }

func (a Array) Current() (float64, error) { return amps(a.snap, registers.ArrayCurrent) }

func (a Array) VoltageTarget() (float64, error) {
	return volts(a.snap, registers.ArrayVoltageTarget)
}

// VoltageTargetPercent is a direct percentage, independent of voltage scaling.
func (a Array) VoltageTargetPercent() (float64, error) {
	w, err := a.snap.Word(registers.ArrayVoltageTargetPercentage)
	if err != nil {
		return 0, err
	}
	return Percent(w), nil
}

// ---- UTILITIES ----

func (u Utilities) HeatsinkTemp() (float64, error) { return celsius(u.snap, registers.HeatSinkTemp) }

func (u Utilities) RTSTemp() (float64, error) { return celsius(u.snap, registers.RTSTemp) }

// VoltSupply12 is the raw 12 V rail word.
func (u Utilities) VoltSupply12() (float64, error) { return raw(u.snap, registers.VoltSupply12) }

// VoltSupply3 is the raw 3 V rail word.
func (u Utilities) VoltSupply3() (float64, error) { return raw(u.snap, registers.VoltSupply3) }

func (u Utilities) PowerIn() (float64, error) { return watts(u.snap, registers.InputPower) }

func (u Utilities) PowerOut() (float64, error) { return watts(u.snap, registers.OutputPower) }

// Hourmeter is the controller's total run time in hours.
func (u Utilities) Hourmeter() (uint32, error) {
	w, err := u.snap.Words(registers.HourmeterHI, registers.HourmeterLO)
	if err != nil {
		return 0, err
	}
	return uint32(w[0])<<16 | uint32(w[1]), nil
}

func (u Utilities) LEDState() (string, error) {
	w, err := u.snap.Word(registers.LEDState)
	if err != nil {
		return "", err
	}
	return registers.Lookup("led state", w, registers.LEDStates)
}

func (u Utilities) ChargeState() (string, error) {
	w, err := u.snap.Word(registers.ChargeState)
	if err != nil {
		return "", err
	}
	return registers.Lookup("charge state", w, registers.ChargeStates)
}

func (u Utilities) Faults() ([]string, error) { return registers.DecodeFaults(u.snap) }
func (u Utilities) Alarms() ([]string, error) { return registers.DecodeAlarms(u.snap) }
func (u Utilities) Dipswitches() ([]string, error) { return registers.DecodeDipswitches(u.snap) }
