// internal/telemetry/variables.go
package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tamzrod/mppt-reader/internal/registers"
)

// Frame is everything a sampler may read during one tick.
// Views share one snapshot; bit-field lists come from the watchdog.
type Frame struct {
	At          time.Time
	Snapshot    *registers.Snapshot
	Faults      []string
	Alarms      []string
	Dipswitches []string
}

func (f Frame) Battery() Battery { return NewBattery(f.Snapshot) }
func (f Frame) Array() Array { return NewArray(f.Snapshot) }
func (f Frame) Utilities() Utilities { return NewUtilities(f.Snapshot) }

// Variable is a named, pre-resolved quantity.
type Variable struct {
	Name   string
	sample func(Frame) (any, error)
}

// Sample reads the variable from a frame.
func (v Variable) Sample(f Frame) (any, error) {
	return v.sample(f)
}

// Value is one sampled variable.
type Value struct {
	Name  string
	Value any
	Err   error
}

func f64(fn func(Frame) (float64, error)) func(Frame) (any, error) {
	return func(f Frame) (any, error) { return fn(f) }
}

func str(fn func(Frame) (string, error)) func(Frame) (any, error) {
	return func(f Frame) (any, error) { return fn(f) }
}

func list(fn func(Frame) []string) func(Frame) (any, error) {
	return func(f Frame) (any, error) { return fn(f), nil }
}

var variables = map[string]func(Frame) (any, error){
	"battery.voltage":            f64(func(f Frame) (float64, error) { return f.Battery().Voltage() }),
	"battery.terminal_voltage":   f64(func(f Frame) (float64, error) { return f.Battery().TerminalVoltage() }),
	"battery.current":            f64(func(f Frame) (float64, error) { return f.Battery().Current() }),
	"battery.minimum_voltage":    f64(func(f Frame) (float64, error) { return f.Battery().MinimumVoltage() }),
	"battery.maximum_voltage":    f64(func(f Frame) (float64, error) { return f.Battery().MaximumVoltage() }),
	"battery.voltage_regulation": f64(func(f Frame) (float64, error) { return f.Battery().VoltageRegulation() }),
	"battery.current_regulation": f64(func(f Frame) (float64, error) { return f.Battery().CurrentRegulation() }),
	"battery.remaining":          f64(func(f Frame) (float64, error) { return f.Battery().Remaining() }),
	"battery.temperature_c":      f64(func(f Frame) (float64, error) { return f.Battery().TemperatureC() }),
	"battery.temperature_f":      f64(func(f Frame) (float64, error) { return f.Battery().TemperatureF() }),

	"array.voltage":                f64(func(f Frame) (float64, error) { return f.Array().Voltage() }),
	"array.current":                f64(func(f Frame) (float64, error) { return f.Array().Current() }),
	"array.voltage_target":         f64(func(f Frame) (float64, error) { return f.Array().VoltageTarget() }),
	"array.voltage_target_percent": f64(func(f Frame) (float64, error) { return f.Array().VoltageTargetPercent() }),

	"utils.heatsink_temp": f64(func(f Frame) (float64, error) { return f.Utilities().HeatsinkTemp() }),
	"utils.rts_temp":      f64(func(f Frame) (float64, error) { return f.Utilities().RTSTemp() }),
	"utils.voltsupply12":  f64(func(f Frame) (float64, error) { return f.Utilities().VoltSupply12() }),
	"utils.voltsupply3":   f64(func(f Frame) (float64, error) { return f.Utilities().VoltSupply3() }),
	"utils.power_in":      f64(func(f Frame) (float64, error) { return f.Utilities().PowerIn() }),
	"utils.power_out":     f64(func(f Frame) (float64, error) { return f.Utilities().PowerOut() }),
	"utils.led_state":     str(func(f Frame) (string, error) { return f.Utilities().LEDState() }),
	"utils.charge_state":  str(func(f Frame) (string, error) { return f.Utilities().ChargeState() }),

	"scaling.voltage": f64(func(f Frame) (float64, error) { return VoltageScaling(f.Snapshot) }),
	"scaling.current": f64(func(f Frame) (float64, error) { return CurrentScaling(f.Snapshot) }),

	"watchdog.faults":      list(func(f Frame) []string { return f.Faults }),
	"watchdog.alarms":      list(func(f Frame) []string { return f.Alarms }),
	"watchdog.dipswitches": list(func(f Frame) []string { return f.Dipswitches }),
}

// Names lists every sampleable variable, sorted.
func Names() []string {
	out := make([]string, 0, len(variables))
	for name := range variables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve maps names to variables. Unknown names fail here, at configuration
// time, never at sample time.
func Resolve(names []string) ([]Variable, error) {
	out := make([]Variable, 0, len(names))
	var unknown []string

	for _, name := range names {
		fn, ok := variables[name]
		if !ok {
			unknown = append(unknown, fmt.Sprintf("%q", name))
			continue
		}
		out = append(out, Variable{Name: name, sample: fn})
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("telemetry: unknown variables %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

// Sample reads every variable from one frame. Per-variable errors are kept
// on the value so one bad quantity does not hide the rest.
func Sample(f Frame, vars []Variable) []Value {
	out := make([]Value, len(vars))
	for i, v := range vars {
		val, err := v.Sample(f)
		out[i] = Value{Name: v.Name, Value: val, Err: err}
	}
	return out
}
