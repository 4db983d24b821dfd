// internal/telemetry/scaling.go
package telemetry

import (
	"math"

	"github.com/tamzrod/mppt-reader/internal/registers"
)

// Fixed-point constants of the device.
var (
	// ScalingConstant converts a scaled raw word into physical units (2^-15).
	ScalingConstant = math.Ldexp(1, -15)
	// PowerConstant converts raw power, which folds in both scalings (2^-17).
	PowerConstant = math.Ldexp(1, -17)
	// PercentConstant converts a raw percentage word (2^-16).
	PercentConstant = math.Ldexp(1, -16)
)

// CurrentRegulationBase is the fixed amp base of the current regulation setpoint.
const CurrentRegulationBase = 80.0

// Scaling holds the device-reported voltage and current multipliers.
type Scaling struct {
	Voltage float64
	Current float64
}

// ScalingOf derives both multipliers from one snapshot.
func ScalingOf(s *registers.Snapshot) (Scaling, error) {
	w, err := s.Words(
		registers.VoltScalingHi, registers.VoltScalingLo,
		registers.CurrScalingHi, registers.CurrScalingLo,
	)
	if err != nil {
		return Scaling{}, err
	}
	return Scaling{
		Voltage: pair(w[0], w[1]),
		Current: pair(w[2], w[3]),
	}, nil
}

// VoltageScaling is hi + lo/65536 of the voltage scaling pair.
func VoltageScaling(s *registers.Snapshot) (float64, error) {
	sc, err := ScalingOf(s)
	return sc.Voltage, err
}

// CurrentScaling is hi + lo/65536 of the current scaling pair.
func CurrentScaling(s *registers.Snapshot) (float64, error) {
	sc, err := ScalingOf(s)
	return sc.Current, err
}

func pair(hi, lo uint16) float64 {
	return float64(hi) + float64(lo)/65536
}

// Volts converts a raw voltage word.
func (sc Scaling) Volts(raw uint16) float64 {
	return float64(raw) * sc.Voltage * ScalingConstant
}

// Amps converts a raw current word.
func (sc Scaling) Amps(raw uint16) float64 {
	return float64(raw) * sc.Current * ScalingConstant
}

// Watts converts a raw power word.
func (sc Scaling) Watts(raw uint16) float64 {
	return float64(raw) * sc.Voltage * sc.Current * PowerConstant
}

// Percent converts a raw percentage word. It does not depend on scaling.
func Percent(raw uint16) float64 {
	return float64(raw) * 100 * PercentConstant
}

// RegulationAmps converts the raw battery current regulation setpoint.
func RegulationAmps(raw uint16) float64 {
	return float64(raw) * CurrentRegulationBase * ScalingConstant
}

// Celsius reads a temperature word as signed degrees.
func Celsius(raw uint16) float64 {
	return float64(int16(raw))
}

// Fahrenheit converts Celsius to Fahrenheit.
func Fahrenheit(c float64) float64 {
	return c*9/5 + 32
}
