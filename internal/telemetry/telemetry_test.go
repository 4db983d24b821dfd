// internal/telemetry/telemetry_test.go
package telemetry

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/mppt-reader/internal/registers"
)

// block builds a full snapshot with voltage scaling 1.5 and current scaling 80.25.
func block(set map[registers.Register]uint16) *registers.Snapshot {
	words := make([]uint16, registers.BlockSize)
	words[registers.VoltScalingHi] = 1
	words[registers.VoltScalingLo] = 32768
	words[registers.CurrScalingHi] = 80
	words[registers.CurrScalingLo] = 16384
	for r, v := range set {
		words[r] = v
	}
	return registers.NewSnapshot(words, time.Now())
}

func TestScalingPairs(t *testing.T) {
	requires := require.New(t)

	cases := []struct{ hi, lo uint16 }{
		{0, 0}, {1, 32768}, {180, 1}, {65535, 65535}, {0, 65535},
	}
	for _, c := range cases {
		words := make([]uint16, registers.BlockSize)
		words[registers.VoltScalingHi] = c.hi
		words[registers.VoltScalingLo] = c.lo
		words[registers.CurrScalingHi] = c.lo
		words[registers.CurrScalingLo] = c.hi
		snap := registers.NewSnapshot(words, time.Now())

		vs, err := VoltageScaling(snap)
		requires.NoError(err)
		requires.Equal(float64(c.hi)+float64(c.lo)/65536, vs)

		cs, err := CurrentScaling(snap)
		requires.NoError(err)
		requires.Equal(float64(c.lo)+float64(c.hi)/65536, cs)
	}
}

func TestBatteryVoltageFormula(t *testing.T) {
	snap := block(map[registers.Register]uint16{registers.BatteryVolt: 400})

	v, err := NewBattery(snap).Voltage()
	require.NoError(t, err)
	require.Equal(t, 400*1.5*math.Pow(2, -15), v)
}

func TestPhysicalFormulas(t *testing.T) {
	requires := require.New(t)

	snap := block(map[registers.Register]uint16{
		registers.BatteryCurrent:               1000,
		registers.ArrayVolt:                    2000,
		registers.ArrayCurrent:                 300,
		registers.InputPower:                   5000,
		registers.OutputPower:                  4000,
		registers.ArrayVoltageTargetPercentage: 32768,
		registers.BatteryCurrentRegulation:     4096,
		registers.HeatSinkTemp:                 uint16(0xFFFB), // -5 C
		registers.BatteryTemp:                  100,
		registers.VoltSupply12:                 777,
	})
	vs, cs := 1.5, 80.25

	b := NewBattery(snap)
	a := NewArray(snap)
	u := NewUtilities(snap)

	got, err := b.Current()
	requires.NoError(err)
	requires.Equal(1000*cs*math.Pow(2, -15), got)

	got, err = a.Voltage()
	requires.NoError(err)
	requires.Equal(2000*vs*math.Pow(2, -15), got)

	got, err = a.Current()
	requires.NoError(err)
	requires.Equal(300*cs*math.Pow(2, -15), got)

	got, err = u.PowerIn()
	requires.NoError(err)
	requires.Equal(5000*vs*cs*math.Pow(2, -17), got)

	got, err = u.PowerOut()
	requires.NoError(err)
	requires.Equal(4000*vs*cs*math.Pow(2, -17), got)

	got, err = a.VoltageTargetPercent()
	requires.NoError(err)
	requires.Equal(50.0, got)

	got, err = b.CurrentRegulation()
	requires.NoError(err)
	requires.Equal(4096*80*math.Pow(2, -15), got)

	got, err = u.HeatsinkTemp()
	requires.NoError(err)
	requires.Equal(-5.0, got)

	got, err = b.TemperatureF()
	requires.NoError(err)
	requires.Equal(212.0, got)

	got, err = u.VoltSupply12()
	requires.NoError(err)
	requires.Equal(777.0, got)
}

func TestRemainingBattery(t *testing.T) {
	requires := require.New(t)

	snap := block(map[registers.Register]uint16{
		registers.BatteryTermVolt: 300,
		registers.MinBatteryVolt:  200,
		registers.MaxBatteryVolt:  600,
	})
	got, err := NewBattery(snap).Remaining()
	requires.NoError(err)
	requires.InDelta(0.25, got, 1e-12)

	flat := block(map[registers.Register]uint16{
		registers.MinBatteryVolt: 200,
		registers.MaxBatteryVolt: 200,
	})
	_, err = NewBattery(flat).Remaining()
	requires.ErrorIs(err, ErrZeroSpan)
}

func TestStatusNames(t *testing.T) {
	requires := require.New(t)

	snap := block(map[registers.Register]uint16{
		registers.LEDState:    6,
		registers.ChargeState: 7,
		registers.FaultBits:   0b101,
	})
	u := NewUtilities(snap)

	led, err := u.LEDState()
	requires.NoError(err)
	requires.Equal("GREEN LED", led)

	cs, err := u.ChargeState()
	requires.NoError(err)
	requires.Equal("FLOAT", cs)

	faults, err := u.Faults()
	requires.NoError(err)
	requires.Equal([]string{"Overcurrent", "Software bug"}, faults)
}

func TestShortSnapshotIsDecodeError(t *testing.T) {
	requires := require.New(t)

	snap := registers.NewSnapshot(make([]uint16, 30), time.Now())

	_, err := NewArray(snap).VoltageTarget()
	var de *registers.DecodeError
	requires.True(errors.As(err, &de))

	// scaling registers are present, the reading is not
	_, err = NewUtilities(snap).PowerIn()
	requires.True(errors.As(err, &de))
	requires.Equal(registers.InputPower, de.Register)
}

func TestNilSnapshot(t *testing.T) {
	_, err := NewBattery(nil).Voltage()
	require.ErrorIs(t, err, registers.ErrNoSnapshot)
}

func TestResolveUnknownFails(t *testing.T) {
	requires := require.New(t)

	_, err := Resolve([]string{"battery.voltage", "battery.colour"})
	requires.Error(err)
	requires.Contains(err.Error(), "battery.colour")

	vars, err := Resolve([]string{"battery.voltage", "utils.charge_state"})
	requires.NoError(err)
	requires.Len(vars, 2)
}

func TestNamesAllResolve(t *testing.T) {
	vars, err := Resolve(Names())
	require.NoError(t, err)
	require.Len(t, vars, len(Names()))
}

func TestSample(t *testing.T) {
	requires := require.New(t)

	vars, err := Resolve([]string{"battery.voltage", "utils.charge_state", "watchdog.faults", "battery.remaining"})
	requires.NoError(err)

	frame := Frame{
		Snapshot: block(map[registers.Register]uint16{
			registers.BatteryVolt: 400,
			registers.ChargeState: 5,
		}),
		Faults: []string{"Overcurrent"},
	}

	vals := Sample(frame, vars)
	requires.Len(vals, 4)
	requires.Equal(400*1.5*math.Pow(2, -15), vals[0].Value)
	requires.Equal("MPPT", vals[1].Value)
	requires.Equal([]string{"Overcurrent"}, vals[2].Value)
	requires.ErrorIs(vals[3].Err, ErrZeroSpan)
}
