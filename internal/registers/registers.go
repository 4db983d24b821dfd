// internal/registers/registers.go
package registers

import (
	"errors"
	"fmt"
	"time"
)

// Register map of the charge controller.
// Addresses are 0-based PDU addresses. These values define the device
// protocol and MUST NOT be configurable.

// Register is a holding register address inside the polled block.
type Register uint16

// ---- SCALING ----

const (
	VoltScalingHi   Register = 0
	VoltScalingLo   Register = 1
	CurrScalingHi   Register = 2
	CurrScalingLo   Register = 3
	SoftwareVersion Register = 4
)

// ---- FILTERED ADC ----

const (
	BatteryVolt      Register = 24
	BatteryTermVolt  Register = 25
	BatterySenseVolt Register = 26
	ArrayVolt        Register = 27
	BatteryCurrent   Register = 28
	ArrayCurrent     Register = 29
	VoltSupply12     Register = 30
	VoltSupply3      Register = 31
	MeterBusVolt     Register = 32
	RefVoltage       Register = 34
)

// ---- TEMPERATURES ----

const (
	HeatSinkTemp Register = 35
	RTSTemp      Register = 36
	BatteryTemp  Register = 37
)

// ---- BATTERY / HOURMETER ----

const (
	BatteryVoltageSlow Register = 38
	ChargingCurrent    Register = 39
	MinBatteryVolt     Register = 40
	MaxBatteryVolt     Register = 41
	HourmeterHI        Register = 42
	HourmeterLO        Register = 43
)

// ---- STATUS BIT-FIELDS ----

const (
	FaultBits     Register = 44
	AlarmHI       Register = 46
	AlarmLO       Register = 47
	DipswitchBits Register = 48
	LEDState      Register = 49
	ChargeState   Register = 50
)

// ---- POWER ----

const (
	OutputPower Register = 58
	InputPower  Register = 59
)

// ---- CONTROL SETPOINTS ----

const (
	BatteryCurrentRegulation     Register = 88
	BatteryVoltageRegulation     Register = 89
	ArrayVoltageTarget           Register = 90
	ArrayVoltageTargetPercentage Register = 91
)

// ---- BLOCK GEOMETRY ----

// BlockStart is the first register of the polled block.
const BlockStart uint16 = 0

// BlockSize is the number of registers read per poll.
// It MUST cover the highest register consumed by any accessor.
const BlockSize uint16 = 94

// WriteOffset is added to a setpoint's read address to get its write address.
// The device maps writable setpoints one word past the read-only mirror.
// Pending hardware confirmation across firmware versions.
const WriteOffset uint16 = 1

// ---- TIMING ----

// MaxSilence is the device watchdog ceiling. Any poll or watchdog interval
// must stay strictly below it or the controller reverts overridden setpoints.
const MaxSilence = 55 * time.Second

// ErrUnsafeInterval is returned for intervals at or above MaxSilence.
var ErrUnsafeInterval = errors.New("interval at or above the device silence ceiling")

// CheckInterval rejects periods the device would treat as silence.
func CheckInterval(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s interval must be > 0", name)
	}
	if d >= MaxSilence {
		return fmt.Errorf("%s interval %s: %w", name, d, ErrUnsafeInterval)
	}
	return nil
}
