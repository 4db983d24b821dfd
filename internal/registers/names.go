// internal/registers/names.go
package registers

// Name tables for the status words. Index i names bit i (LSB first)
// for bit-fields, or value i for enumerated words.

// Faults names the bits of FaultBits.
var Faults = []string{
	"Overcurrent",
	"FETs shorted",
	"Software bug",
	"Battery HVD",
	"Array HVD",
	"Settings switch changed",
	"Custom settings edit",
	"RTS shorted",
	"RTS disconnected",
	"EEPROM retry limit",
	"Reserved",
	"Slave control timeout",
}

// Alarms names the bits of the 32-bit alarm word (AlarmHI<<16 | AlarmLO).
var Alarms = []string{
	"RTS open",
	"RTS shorted",
	"RTS disconnected",
	"Heatsink temp sensor open",
	"Heatsink temp sensor shorted",
	"High temperature current limit",
	"Current limit",
	"Current offset",
	"Battery sense out of range",
	"Battery sense disconnected",
	"Uncalibrated",
	"RTS miswire",
	"High voltage disconnect",
	"Undefined",
	"System miswire",
	"MOSFET open",
	"P12 voltage off",
	"High input voltage current limit",
	"ADC input max",
	"Controller was reset",
	"Alarm 21",
	"Alarm 22",
	"Alarm 23",
	"Alarm 24",
}

// Dipswitches names the eight settings switches.
var Dipswitches = []string{
	"DIP 1",
	"DIP 2",
	"DIP 3",
	"DIP 4",
	"DIP 5",
	"DIP 6",
	"DIP 7",
	"DIP 8",
}

// LEDStates names the values of LEDState.
var LEDStates = []string{
	"LED_START",
	"LED_START2",
	"LED_BRANCH",
	"FAST GREEN BLINK",
	"SLOW GREEN BLINK",
	"GREEN BLINK 1HZ",
	"GREEN LED",
	"UNDEFINED",
	"YELLOW LED",
	"UNDEFINED",
	"BLINK RED LED",
	"RED LED",
	"R-Y-G ERROR",
	"R/Y-G ERROR",
	"R/G-Y ERROR",
	"R-Y ERROR (HTD)",
	"R-G ERROR (HVD)",
	"R/Y-G/Y ERROR",
	"G/Y/R ERROR",
	"G/Y/R x 2",
}

// ChargeStates names the values of ChargeState.
var ChargeStates = []string{
	"START",
	"NIGHT_CHECK",
	"DISCONNECT",
	"NIGHT",
	"FAULT",
	"MPPT",
	"ABSORPTION",
	"FLOAT",
	"EQUALIZE",
	"SLAVE",
}
