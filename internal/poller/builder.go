// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/mppt-reader/internal/config"
	"github.com/tamzrod/mppt-reader/internal/registers"
	pmodbus "github.com/tamzrod/mppt-reader/internal/poller/modbus"
)

// BuildConfig maps the reader config onto poller config.
// The read block is fixed by the register map, never by config.
func BuildConfig(r cfg.ReaderConfig) Config {
	return Config{
		Block: ReadBlock{
			Address:  registers.BlockStart,
			Quantity: registers.BlockSize,
		},
		Interval:         time.Duration(r.Poll.IntervalMs) * time.Millisecond,
		FailureThreshold: r.Poll.FailureThreshold,
		RetryAttempts:    r.Poll.RetryAttempts,
		RetryDelay:       time.Duration(r.Poll.RetryDelayMs) * time.Millisecond,
	}
}

// Dial opens the device connection. ONE attempt, fail fast at startup.
func Dial(d cfg.DeviceConfig) (*pmodbus.Client, error) {
	return pmodbus.New(pmodbus.Config{
		Port:     d.Port,
		BaudRate: d.BaudRate,
		Endpoint: d.Endpoint,
		SlaveID:  d.SlaveID,
		Timeout:  time.Duration(d.TimeoutMs) * time.Millisecond,
	})
}
