// internal/config/config.go
package config

type Config struct {
	LogLevel string         `yaml:"log_level"`
	Reader   ReaderConfig   `yaml:"reader"`
	Recorder RecorderConfig `yaml:"recorder"`
}

// ---- READER ----

type ReaderConfig struct {
	Device    DeviceConfig     `yaml:"device"`
	Poll      PollConfig       `yaml:"poll"`
	Watchdog  WatchdogConfig   `yaml:"watchdog"`
	Overrides []OverrideConfig `yaml:"overrides"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Port      string `yaml:"port"`     // serial device (RTU)
	Endpoint  string `yaml:"endpoint"` // host:port (TCP)
	BaudRate  int    `yaml:"baud_rate"`
	SlaveID   uint8  `yaml:"slave_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs       int  `yaml:"interval_ms"`
	FailureThreshold int  `yaml:"failure_threshold"`
	RetryAttempts    uint `yaml:"retry_attempts"`
	RetryDelayMs     int  `yaml:"retry_delay_ms"`
}

// ---- WATCHDOG ----

type WatchdogConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- OVERRIDES ----

// OverrideConfig holds a setpoint locked from startup.
type OverrideConfig struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
}

// ---- RECORDER ----

type RecorderConfig struct {
	IntervalMs int        `yaml:"interval_ms"`
	Variables  []string   `yaml:"variables"`
	CSV        CSVConfig  `yaml:"csv"`
	Feed       FeedConfig `yaml:"feed"`
	MQTT       MQTTConfig `yaml:"mqtt"`
}

type CSVConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"` // empty: timestamped name in the working directory
}

type FeedConfig struct {
	Listen string `yaml:"listen"` // empty: disabled
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"` // empty: disabled
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// Enabled reports whether any sink is configured.
func (r RecorderConfig) Enabled() bool {
	return r.CSV.Enabled || r.Feed.Listen != "" || r.MQTT.Broker != ""
}
