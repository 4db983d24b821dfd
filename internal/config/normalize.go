// internal/config/normalize.go
package config

// Defaults applied by Normalize to zero-valued fields.
const (
	DefaultLogLevel           = "info"
	DefaultBaudRate           = 9600
	DefaultSlaveID            = 1
	DefaultTimeoutMs          = 1000
	DefaultPollIntervalMs     = 1000
	DefaultWatchdogIntervalMs = 5000
	DefaultRecorderIntervalMs = 1000
	DefaultMQTTTopic          = "mppt"
	DefaultMQTTClientID       = "mpptreader"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	// ---- device ----

	d := &cfg.Reader.Device
	if d.Port != "" && d.BaudRate == 0 {
		d.BaudRate = DefaultBaudRate
	}
	if d.SlaveID == 0 {
		d.SlaveID = DefaultSlaveID
	}
	if d.TimeoutMs == 0 {
		d.TimeoutMs = DefaultTimeoutMs
	}

	// ---- timing ----

	if cfg.Reader.Poll.IntervalMs == 0 {
		cfg.Reader.Poll.IntervalMs = DefaultPollIntervalMs
	}
	if cfg.Reader.Poll.RetryAttempts == 0 {
		cfg.Reader.Poll.RetryAttempts = 1
	}
	if cfg.Reader.Watchdog.IntervalMs == 0 {
		cfg.Reader.Watchdog.IntervalMs = DefaultWatchdogIntervalMs
	}

	// ---- recorder ----

	r := &cfg.Recorder
	if r.IntervalMs == 0 {
		r.IntervalMs = DefaultRecorderIntervalMs
	}
	if r.MQTT.Broker != "" {
		if r.MQTT.Topic == "" {
			r.MQTT.Topic = DefaultMQTTTopic
		}
		if r.MQTT.ClientID == "" {
			r.MQTT.ClientID = DefaultMQTTClientID
		}
	}
}
