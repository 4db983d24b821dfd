// internal/recorder/builder.go
package recorder

import (
	"time"

	cfg "github.com/tamzrod/mppt-reader/internal/config"
	"github.com/tamzrod/mppt-reader/internal/recorder/csvfile"
	"github.com/tamzrod/mppt-reader/internal/recorder/mqtt"
	"github.com/tamzrod/mppt-reader/internal/recorder/wsfeed"
)

// BuildSinks creates one sink per enabled output.
// On failure every sink created so far is closed.
func BuildSinks(rc cfg.RecorderConfig) ([]Sink, func() error, error) {
	var sinks []Sink

	fail := func(err error) ([]Sink, func() error, error) {
		for _, s := range sinks {
			_ = s.Close()
		}
		return nil, nil, err
	}

	if rc.CSV.Enabled {
		s, err := csvfile.Open(csvfile.Config{Path: rc.CSV.File})
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, &csvSink{w: s})
	}

	if rc.Feed.Listen != "" {
		s, err := wsfeed.Listen(wsfeed.Config{Addr: rc.Feed.Listen})
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, &feedSink{hub: s})
	}

	if rc.MQTT.Broker != "" {
		s, err := mqtt.Connect(mqtt.Config{
			Broker:   rc.MQTT.Broker,
			Topic:    rc.MQTT.Topic,
			ClientID: rc.MQTT.ClientID,
			Timeout:  10 * time.Second,
		})
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, &mqttSink{pub: s})
	}

	closeAll := func() error {
		var last error
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				last = err
			}
		}
		return last
	}

	return sinks, closeAll, nil
}
