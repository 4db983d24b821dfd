// internal/recorder/sinks.go
package recorder

import (
	"github.com/tamzrod/mppt-reader/internal/recorder/csvfile"
	"github.com/tamzrod/mppt-reader/internal/recorder/mqtt"
	"github.com/tamzrod/mppt-reader/internal/recorder/wsfeed"
	"github.com/tamzrod/mppt-reader/internal/status"
)

// ---- csv ----

type csvSink struct {
	w *csvfile.Writer
}

func (s *csvSink) Name() string { return "csv:" + s.w.Path() }

func (s *csvSink) Write(row Row) error {
	names := make([]string, len(row.Values))
	cells := make([]string, len(row.Values))
	for i, v := range row.Values {
		names[i] = v.Name
		cells[i] = FormatValue(v.Value, v.Err)
	}
	return s.w.Write(row.At, names, cells)
}

func (s *csvSink) Close() error { return s.w.Close() }

// ---- websocket feed ----

type feedSink struct {
	hub *wsfeed.Hub
}

func (s *feedSink) Name() string { return "feed:" + s.hub.Addr() }

func (s *feedSink) Write(row Row) error { return s.hub.Broadcast(NewDocument(row)) }

func (s *feedSink) Close() error { return s.hub.Close() }

// ---- mqtt ----

type mqttSink struct {
	pub *mqtt.Publisher
}

func (s *mqttSink) Name() string { return "mqtt:" + s.pub.Topic() }

// Availability goes out before the sample.
func (s *mqttSink) Write(row Row) error {
	online := row.Health.Health == status.HealthOK
	if err := s.pub.SetOnline(online); err != nil {
		return err
	}
	return s.pub.Publish(NewDocument(row))
}

func (s *mqttSink) Close() error { return s.pub.Close() }
