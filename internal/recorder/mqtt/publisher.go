// internal/recorder/mqtt/publisher.go
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "mqtt")

// Availability payloads on <topic>/status.
const (
	Online  = "online"
	Offline = "offline"
)

// Config is the minimal broker config.
type Config struct {
	Broker   string // tcp://host:1883
	Topic    string // base topic
	ClientID string
	Timeout  time.Duration
}

// Publisher pushes samples to <topic>/telemetry and availability to
// <topic>/status. Both are retained. The broker publishes offline on our
// behalf if the connection drops.
type Publisher struct {
	client  paho.Client
	topic   string
	timeout time.Duration

	mu     sync.Mutex
	online *bool
	closed bool
}

// Connect dials the broker once.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt: broker required")
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetKeepAlive(30*time.Second).
		SetWill(cfg.Topic+"/status", Offline, 1, true).
		SetAutoReconnect(true).
		SetOrderMatters(false)

	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.WithError(err).Warn("connection lost")
	}

	c := paho.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("mqtt: connect %s: timeout", cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", cfg.Broker, err)
	}

	log.WithField("broker", cfg.Broker).WithField("topic", cfg.Topic).Info("connected")
	return newPublisher(c, cfg.Topic, cfg.Timeout), nil
}

func newPublisher(c paho.Client, topic string, timeout time.Duration) *Publisher {
	return &Publisher{client: c, topic: topic, timeout: timeout}
}

func (p *Publisher) Topic() string { return p.topic }

// Publish sends v as JSON on <topic>/telemetry.
func (p *Publisher) Publish(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.send(p.topic+"/telemetry", b)
}

// SetOnline publishes availability when it changes.
func (p *Publisher) SetOnline(online bool) error {
	p.mu.Lock()
	same := p.online != nil && *p.online == online
	p.mu.Unlock()
	if same {
		return nil
	}

	payload := Offline
	if online {
		payload = Online
	}
	if err := p.send(p.topic+"/status", payload); err != nil {
		return err
	}

	p.mu.Lock()
	p.online = &online
	p.mu.Unlock()
	return nil
}

// Close publishes offline and disconnects. Idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err := p.send(p.topic+"/status", Offline)
	p.client.Disconnect(250)
	return err
}

func (p *Publisher) send(topic string, payload any) error {
	tok := p.client.Publish(topic, 1, true, payload)
	if !tok.WaitTimeout(p.timeout) {
		return fmt.Errorf("mqtt: publish %s: timeout", topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt: publish %s: %w", topic, err)
	}
	return nil
}
