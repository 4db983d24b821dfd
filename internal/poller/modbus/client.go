// internal/poller/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// ErrClosed is returned by every call after Close.
var ErrClosed = errors.New("modbus client: closed")

// Client is the single connection to the charge controller.
// Reads from the poller and writes from override slots share it, so
// every request is serialized.
type Client struct {
	mu     sync.Mutex
	conn   io.Closer
	client modbus.Client
	closed bool
}

// Config is minimal transport config. Exactly one of Port or Endpoint is set.
type Config struct {
	Port     string // serial device, Modbus RTU
	BaudRate int

	Endpoint string // host:port, Modbus TCP

	SlaveID uint8
	Timeout time.Duration
}

// New creates a connected client.
func New(cfg Config) (*Client, error) {
	switch {
	case cfg.Port != "" && cfg.Endpoint != "":
		return nil, errors.New("modbus client: port and endpoint are exclusive")

	case cfg.Port != "":
		h := modbus.NewRTUClientHandler(cfg.Port)
		h.BaudRate = cfg.BaudRate
		h.DataBits = 8
		h.Parity = "N"
		h.StopBits = 2
		h.SlaveId = cfg.SlaveID
		h.Timeout = cfg.Timeout
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("modbus client: open %s: %w", cfg.Port, err)
		}
		return newClient(modbus.NewClient(h), h), nil

	case cfg.Endpoint != "":
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.SlaveId = cfg.SlaveID
		h.Timeout = cfg.Timeout
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("modbus client: dial %s: %w", cfg.Endpoint, err)
		}
		return newClient(modbus.NewClient(h), h), nil
	}

	return nil, errors.New("modbus client: port or endpoint required")
}

func newClient(c modbus.Client, conn io.Closer) *Client {
	return &Client{client: c, conn: conn}
}

// Close releases the connection. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// ---- poller.Client ----

func (c *Client) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if qty == 0 {
		return nil, nil
	}

	b, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	if len(b)%2 != 0 {
		return nil, errors.New("modbus: read-registers byte count not even")
	}
	return unpackRegisters(b), nil
}

// ---- override.Writer ----

func (c *Client) WriteRegister(addr, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	_, err := c.client.WriteSingleRegister(addr, value)
	return err
}

// WriteRegisters writes consecutive registers with FC 16.
func (c *Client) WriteRegisters(addr uint16, regs []uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if len(regs) == 0 {
		return nil
	}
	_, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs))
	return err
}

// ---- helpers (pure geometry) ----

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
