// internal/reader/reader_test.go
package reader

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/mppt-reader/internal/override"
	"github.com/tamzrod/mppt-reader/internal/poller"
	"github.com/tamzrod/mppt-reader/internal/registers"
	"github.com/tamzrod/mppt-reader/internal/watchdog"
)

// ---- fakes ----

type write struct {
	addr, value uint16
}

type fakeTransport struct {
	mu     sync.Mutex
	words  []uint16
	writes []write
	closes int
}

func (f *fakeTransport) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint16, qty)
	copy(out, f.words)
	return out, nil
}

func (f *fakeTransport) WriteRegister(addr, value uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, write{addr, value})
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeTransport) snapshot() ([]write, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]write, len(f.writes))
	copy(out, f.writes)
	return out, f.closes
}

func device() *fakeTransport {
	w := make([]uint16, registers.BlockSize)
	w[registers.VoltScalingHi] = 180
	w[registers.CurrScalingHi] = 80
	w[registers.BatteryVolt] = 2276 // ~12.5 V
	w[registers.FaultBits] = 1 << 1
	return &fakeTransport{words: w}
}

func testConfig() Config {
	return Config{
		Poll: poller.Config{
			Block:    poller.ReadBlock{Address: registers.BlockStart, Quantity: registers.BlockSize},
			Interval: 5 * time.Millisecond,
		},
		Watchdog: watchdog.Config{Interval: 5 * time.Millisecond},
	}
}

// ---- tests ----

func TestNewRejectsUnsafeWatchdog(t *testing.T) {
	c := testConfig()
	c.Watchdog.Interval = registers.MaxSilence

	_, err := New(c, device())
	require.ErrorIs(t, err, registers.ErrUnsafeInterval)
}

func TestViewsBeforeFirstPoll(t *testing.T) {
	requires := require.New(t)
	r, err := New(testConfig(), device())
	requires.NoError(err)

	_, err = r.Battery()
	requires.ErrorIs(err, registers.ErrNoSnapshot)
	_, err = r.Frame()
	requires.ErrorIs(err, registers.ErrNoSnapshot)
	_, err = r.Faults()
	requires.ErrorIs(err, registers.ErrNoSnapshot)

	// voltage setpoints need a scaling factor
	requires.ErrorIs(r.Hold(override.BatteryVoltageRegulation, 14.2), registers.ErrNoSnapshot)
}

func TestRunHoldEchoAndReleaseOnExit(t *testing.T) {
	requires := require.New(t)
	tr := device()
	r, err := New(testConfig(), tr)
	requires.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	requires.NoError(r.WaitReady(context.Background()))

	b, err := r.Battery()
	requires.NoError(err)
	v, err := b.Voltage()
	requires.NoError(err)
	requires.InDelta(2276*180*math.Pow(2, -15), v, 1e-9)

	requires.NoError(r.Hold(override.ArrayVoltageTarget, 30))
	held := r.Overrides().ArrayVoltageTarget().State().Held
	addr := r.Overrides().ArrayVoltageTarget().WriteAddress()

	requires.Eventually(func() bool {
		ws, _ := tr.snapshot()
		for _, w := range ws {
			if w.addr == addr && w.value == held {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	requires.Eventually(func() bool {
		f, err := r.Faults()
		return err == nil && len(f) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	requires.NoError(<-done)

	ws, closes := tr.snapshot()
	last := ws[len(ws)-1]
	requires.Equal(addr, last.addr)
	requires.Equal(r.Overrides().ArrayVoltageTarget().State().AtRest, last.value)
	requires.False(r.Overrides().ArrayVoltageTarget().State().Locked)
	requires.Equal(1, closes)

	// second close is a no-op
	requires.NoError(r.Close())
	_, closes = tr.snapshot()
	requires.Equal(1, closes)
}

func TestFrameCarriesWatchdogNames(t *testing.T) {
	requires := require.New(t)
	r, err := New(testConfig(), device())
	requires.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	requires.Eventually(func() bool {
		f, err := r.Frame()
		return err == nil && len(f.Faults) == 1
	}, time.Second, 5*time.Millisecond)

	f, err := r.Frame()
	requires.NoError(err)
	requires.Equal(registers.Faults[1], f.Faults[0])
	requires.NotNil(f.Snapshot)
}

func TestReleaseUnknownAndUnseeded(t *testing.T) {
	requires := require.New(t)
	r, err := New(testConfig(), device())
	requires.NoError(err)

	requires.ErrorIs(r.Release("float_voltage"), override.ErrUnknownSlot)
	requires.ErrorIs(r.Release(override.ArrayVoltageTarget), override.ErrNotSeeded)
}
