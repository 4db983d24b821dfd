// internal/poller/poller_test.go
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/mppt-reader/internal/registers"
	"github.com/tamzrod/mppt-reader/internal/status"
	"github.com/tamzrod/mppt-reader/internal/telemetry"
)

// ---- fakes ----

type fakeClient struct {
	mu    sync.Mutex
	words []uint16
	err   error
	short bool
	reads int
}

func (f *fakeClient) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	if f.short {
		return make([]uint16, qty/2), nil
	}
	out := make([]uint16, qty)
	copy(out, f.words)
	return out, nil
}

func (f *fakeClient) set(words []uint16, err error) {
	f.mu.Lock()
	f.words, f.err = words, err
	f.mu.Unlock()
}

type fakeOverrides struct {
	mu      sync.Mutex
	seeds   []telemetry.Scaling
	updates int
	seedErr error
	updErr  error
	onEcho  func()
}

func (f *fakeOverrides) Seed(sc telemetry.Scaling) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seedErr != nil {
		return f.seedErr
	}
	f.seeds = append(f.seeds, sc)
	return nil
}

func (f *fakeOverrides) Update() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.onEcho != nil {
		f.onEcho()
	}
	return f.updErr
}

func block(mark uint16) []uint16 {
	w := make([]uint16, registers.BlockSize)
	w[registers.VoltScalingHi] = 180
	w[registers.CurrScalingHi] = 80
	w[registers.BatteryVolt] = mark
	return w
}

func testConfig() Config {
	return Config{
		Block:    ReadBlock{Address: registers.BlockStart, Quantity: registers.BlockSize},
		Interval: 10 * time.Millisecond,
	}
}

// ---- tests ----

func TestNew_RejectsUnsafeInterval(t *testing.T) {
	requires := require.New(t)

	cfg := testConfig()
	cfg.Interval = registers.MaxSilence
	_, err := New(cfg, &fakeClient{}, nil)
	requires.ErrorIs(err, registers.ErrUnsafeInterval)

	cfg.Interval = 0
	_, err = New(cfg, &fakeClient{}, nil)
	requires.Error(err)
}

func TestNew_RejectsShortBlock(t *testing.T) {
	cfg := testConfig()
	cfg.Block.Quantity = registers.BlockSize - 1

	_, err := New(cfg, &fakeClient{}, nil)
	require.Error(t, err)
}

func TestPollOnce_FirstSuccessSeedsAndRuns(t *testing.T) {
	requires := require.New(t)
	client := &fakeClient{words: block(400)}
	ovr := &fakeOverrides{}

	p, err := New(testConfig(), client, ovr)
	requires.NoError(err)
	requires.Equal(StateIdle, p.State())

	_, err = p.Snapshot()
	requires.ErrorIs(err, registers.ErrNoSnapshot)

	res := p.PollOnce(context.Background())
	requires.NoError(res.Err)
	requires.NotNil(res.Snapshot)
	requires.Equal(StateRunning, p.State())
	requires.Equal([]telemetry.Scaling{{Voltage: 180, Current: 80}}, ovr.seeds)
	requires.Equal(1, ovr.updates)

	// seeding happens once
	p.PollOnce(context.Background())
	requires.Len(ovr.seeds, 1)
	requires.Equal(2, ovr.updates)
}

func TestPollOnce_FailureKeepsPreviousSnapshot(t *testing.T) {
	requires := require.New(t)
	client := &fakeClient{words: block(400)}
	ovr := &fakeOverrides{}

	p, err := New(testConfig(), client, ovr)
	requires.NoError(err)

	p.PollOnce(context.Background())
	first, err := p.Snapshot()
	requires.NoError(err)

	client.set(nil, errors.New("no response"))
	res := p.PollOnce(context.Background())
	requires.Error(res.Err)
	requires.Nil(res.Snapshot)

	cur, err := p.Snapshot()
	requires.NoError(err)
	requires.Same(first, cur)

	// no echo without a fresh snapshot
	requires.Equal(1, ovr.updates)

	h := p.Health()
	requires.Equal(status.HealthStale, h.Health)
	requires.Equal(uint64(1), h.ReadFailures)
}

func TestPollOnce_ShortReadIsFailure(t *testing.T) {
	requires := require.New(t)
	client := &fakeClient{short: true}

	p, err := New(testConfig(), client, nil)
	requires.NoError(err)

	res := p.PollOnce(context.Background())
	requires.ErrorContains(res.Err, "short read")
	requires.Equal(StateIdle, p.State())
}

func TestPollOnce_RetryBounded(t *testing.T) {
	requires := require.New(t)
	client := &fakeClient{err: errors.New("crc")}

	cfg := testConfig()
	cfg.RetryAttempts = 3
	cfg.RetryDelay = time.Millisecond
	p, err := New(cfg, client, nil)
	requires.NoError(err)

	res := p.PollOnce(context.Background())
	requires.ErrorContains(res.Err, "crc")
	requires.Equal(3, client.reads)
}

func TestPollOnce_SeedRetriedUntilItSucceeds(t *testing.T) {
	requires := require.New(t)
	ovr := &fakeOverrides{seedErr: errors.New("zero scaling")}

	p, err := New(testConfig(), &fakeClient{words: block(1)}, ovr)
	requires.NoError(err)

	p.PollOnce(context.Background())
	requires.Empty(ovr.seeds)

	ovr.mu.Lock()
	ovr.seedErr = nil
	ovr.mu.Unlock()

	p.PollOnce(context.Background())
	requires.Len(ovr.seeds, 1)
}

func TestPollOnce_WriteFailureCounted(t *testing.T) {
	requires := require.New(t)
	ovr := &fakeOverrides{updErr: errors.New("exception 2")}

	p, err := New(testConfig(), &fakeClient{words: block(1)}, ovr)
	requires.NoError(err)

	res := p.PollOnce(context.Background())
	requires.NoError(res.Err)
	requires.Error(res.WriteErr)

	h := p.Health()
	requires.Equal(status.HealthOK, h.Health)
	requires.Equal(uint64(1), h.WriteFailures)
}

func TestPollOnce_EchoSeesNewSnapshot(t *testing.T) {
	requires := require.New(t)
	client := &fakeClient{words: block(7)}
	ovr := &fakeOverrides{}

	p, err := New(testConfig(), client, ovr)
	requires.NoError(err)

	var seen uint16
	ovr.onEcho = func() {
		s, err := p.Snapshot()
		requires.NoError(err)
		seen, _ = s.Word(registers.BatteryVolt)
	}

	p.PollOnce(context.Background())
	requires.Equal(uint16(7), seen)
}

func TestRun_PublishesWhileReadersLoad(t *testing.T) {
	requires := require.New(t)
	client := &fakeClient{words: block(0)}

	p, err := New(testConfig(), client, nil)
	requires.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// every published block is internally consistent: the mark always
	// matches the scaling word it was written with
	var torn atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint16(1); i < 50; i++ {
			w := block(i)
			w[registers.VoltScalingHi] = i
			client.set(w, nil)
			time.Sleep(time.Millisecond)
		}
	}()
	for i := 0; i < 500; i++ {
		s, err := p.Snapshot()
		if err != nil {
			continue
		}
		mark, _ := s.Word(registers.BatteryVolt)
		hi, _ := s.Word(registers.VoltScalingHi)
		if mark != 0 && mark != hi {
			torn.Store(true)
		}
	}
	wg.Wait()

	cancel()
	<-done
	requires.False(torn.Load())
}

func TestRun_StopsOnCancel(t *testing.T) {
	p, err := New(testConfig(), &fakeClient{words: block(1)}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
