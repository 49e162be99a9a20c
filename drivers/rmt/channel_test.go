package rmt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelcode-go/drivers/rmt"
	"pixelcode-go/drivers/rmt/analyzer"
	"pixelcode-go/errcode"
)

func chanCfg() rmt.TxChannelConfig {
	return rmt.TxChannelConfig{
		Pin:             38,
		Clock:           rmt.ClockDefault,
		ResolutionHz:    20_000_000,
		MemBlockSymbols: 64,
		TransQueueDepth: 4,
	}
}

func newEnabled(t *testing.T) (*rmt.TxChannel, *rmt.BytesEncoder, *analyzer.Analyzer) {
	t.Helper()
	an := analyzer.New()
	ch, err := rmt.NewTxChannel(chanCfg(), an)
	require.NoError(t, err)
	enc, err := rmt.NewBytesEncoder(encCfg())
	require.NoError(t, err)
	require.NoError(t, ch.Enable())
	t.Cleanup(func() { _ = ch.Close() })
	return ch, enc, an
}

func TestTxChannelConfigValidate(t *testing.T) {
	require.NoError(t, chanCfg().Validate())

	mutate := map[string]func(*rmt.TxChannelConfig){
		"negative pin":      func(c *rmt.TxChannelConfig) { c.Pin = -1 },
		"zero resolution":   func(c *rmt.TxChannelConfig) { c.ResolutionHz = 0 },
		"non divisor":       func(c *rmt.TxChannelConfig) { c.ResolutionHz = 30_000_000 },
		"divider too large": func(c *rmt.TxChannelConfig) { c.ResolutionHz = 100_000 },
		"unknown clock":     func(c *rmt.TxChannelConfig) { c.Clock = 9 },
		"small mem block":   func(c *rmt.TxChannelConfig) { c.MemBlockSymbols = 32 },
		"odd mem block":     func(c *rmt.TxChannelConfig) { c.MemBlockSymbols = 49 },
		"zero queue depth":  func(c *rmt.TxChannelConfig) { c.TransQueueDepth = 0 },
	}
	for name, m := range mutate {
		t.Run(name, func(t *testing.T) {
			cfg := chanCfg()
			m(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	xtal := chanCfg()
	xtal.Clock = rmt.ClockXTAL
	assert.NoError(t, xtal.Validate())
}

func TestNewTxChannelOpensBackend(t *testing.T) {
	an := analyzer.New()
	ch, err := rmt.NewTxChannel(chanCfg(), an)
	require.NoError(t, err)
	assert.True(t, an.Opened())
	assert.Equal(t, 38, an.Config().Pin)

	require.NoError(t, ch.Close())
	assert.True(t, an.Closed())
}

func TestNewTxChannelBackendFailure(t *testing.T) {
	an := analyzer.New()
	an.OpenErr = errors.New("pin matrix busy")

	_, err := rmt.NewTxChannel(chanCfg(), an)
	require.Error(t, err)
	assert.Equal(t, errcode.HardwareFault, errcode.Of(err))

	_, err = rmt.NewTxChannel(chanCfg(), nil)
	assert.Equal(t, errcode.InvalidParams, errcode.Of(err))
}

func TestTransmitRequiresEnable(t *testing.T) {
	ch, err := rmt.NewTxChannel(chanCfg(), analyzer.New())
	require.NoError(t, err)
	defer ch.Close()
	enc, err := rmt.NewBytesEncoder(encCfg())
	require.NoError(t, err)

	err = ch.Transmit(enc, []byte{1, 2, 3}, rmt.TransmitConfig{})
	assert.Equal(t, errcode.NotReady, errcode.Of(err))
	assert.Equal(t, errcode.NotReady, errcode.Of(ch.WaitAllDone(time.Millisecond)))

	require.NoError(t, ch.Enable())
	assert.Equal(t, errcode.InvalidState, errcode.Of(ch.Enable()))
}

func TestTransmitArguments(t *testing.T) {
	ch, enc, _ := newEnabled(t)

	assert.Equal(t, errcode.InvalidParams, errcode.Of(ch.Transmit(nil, []byte{1}, rmt.TransmitConfig{})))
	assert.Equal(t, errcode.InvalidParams, errcode.Of(ch.Transmit(enc, nil, rmt.TransmitConfig{})))
	assert.Equal(t, errcode.Unsupported, errcode.Of(ch.Transmit(enc, []byte{1}, rmt.TransmitConfig{LoopCount: 2})))
}

func TestTransmitAndWait(t *testing.T) {
	ch, enc, an := newEnabled(t)

	data := []byte{0x00, 0xFF, 0x00}
	require.NoError(t, ch.Transmit(enc, data, rmt.TransmitConfig{}))
	data[1] = 0x11 // caller owns the buffer again
	require.NoError(t, ch.WaitAllDone(100*time.Millisecond))

	frames, err := an.Frames(enc.Config())
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{0x00, 0xFF, 0x00}, frames[0])
	assert.Equal(t, 0, ch.Pending())
	assert.Equal(t, rmt.Stats{Submitted: 1, Completed: 1}, ch.Stats())
}

func TestWaitWithNothingPending(t *testing.T) {
	ch, _, _ := newEnabled(t)
	assert.NoError(t, ch.WaitAllDone(time.Millisecond))
}

func TestQueueDepthLimit(t *testing.T) {
	ch, enc, an := newEnabled(t)
	an.Stall()

	for i := 0; i < 4; i++ {
		require.NoError(t, ch.Transmit(enc, []byte{byte(i)}, rmt.TransmitConfig{}))
	}
	err := ch.Transmit(enc, []byte{4}, rmt.TransmitConfig{})
	assert.Equal(t, errcode.QueueFull, errcode.Of(err))
	assert.Equal(t, 4, ch.Pending())

	an.Release()
	require.NoError(t, ch.WaitAllDone(time.Second))

	frames, err := an.Frames(enc.Config())
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{0}, {1}, {2}, {3}}, frames)
}

func TestWaitTimesOutOnStall(t *testing.T) {
	ch, enc, an := newEnabled(t)
	an.Stall()

	require.NoError(t, ch.Transmit(enc, []byte{0xAA}, rmt.TransmitConfig{}))
	err := ch.WaitAllDone(20 * time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errcode.Timeout))
	assert.Equal(t, 1, ch.Pending())

	an.Release()
	assert.NoError(t, ch.WaitAllDone(time.Second))
}

func TestCloseWhileStalled(t *testing.T) {
	ch, enc, an := newEnabled(t)
	an.Stall()
	require.NoError(t, ch.Transmit(enc, []byte{0x01}, rmt.TransmitConfig{}))
	require.NoError(t, ch.Transmit(enc, []byte{0x02}, rmt.TransmitConfig{}))

	done := make(chan error, 1)
	go func() { done <- ch.Close() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Close blocked on a stalled line")
	}

	assert.True(t, an.Closed())
	assert.Empty(t, an.Captures())
	assert.Equal(t, 0, ch.Pending())
	assert.Equal(t, uint32(2), ch.Stats().Faults)
	assert.Equal(t, errcode.NotReady, errcode.Of(ch.Transmit(enc, []byte{3}, rmt.TransmitConfig{})))
	assert.NoError(t, ch.Close())
}

func TestWaitReportsHardwareFault(t *testing.T) {
	ch, enc, an := newEnabled(t)
	cause := errors.New("symbol memory underrun")
	an.FailNext(cause)

	require.NoError(t, ch.Transmit(enc, []byte{1}, rmt.TransmitConfig{}))
	err := ch.WaitAllDone(time.Second)
	require.Error(t, err)
	assert.Equal(t, errcode.HardwareFault, errcode.Of(err))
	assert.True(t, errors.Is(err, cause))

	// The fault is reported once.
	require.NoError(t, ch.Transmit(enc, []byte{2}, rmt.TransmitConfig{}))
	assert.NoError(t, ch.WaitAllDone(time.Second))
	assert.Equal(t, uint32(1), ch.Stats().Faults)
}

func TestDisableDrainsQueue(t *testing.T) {
	ch, enc, an := newEnabled(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, ch.Transmit(enc, []byte{byte(i)}, rmt.TransmitConfig{}))
	}
	require.NoError(t, ch.Disable())
	assert.Len(t, an.Captures(), 3)
	assert.Equal(t, errcode.NotReady, errcode.Of(ch.Transmit(enc, []byte{1}, rmt.TransmitConfig{})))
	assert.Equal(t, errcode.InvalidState, errcode.Of(ch.Disable()))

	require.NoError(t, ch.Enable())
	require.NoError(t, ch.Transmit(enc, []byte{9}, rmt.TransmitConfig{}))
	require.NoError(t, ch.WaitAllDone(time.Second))
}

func TestLongRunKeepsBuffersBounded(t *testing.T) {
	an := analyzer.NewBounded(4)
	ch, err := rmt.NewTxChannel(chanCfg(), an)
	require.NoError(t, err)
	enc, err := rmt.NewBytesEncoder(encCfg())
	require.NoError(t, err)
	require.NoError(t, ch.Enable())
	defer ch.Close()

	for i := 0; i < 2000; i++ {
		require.NoError(t, ch.Transmit(enc, []byte{byte(i), byte(i >> 8), 0}, rmt.TransmitConfig{}))
		require.NoError(t, ch.WaitAllDone(time.Second))
	}
	assert.Equal(t, 0, ch.Pending())
	assert.Len(t, an.Captures(), 4)
	assert.Equal(t, uint32(2000), ch.Stats().Completed)
}
