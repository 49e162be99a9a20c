package rmt

import (
	"context"
	"errors"
	"sync"
	"time"

	"pixelcode-go/errcode"
	"pixelcode-go/x/mathx"
)

// ClockSource selects the channel's source clock.
type ClockSource uint8

const (
	ClockDefault ClockSource = iota // resolves to APB
	ClockAPB
	ClockXTAL
)

// FrequencyHz returns the source clock frequency, or 0 if unknown.
func (c ClockSource) FrequencyHz() uint32 {
	switch c {
	case ClockDefault, ClockAPB:
		return 80_000_000
	case ClockXTAL:
		return 40_000_000
	default:
		return 0
	}
}

func (c ClockSource) String() string {
	switch c {
	case ClockDefault:
		return "default"
	case ClockAPB:
		return "apb"
	case ClockXTAL:
		return "xtal"
	default:
		return "unknown"
	}
}

// Channel limits.
const (
	MinMemBlockSymbols = 48
	maxClockDivider    = 256
)

// TxChannelConfig describes a transmit channel. It is fixed once the channel
// exists.
type TxChannelConfig struct {
	Pin             int
	Clock           ClockSource
	ResolutionHz    uint32 // ticks per second
	MemBlockSymbols int    // on-chip symbol memory per channel
	TransQueueDepth int    // transmissions allowed to be outstanding
}

// Validate checks the configuration against the peripheral's limits.
func (c TxChannelConfig) Validate() error {
	const op = "tx_channel_config"
	if c.Pin < 0 {
		return &errcode.E{C: errcode.UnknownPin, Op: op}
	}
	src := c.Clock.FrequencyHz()
	if src == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "unknown clock source"}
	}
	if c.ResolutionHz == 0 || src%c.ResolutionHz != 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "resolution must divide the " + c.Clock.String() + " clock"}
	}
	if !mathx.Between(src/c.ResolutionHz, 1, maxClockDivider) {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "clock divider out of range"}
	}
	if c.MemBlockSymbols < MinMemBlockSymbols || c.MemBlockSymbols%2 != 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "mem block must be an even count >= 48"}
	}
	if c.TransQueueDepth < 1 {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "queue depth must be >= 1"}
	}
	return nil
}

// Backend clocks symbols out of a physical (or simulated) pin.
type Backend interface {
	// Open claims the pin for cfg. It is called once, before any Write.
	Open(cfg TxChannelConfig) error
	// Write blocks until every symbol has been clocked out.
	Write(symbols []Symbol) error
	// Close releases the pin. It may be called while a Write is blocked and
	// must make that Write return.
	Close() error
}

// TransmitConfig controls a single transmission. Only LoopCount 0
// (transmit exactly once) is supported.
type TransmitConfig struct {
	LoopCount int
}

// Stats counts transmissions over the channel lifetime.
type Stats struct {
	Submitted uint32
	Completed uint32
	Faults    uint32
}

type chanState uint8

const (
	stateInit chanState = iota
	stateEnabled
	stateDisabled
	stateClosed
)

type transaction struct {
	symbols []Symbol
}

// TxChannel is a transmit channel bound to one pin. A single engine goroutine
// hands queued transmissions to the backend in submission order.
//
// TxChannel serialises its own state, but it is meant to have one owner: the
// completion signal is shared, so concurrent senders would wait on each
// other's transmissions.
type TxChannel struct {
	cfg TxChannelConfig
	be  Backend

	mu      sync.Mutex
	state   chanState
	queue   chan transaction
	free    chan []Symbol // one encode buffer per queue slot
	pending int
	drained chan struct{} // closed when pending drops to zero; nil while idle
	fault   error         // first backend error since the last wait
	stats   Stats
	stopped chan struct{}
}

// NewTxChannel validates cfg and opens the backend. The channel is created
// disabled.
func NewTxChannel(cfg TxChannelConfig, be Backend) (*TxChannel, error) {
	const op = "new_tx_channel"
	if be == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "nil backend"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := be.Open(cfg); err != nil {
		return nil, &errcode.E{C: errcode.MapDriverErr(err), Op: op, Msg: "open backend", Err: err}
	}
	c := &TxChannel{
		cfg:  cfg,
		be:   be,
		free: make(chan []Symbol, cfg.TransQueueDepth),
	}
	for i := 0; i < cfg.TransQueueDepth; i++ {
		// Room for a 3-byte pixel; larger frames grow the buffer once.
		c.free <- make([]Symbol, 0, 24)
	}
	return c, nil
}

// Config returns the channel configuration.
func (c *TxChannel) Config() TxChannelConfig { return c.cfg }

// Enable starts the transmit engine.
func (c *TxChannel) Enable() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case stateEnabled:
		return &errcode.E{C: errcode.InvalidState, Op: "enable", Msg: "already enabled"}
	case stateClosed:
		return &errcode.E{C: errcode.InvalidState, Op: "enable", Msg: "channel closed"}
	}
	c.queue = make(chan transaction, c.cfg.TransQueueDepth)
	c.stopped = make(chan struct{})
	c.state = stateEnabled
	go c.run(c.queue, c.stopped)
	return nil
}

// Transmit encodes data with enc and queues it. It does not wait: the caller
// may reuse data as soon as Transmit returns. A full queue is reported rather
// than waited on.
func (c *TxChannel) Transmit(enc *BytesEncoder, data []byte, tc TransmitConfig) error {
	const op = "transmit"
	if enc == nil {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "nil encoder"}
	}
	if len(data) == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "empty payload"}
	}
	if tc.LoopCount != 0 {
		return &errcode.E{C: errcode.Unsupported, Op: op, Msg: "loop transmission"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateEnabled {
		return &errcode.E{C: errcode.NotReady, Op: op, Msg: "channel not enabled"}
	}
	var buf []Symbol
	select {
	case buf = <-c.free:
	default:
		return &errcode.E{C: errcode.QueueFull, Op: op}
	}
	buf = enc.Encode(buf[:0], data)

	c.pending++
	if c.drained == nil {
		c.drained = make(chan struct{})
	}
	c.stats.Submitted++
	// Never blocks: the queue has one slot per free buffer.
	c.queue <- transaction{symbols: buf}
	return nil
}

// WaitAllDone blocks until every submitted transmission has completed or
// timeout elapses. A timeout <= 0 waits without bound.
func (c *TxChannel) WaitAllDone(timeout time.Duration) error {
	if timeout <= 0 {
		return c.Wait(context.Background())
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Wait(ctx)
}

// Wait is WaitAllDone bounded by ctx. A deadline is reported as a timeout;
// the transmissions themselves are not cancelled.
func (c *TxChannel) Wait(ctx context.Context) error {
	const op = "wait"
	c.mu.Lock()
	if c.state == stateInit || c.state == stateClosed {
		c.mu.Unlock()
		return &errcode.E{C: errcode.NotReady, Op: op, Msg: "channel not enabled"}
	}
	drained := c.drained
	c.mu.Unlock()

	if drained != nil {
		select {
		case <-drained:
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return &errcode.E{C: errcode.Timeout, Op: op, Err: ctx.Err()}
			}
			return &errcode.E{C: errcode.Error, Op: op, Msg: "cancelled", Err: ctx.Err()}
		}
	}

	c.mu.Lock()
	fault := c.fault
	c.fault = nil
	c.mu.Unlock()
	if fault != nil {
		return &errcode.E{C: errcode.MapDriverErr(fault), Op: op, Err: fault}
	}
	return nil
}

// Pending returns the number of queued plus in-flight transmissions.
func (c *TxChannel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Stats returns a snapshot of the lifetime counters.
func (c *TxChannel) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Disable stops accepting transmissions and returns once queued ones have
// been clocked out.
func (c *TxChannel) Disable() error {
	c.mu.Lock()
	if c.state != stateEnabled {
		c.mu.Unlock()
		return &errcode.E{C: errcode.InvalidState, Op: "disable", Msg: "channel not enabled"}
	}
	c.state = stateDisabled
	close(c.queue)
	stopped := c.stopped
	c.mu.Unlock()

	<-stopped
	return nil
}

// Close stops the channel and releases the backend. Unlike Disable it does
// not wait for queued transmissions: the backend is closed first, so a
// stalled line cannot hold Close, and anything still queued fails.
func (c *TxChannel) Close() error {
	c.mu.Lock()
	if c.state == stateClosed {
		c.mu.Unlock()
		return nil
	}
	var stopped chan struct{}
	if c.state == stateEnabled {
		close(c.queue)
		stopped = c.stopped
	}
	c.state = stateClosed
	c.mu.Unlock()

	err := c.be.Close()
	if stopped != nil {
		<-stopped
	}
	if err != nil {
		return &errcode.E{C: errcode.MapDriverErr(err), Op: "close", Err: err}
	}
	return nil
}

func (c *TxChannel) run(queue <-chan transaction, stopped chan<- struct{}) {
	defer close(stopped)
	for tx := range queue {
		err := c.be.Write(tx.symbols)
		c.complete(tx, err)
	}
}

func (c *TxChannel) complete(tx transaction, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Completed++
	if err != nil {
		c.stats.Faults++
		if c.fault == nil {
			c.fault = err
		}
	}
	c.free <- tx.symbols[:0]
	c.pending--
	if c.pending == 0 && c.drained != nil {
		close(c.drained)
		c.drained = nil
	}
}
