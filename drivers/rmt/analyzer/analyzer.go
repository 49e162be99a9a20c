// Package analyzer is a host-side rmt.Backend that captures the symbol stream
// a channel would put on the wire and decodes it the way a logic analyser
// with a protocol decoder would.
package analyzer

import (
	"sync"
	"time"

	"pixelcode-go/drivers/rmt"
	"pixelcode-go/errcode"
	"pixelcode-go/x/mathx"
)

// DefaultTolerance is the per-half timing slack, in ticks, accepted by Decode.
const DefaultTolerance = 2

// Capture is one completed Write.
type Capture struct {
	Symbols []rmt.Symbol
	At      time.Time
}

// Analyzer implements rmt.Backend. Fault injection hooks let tests stall the
// line or fail a write.
type Analyzer struct {
	// OpenErr, if set, is returned by Open.
	OpenErr error

	mu       sync.Mutex
	cfg      rmt.TxChannelConfig
	opened   bool
	closed   bool
	captures []Capture
	failNext error
	gate     chan struct{} // non-nil while stalled
	maxKeep  int
}

// New returns an analyzer that keeps every capture.
func New() *Analyzer { return &Analyzer{} }

// NewBounded keeps only the most recent n captures; useful for long runs.
func NewBounded(n int) *Analyzer { return &Analyzer{maxKeep: n} }

func (a *Analyzer) Open(cfg rmt.TxChannelConfig) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.OpenErr != nil {
		return a.OpenErr
	}
	if a.opened && !a.closed {
		return errcode.PinInUse
	}
	a.cfg = cfg
	a.opened = true
	a.closed = false
	return nil
}

func (a *Analyzer) Write(symbols []rmt.Symbol) error {
	a.mu.Lock()
	gate := a.gate
	a.mu.Unlock()
	if gate != nil {
		<-gate
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.opened || a.closed {
		return errcode.NotReady
	}
	if err := a.failNext; err != nil {
		a.failNext = nil
		return err
	}
	cp := make([]rmt.Symbol, len(symbols))
	copy(cp, symbols)
	a.captures = append(a.captures, Capture{Symbols: cp, At: time.Now()})
	if a.maxKeep > 0 && len(a.captures) > a.maxKeep {
		n := copy(a.captures, a.captures[len(a.captures)-a.maxKeep:])
		a.captures = a.captures[:n]
	}
	return nil
}

// Close releases the pin and any stalled Write, which then fails.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.gate != nil {
		close(a.gate)
		a.gate = nil
	}
	return nil
}

// Config returns the configuration the channel opened the analyzer with.
func (a *Analyzer) Config() rmt.TxChannelConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Opened reports whether the pin is currently claimed.
func (a *Analyzer) Opened() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.opened && !a.closed
}

// Closed reports whether Close was called.
func (a *Analyzer) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// Captures returns a copy of the recorded writes, oldest first.
func (a *Analyzer) Captures() []Capture {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Capture, len(a.captures))
	copy(out, a.captures)
	return out
}

// Reset drops recorded captures.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	a.captures = a.captures[:0]
	a.mu.Unlock()
}

// Stall holds every subsequent Write until Release.
func (a *Analyzer) Stall() {
	a.mu.Lock()
	if a.gate == nil {
		a.gate = make(chan struct{})
	}
	a.mu.Unlock()
}

// Release lets stalled writes proceed.
func (a *Analyzer) Release() {
	a.mu.Lock()
	if a.gate != nil {
		close(a.gate)
		a.gate = nil
	}
	a.mu.Unlock()
}

// FailNext makes the next Write return err without capturing.
func (a *Analyzer) FailNext(err error) {
	a.mu.Lock()
	a.failNext = err
	a.mu.Unlock()
}

// Frames decodes every capture with enc.
func (a *Analyzer) Frames(enc rmt.BytesEncoderConfig) ([][]byte, error) {
	caps := a.Captures()
	out := make([][]byte, 0, len(caps))
	for _, c := range caps {
		b, err := Decode(c.Symbols, enc, DefaultTolerance)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Decode classifies each symbol as the nearer of enc.Bit0 / enc.Bit1 and packs
// the bits back into bytes in enc's bit order. A symbol further than tol ticks
// (on either half) from both references, or a stream that is not a whole number
// of bytes, is an invalid payload.
func Decode(symbols []rmt.Symbol, enc rmt.BytesEncoderConfig, tol uint16) ([]byte, error) {
	if len(symbols)%8 != 0 {
		return nil, &errcode.E{C: errcode.InvalidPayload, Op: "decode", Msg: "symbol count is not a multiple of 8"}
	}
	out := make([]byte, len(symbols)/8)
	for i, s := range symbols {
		bit, ok := classify(s, enc, tol)
		if !ok {
			return nil, &errcode.E{C: errcode.InvalidPayload, Op: "decode", Msg: "unrecognised symbol"}
		}
		if bit == 0 {
			continue
		}
		pos := i % 8
		if enc.MSBFirst {
			out[i/8] |= 0x80 >> pos
		} else {
			out[i/8] |= 1 << pos
		}
	}
	return out, nil
}

func classify(s rmt.Symbol, enc rmt.BytesEncoderConfig, tol uint16) (byte, bool) {
	d0, ok0 := distance(s, enc.Bit0, tol)
	d1, ok1 := distance(s, enc.Bit1, tol)
	switch {
	case ok0 && ok1:
		if d1 < d0 {
			return 1, true
		}
		return 0, true
	case ok0:
		return 0, true
	case ok1:
		return 1, true
	default:
		return 0, false
	}
}

func distance(s, ref rmt.Symbol, tol uint16) (uint16, bool) {
	if s.Level0 != ref.Level0 || s.Level1 != ref.Level1 {
		return 0, false
	}
	a := mathx.AbsDiff(s.Duration0, ref.Duration0)
	b := mathx.AbsDiff(s.Duration1, ref.Duration1)
	if a > tol || b > tol {
		return 0, false
	}
	return a + b, true
}
