// Package sk68xx drives a single SK68xx / WS2812-family addressable LED over
// an rmt pulse channel.
//
// Configure builds and enables the channel and encoder once; the returned
// Device is the only handle through which colors are sent, so a color cannot
// be sent before configuration has succeeded.
//
//	dev, err := sk68xx.Configure(backend, sk68xx.DefaultConfig(38))
//	err = dev.Send(255, 0, 0) // red, wire bytes [0x00 0xFF 0x00]
package sk68xx

import (
	"context"
	"image/color"
	"log/slog"
	"time"

	"pixelcode-go/drivers/rmt"
	"pixelcode-go/errcode"
)

// Defaults.
const (
	DefaultResolutionHz    = 20_000_000 // 50 ns per tick
	DefaultMemBlockSymbols = 64
	DefaultTransQueueDepth = 4
	DefaultWaitTimeout     = 100 * time.Millisecond
)

// Config is everything Configure needs.
type Config struct {
	Channel     rmt.TxChannelConfig
	Encoder     rmt.BytesEncoderConfig
	WaitTimeout time.Duration // bound on each Send's completion wait
}

// DefaultConfig is the SK68XXMINI-HS setup on pin: 20 MHz, 64 symbols,
// queue depth 4, bit0 = 7/20 ticks, bit1 = 20/7 ticks, 100 ms wait.
func DefaultConfig(pin int) Config {
	return Config{
		Channel: rmt.TxChannelConfig{
			Pin:             pin,
			Clock:           rmt.ClockDefault,
			ResolutionHz:    DefaultResolutionHz,
			MemBlockSymbols: DefaultMemBlockSymbols,
			TransQueueDepth: DefaultTransQueueDepth,
		},
		Encoder:     TimingSK68xxMiniHS.Encoder(DefaultResolutionHz),
		WaitTimeout: DefaultWaitTimeout,
	}
}

// Option customises Configure.
type Option func(*Device)

// WithLogger sets the logger used for driver diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.log = l
		}
	}
}

// Device owns the channel and encoder for one LED.
type Device struct {
	ch      *rmt.TxChannel
	enc     *rmt.BytesEncoder
	timeout time.Duration
	log     *slog.Logger
	wire    [3]byte // reused per Send; the channel copies it
}

// Configure creates the transmit channel on be, attaches a bytes encoder and
// enables the channel. On failure nothing stays claimed.
func Configure(be rmt.Backend, cfg Config, opts ...Option) (*Device, error) {
	const op = "configure"
	d := &Device{timeout: cfg.WaitTimeout, log: slog.Default()}
	for _, o := range opts {
		o(d)
	}
	if d.timeout <= 0 {
		d.timeout = DefaultWaitTimeout
	}

	// Check the encoder before claiming the pin.
	enc, err := rmt.NewBytesEncoder(cfg.Encoder)
	if err != nil {
		return nil, setupErr(op, "new bytes encoder", err)
	}
	ch, err := rmt.NewTxChannel(cfg.Channel, be)
	if err != nil {
		return nil, setupErr(op, "new tx channel", err)
	}
	if err := ch.Enable(); err != nil {
		_ = ch.Close()
		return nil, setupErr(op, "enable", err)
	}
	d.ch, d.enc = ch, enc

	d.log.Debug("sk68xx:configured",
		slog.Int("pin", cfg.Channel.Pin),
		slog.Uint64("resolution_hz", uint64(cfg.Channel.ResolutionHz)),
		slog.Int("queue_depth", cfg.Channel.TransQueueDepth),
		slog.Duration("bit_period", cfg.Encoder.Bit0.Period(cfg.Channel.ResolutionHz)),
	)
	return d, nil
}

func setupErr(op, msg string, err error) error {
	return &errcode.E{C: errcode.Of(err), Op: op, Msg: msg, Err: err}
}

// WireOrder returns the protocol byte order for one pixel: green, red, blue.
func WireOrder(r, g, b uint8) [3]byte {
	return [3]byte{g, r, b}
}

// Send transmits one color and waits until it has been clocked out or the
// configured wait bound elapses. Black is transmitted like any other color.
func (d *Device) Send(r, g, b uint8) error {
	const op = "transmit"
	if d == nil || d.ch == nil {
		return &errcode.E{C: errcode.NotReady, Op: op, Msg: "device not configured"}
	}
	d.wire = WireOrder(r, g, b)
	if err := d.ch.Transmit(d.enc, d.wire[:], rmt.TransmitConfig{}); err != nil {
		return &errcode.E{C: errcode.Of(err), Op: op, Msg: "submit", Err: err}
	}
	if err := d.ch.WaitAllDone(d.timeout); err != nil {
		return &errcode.E{C: errcode.Of(err), Op: op, Msg: "wait", Err: err}
	}
	return nil
}

// SendColor sends c; alpha is ignored.
func (d *Device) SendColor(c color.RGBA) error {
	return d.Send(c.R, c.G, c.B)
}

// Retry bounds SendRetry.
type Retry struct {
	Attempts int           // total attempts, >= 1
	Backoff  time.Duration // grows linearly with each attempt
}

// SendRetry is Send with retries on transient failures (queue full, timeout).
// A hardware fault or a cancelled ctx ends it early.
func (d *Device) SendRetry(ctx context.Context, r, g, b uint8, rt Retry) error {
	if rt.Attempts < 1 {
		rt.Attempts = 1
	}
	var err error
	for attempt := 0; attempt < rt.Attempts; attempt++ {
		if err = d.Send(r, g, b); err == nil || !errcode.Transient(err) {
			return err
		}
		if attempt == rt.Attempts-1 {
			break
		}
		d.log.Debug("sk68xx:retry", slog.Int("attempt", attempt+1), slog.String("code", string(errcode.Of(err))))
		t := time.NewTimer(time.Duration(attempt+1) * rt.Backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}

// Pending is the number of transmissions the channel still holds.
func (d *Device) Pending() int {
	if d == nil || d.ch == nil {
		return 0
	}
	return d.ch.Pending()
}

// Close disables the channel and releases the pin. The Device is unusable
// afterwards.
func (d *Device) Close() error {
	if d == nil || d.ch == nil {
		return nil
	}
	err := d.ch.Close()
	d.ch = nil
	return err
}
