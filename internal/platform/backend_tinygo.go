//go:build tinygo

// This file is built only for TinyGo targets (real LED hardware).
package platform

import (
	"io"
	"log/slog"
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"pixelcode-go/drivers/rmt"
	"pixelcode-go/errcode"
)

// ws2812Backend clocks symbols out through the cycle-counted ws2812 driver.
// The driver owns the pulse shape; this backend recovers the bit values from
// the symbols and hands the bytes over.
type ws2812Backend struct {
	pin    machine.Pin
	dev    ws2812.Device
	buf    []byte
	opened bool
	log    *slog.Logger
}

// NewBackend returns the LED pin backend for this target.
func NewBackend(log *slog.Logger) rmt.Backend {
	if log == nil {
		log = slog.Default()
	}
	return &ws2812Backend{buf: make([]byte, 0, 3), log: log}
}

// LogOutput is where the firmware's logger writes.
func LogOutput() io.Writer { return machine.Serial }

func (b *ws2812Backend) Open(cfg rmt.TxChannelConfig) error {
	if b.opened {
		return errcode.PinInUse
	}
	if !validPin(cfg.Pin) {
		return errcode.UnknownPin
	}
	b.pin = machine.Pin(cfg.Pin)
	b.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	b.pin.Low()
	b.dev = ws2812.NewWS2812(b.pin)
	b.opened = true
	logAdvisoryTiming(b.log, cfg)
	return nil
}

func (b *ws2812Backend) Write(symbols []rmt.Symbol) error {
	if !b.opened {
		return errcode.NotReady
	}
	if len(symbols)%8 != 0 {
		return errcode.InvalidPayload
	}
	b.buf = packSymbols(b.buf[:0], symbols)
	return writeFrame(b.dev, b.buf)
}

func (b *ws2812Backend) Close() error {
	if b.opened {
		b.pin.Low()
		b.opened = false
	}
	return nil
}
