// Package rmt models a remote-control-transceiver style pulse channel: a
// transmit path that clocks out (level, duration) pairs at a fixed tick
// resolution, fed by an encoder that turns bytes into those pairs.
//
// The package is hardware independent. A Backend does the physical work:
// on TinyGo targets it drives a pin, on the host it is a recorder.
//
// Typical use:
//
//	ch, err := rmt.NewTxChannel(chCfg, backend)
//	enc, err := rmt.NewBytesEncoder(encCfg)
//	err = ch.Enable()
//	err = ch.Transmit(enc, data, rmt.TransmitConfig{})
//	err = ch.WaitAllDone(100 * time.Millisecond)
package rmt

import (
	"time"

	"pixelcode-go/x/timex"
)

// Level is the logic level of one half of a Symbol.
type Level uint8

const (
	Low  Level = 0
	High Level = 1
)

// MaxSymbolDuration is the largest tick count one half of a symbol can hold
// (15-bit duration field).
const MaxSymbolDuration = 0x7FFF

// Symbol is one encoded bit: Level0 for Duration0 ticks, then Level1 for
// Duration1 ticks.
type Symbol struct {
	Level0    Level
	Duration0 uint16
	Level1    Level
	Duration1 uint16
}

// Ticks is the full symbol length in ticks.
func (s Symbol) Ticks() uint32 { return uint32(s.Duration0) + uint32(s.Duration1) }

// Period is the full symbol length at resolutionHz.
func (s Symbol) Period(resolutionHz uint32) time.Duration {
	return timex.TicksToDuration(s.Ticks(), resolutionHz)
}

// HighTicks returns how long the symbol holds the line high.
func (s Symbol) HighTicks() uint32 {
	var n uint32
	if s.Level0 == High {
		n += uint32(s.Duration0)
	}
	if s.Level1 == High {
		n += uint32(s.Duration1)
	}
	return n
}

func (s Symbol) valid() bool {
	if s.Level0 > High || s.Level1 > High {
		return false
	}
	if s.Duration0 == 0 || s.Duration0 > MaxSymbolDuration {
		return false
	}
	return s.Duration1 != 0 && s.Duration1 <= MaxSymbolDuration
}

// TickPeriod is the duration of a single tick at resolutionHz.
func TickPeriod(resolutionHz uint32) time.Duration {
	return time.Duration(timex.PeriodFromHz(resolutionHz))
}
