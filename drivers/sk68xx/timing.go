package sk68xx

import (
	"time"

	"pixelcode-go/drivers/rmt"
	"pixelcode-go/x/mathx"
	"pixelcode-go/x/timex"
)

// Timing is the high/low pulse pair for each bit value.
type Timing struct {
	T0H, T0L time.Duration // logical 0: short high, long low
	T1H, T1L time.Duration // logical 1: long high, short low
}

// Presets.
var (
	// TimingSK68xxMiniHS is tuned for the SK68XXMINI-HS: 1.35 µs per bit.
	TimingSK68xxMiniHS = Timing{
		T0H: 350 * time.Nanosecond, T0L: 1000 * time.Nanosecond,
		T1H: 1000 * time.Nanosecond, T1L: 350 * time.Nanosecond,
	}
	// TimingWS2812 is the datasheet WS2812B timing: 1.25 µs per bit.
	TimingWS2812 = Timing{
		T0H: 400 * time.Nanosecond, T0L: 850 * time.Nanosecond,
		T1H: 800 * time.Nanosecond, T1L: 450 * time.Nanosecond,
	}
)

// Encoder converts t to an MSB-first encoder config at resolutionHz,
// rounding each half to the nearest tick. Halves too long for a symbol are
// clamped to MaxSymbolDuration.
func (t Timing) Encoder(resolutionHz uint32) rmt.BytesEncoderConfig {
	ticks := func(d time.Duration) uint16 {
		return uint16(mathx.Clamp(timex.DurationToTicks(d, resolutionHz), 0, rmt.MaxSymbolDuration))
	}
	return rmt.BytesEncoderConfig{
		Bit0: rmt.Symbol{
			Level0: rmt.High, Duration0: ticks(t.T0H),
			Level1: rmt.Low, Duration1: ticks(t.T0L),
		},
		Bit1: rmt.Symbol{
			Level0: rmt.High, Duration0: ticks(t.T1H),
			Level1: rmt.Low, Duration1: ticks(t.T1L),
		},
		MSBFirst: true,
	}
}

// TimingByName resolves a preset name ("sk68xx", "ws2812").
func TimingByName(name string) (Timing, bool) {
	switch name {
	case "sk68xx", "sk68xxmini-hs":
		return TimingSK68xxMiniHS, true
	case "ws2812", "ws2812b":
		return TimingWS2812, true
	default:
		return Timing{}, false
	}
}
